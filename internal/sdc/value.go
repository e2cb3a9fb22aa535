package sdc

import (
	"fmt"
	"regexp"
	"time"
)

// ValueType discriminates the closed union of datavalue shapes flickbridge
// reads and writes. Anything else in the wild is preserved as an opaque raw
// value and compared byte-wise.
type ValueType int

const (
	ValueString ValueType = iota
	ValueEntity
	ValueTime
	ValueCoordinate
	ValueRaw
)

// Precision constants for time values, as defined by the Wikibase data model.
const (
	PrecisionYear  = 9
	PrecisionMonth = 10
	PrecisionDay   = 11
)

// TimeValue is a Wikibase time datavalue.
type TimeValue struct {
	Time          string `json:"time"`
	Timezone      int    `json:"timezone"`
	Before        int    `json:"before"`
	After         int    `json:"after"`
	Precision     int    `json:"precision"`
	CalendarModel string `json:"calendarmodel"`
}

// Coordinate is a Wikibase globecoordinate datavalue.
type Coordinate struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
	Precision float64  `json:"precision"`
	Globe     string   `json:"globe"`
}

// Value is a tagged union over the datavalue shapes. Exactly one of the
// payload fields is meaningful, selected by Type.
type Value struct {
	Type       ValueType
	String     string
	EntityID   string
	Time       TimeValue
	Coordinate Coordinate
	Raw        string
}

// StringValue builds a string datavalue.
func StringValue(s string) Value {
	return Value{Type: ValueString, String: s}
}

// EntityValue builds a wikibase-entityid datavalue.
func EntityValue(entityID string) Value {
	return Value{Type: ValueEntity, EntityID: entityID}
}

// TimeValueAt builds a time datavalue at the given precision. Components
// below the precision are pinned to January 1st so identical inputs always
// produce byte-identical values.
func TimeValueAt(t time.Time, precision int) Value {
	t = t.UTC()
	var formatted string
	switch precision {
	case PrecisionYear:
		formatted = fmt.Sprintf("+%04d-01-01T00:00:00Z", t.Year())
	case PrecisionMonth:
		formatted = fmt.Sprintf("+%04d-%02d-01T00:00:00Z", t.Year(), t.Month())
	default:
		formatted = fmt.Sprintf("+%04d-%02d-%02dT00:00:00Z", t.Year(), t.Month(), t.Day())
	}
	return Value{Type: ValueTime, Time: TimeValue{
		Time:          formatted,
		Precision:     precision,
		CalendarModel: GregorianCalendarURI,
	}}
}

// wikidataTimeRe matches the canonical serialized form, e.g.
// +1896-01-02T00:00:00Z.
var wikidataTimeRe = regexp.MustCompile(`^\+[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}Z$`)

// equivalentTimes compares two time values with slop appropriate to their
// precision: at year precision +2001-00-00 and +2001-01-01 are the same
// moment as far as structured data is concerned.
func equivalentTimes(a, b TimeValue) bool {
	if a.Precision != b.Precision || a.Before != b.Before || a.After != b.After ||
		a.Timezone != b.Timezone || a.CalendarModel != b.CalendarModel {
		return false
	}
	if !wikidataTimeRe.MatchString(a.Time) || !wikidataTimeRe.MatchString(b.Time) {
		return false
	}
	switch a.Precision {
	case PrecisionYear:
		return a.Time[:len("+1896")] == b.Time[:len("+1896")]
	case PrecisionMonth:
		return a.Time[:len("+1896-01")] == b.Time[:len("+1896-01")]
	case PrecisionDay:
		return a.Time[:len("+1896-01-02")] == b.Time[:len("+1896-01-02")]
	default:
		return a.Time == b.Time
	}
}

func equivalentCoordinates(a, b Coordinate) bool {
	if (a.Altitude == nil) != (b.Altitude == nil) {
		return false
	}
	if a.Altitude != nil && *a.Altitude != *b.Altitude {
		return false
	}
	return a.Latitude == b.Latitude && a.Longitude == b.Longitude && a.Globe == b.Globe
}
