package sdc

import (
	"encoding/json"
	"fmt"
	"sort"

	"flickbridge/internal/services"
)

// Wire representation of Wikibase JSON, shared by the Commons API client and
// the snapshot scanner.

type wireDataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type wireSnak struct {
	SnakType  string         `json:"snaktype"`
	Property  string         `json:"property"`
	Hash      string         `json:"hash,omitempty"`
	DataValue *wireDataValue `json:"datavalue,omitempty"`
}

type wireStatement struct {
	ID              string                `json:"id,omitempty"`
	Type            string                `json:"type"`
	Mainsnak        wireSnak              `json:"mainsnak"`
	Qualifiers      map[string][]wireSnak `json:"qualifiers,omitempty"`
	QualifiersOrder []string              `json:"qualifiers-order,omitempty"`
	Rank            string                `json:"rank,omitempty"`
}

type wireEntity struct {
	ID   string `json:"id"`
	Type string `json:"entity-type"`
}

// UnmarshalClaims decodes a Wikibase claims object (property ID mapped to a
// list of statements) into flat statements. Undecodable input reports
// services.ErrMalformedRecord.
func UnmarshalClaims(data []byte) ([]Statement, error) {
	var raw map[string][]wireStatement
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %w", services.ErrMalformedRecord, err)
	}

	properties := make([]string, 0, len(raw))
	for property := range raw {
		properties = append(properties, property)
	}
	sort.Strings(properties)

	var statements []Statement
	for _, property := range properties {
		for _, ws := range raw[property] {
			statement, err := fromWireStatement(property, ws)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", services.ErrMalformedRecord, err)
			}
			statements = append(statements, statement)
		}
	}
	return statements, nil
}

// MarshalClaims encodes statements as the {"claims": [...]} payload accepted
// by wbeditentity.
func MarshalClaims(statements []Statement) ([]byte, error) {
	wire := make([]wireStatement, 0, len(statements))
	for _, statement := range statements {
		ws, err := toWireStatement(statement)
		if err != nil {
			return nil, err
		}
		wire = append(wire, ws)
	}
	return json.Marshal(map[string][]wireStatement{"claims": wire})
}

func fromWireStatement(property string, ws wireStatement) (Statement, error) {
	mainsnak, err := fromWireSnak(ws.Mainsnak)
	if err != nil {
		return Statement{}, fmt.Errorf("statement %s: %w", property, err)
	}

	statement := Statement{
		ID:       ws.ID,
		Property: property,
		Mainsnak: mainsnak,
	}

	order := ws.QualifiersOrder
	if len(order) == 0 {
		for qualifierProperty := range ws.Qualifiers {
			order = append(order, qualifierProperty)
		}
		sort.Strings(order)
	}
	for _, qualifierProperty := range order {
		for _, wq := range ws.Qualifiers[qualifierProperty] {
			qualifier, err := fromWireSnak(wq)
			if err != nil {
				return Statement{}, fmt.Errorf("statement %s qualifier %s: %w", property, qualifierProperty, err)
			}
			statement.Qualifiers = append(statement.Qualifiers, qualifier)
		}
	}
	return statement, nil
}

func toWireStatement(statement Statement) (wireStatement, error) {
	mainsnak, err := toWireSnak(statement.Property, statement.Mainsnak)
	if err != nil {
		return wireStatement{}, err
	}
	ws := wireStatement{
		ID:       statement.ID,
		Type:     "statement",
		Mainsnak: mainsnak,
	}
	if len(statement.Qualifiers) > 0 {
		ws.Qualifiers = make(map[string][]wireSnak, len(statement.Qualifiers))
		for _, qualifier := range statement.Qualifiers {
			wq, err := toWireSnak(qualifier.Property, qualifier)
			if err != nil {
				return wireStatement{}, err
			}
			if _, seen := ws.Qualifiers[qualifier.Property]; !seen {
				ws.QualifiersOrder = append(ws.QualifiersOrder, qualifier.Property)
			}
			ws.Qualifiers[qualifier.Property] = append(ws.Qualifiers[qualifier.Property], wq)
		}
	}
	return ws, nil
}

func fromWireSnak(ws wireSnak) (Snak, error) {
	snak := Snak{Property: ws.Property, Type: SnakType(ws.SnakType)}
	if snak.Type != SnakValue {
		return snak, nil
	}
	if ws.DataValue == nil {
		return Snak{}, fmt.Errorf("snak %s: value snak without datavalue", ws.Property)
	}

	dv := ws.DataValue
	switch dv.Type {
	case "string":
		var s string
		if err := json.Unmarshal(dv.Value, &s); err != nil {
			return Snak{}, fmt.Errorf("snak %s: decode string value: %w", ws.Property, err)
		}
		snak.Value = StringValue(s)
	case "wikibase-entityid":
		var entity wireEntity
		if err := json.Unmarshal(dv.Value, &entity); err != nil {
			return Snak{}, fmt.Errorf("snak %s: decode entity value: %w", ws.Property, err)
		}
		snak.Value = EntityValue(entity.ID)
	case "time":
		var tv TimeValue
		if err := json.Unmarshal(dv.Value, &tv); err != nil {
			return Snak{}, fmt.Errorf("snak %s: decode time value: %w", ws.Property, err)
		}
		snak.Value = Value{Type: ValueTime, Time: tv}
	case "globecoordinate":
		var coord Coordinate
		if err := json.Unmarshal(dv.Value, &coord); err != nil {
			return Snak{}, fmt.Errorf("snak %s: decode coordinate value: %w", ws.Property, err)
		}
		snak.Value = Value{Type: ValueCoordinate, Coordinate: coord}
	default:
		// Unknown datavalue types survive round trips and compare byte-wise.
		snak.Value = Value{Type: ValueRaw, Raw: dv.Type + ":" + string(dv.Value)}
	}
	return snak, nil
}

func toWireSnak(property string, snak Snak) (wireSnak, error) {
	ws := wireSnak{SnakType: string(snak.Type), Property: property}
	if snak.Type != SnakValue {
		return ws, nil
	}

	var dv wireDataValue
	switch snak.Value.Type {
	case ValueString:
		raw, err := json.Marshal(snak.Value.String)
		if err != nil {
			return wireSnak{}, err
		}
		dv = wireDataValue{Type: "string", Value: raw}
	case ValueEntity:
		raw, err := json.Marshal(wireEntity{ID: snak.Value.EntityID, Type: "item"})
		if err != nil {
			return wireSnak{}, err
		}
		dv = wireDataValue{Type: "wikibase-entityid", Value: raw}
	case ValueTime:
		raw, err := json.Marshal(snak.Value.Time)
		if err != nil {
			return wireSnak{}, err
		}
		dv = wireDataValue{Type: "time", Value: raw}
	case ValueCoordinate:
		raw, err := json.Marshal(snak.Value.Coordinate)
		if err != nil {
			return wireSnak{}, err
		}
		dv = wireDataValue{Type: "globecoordinate", Value: raw}
	default:
		return wireSnak{}, fmt.Errorf("snak %s: cannot serialize raw value", property)
	}
	ws.DataValue = &dv
	return ws, nil
}
