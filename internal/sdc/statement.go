package sdc

import (
	"flickbridge/internal/flickrid"
)

// SnakType mirrors the Wikibase snaktype field.
type SnakType string

const (
	SnakValue     SnakType = "value"
	SnakSomeValue SnakType = "somevalue"
	SnakNoValue   SnakType = "novalue"
)

// Snak is a single property/value assertion, used both as a statement
// mainsnak and as a qualifier.
type Snak struct {
	Property string
	Type     SnakType
	Value    Value
}

// Statement is one structured data statement. ID is set on statements read
// from Commons and empty on statements flickbridge generates.
type Statement struct {
	ID         string
	Property   string
	Mainsnak   Snak
	Qualifiers []Snak
}

// EquivalentSnaks reports whether two snaks assert the same thing. Time
// values compare at their stated precision, and URL-valued snaks on the
// "described at URL" and "URL" properties compare as canonical Flickr
// references, so cosmetic URL differences do not count as changes.
func EquivalentSnaks(existing, candidate Snak) bool {
	if existing.Property != candidate.Property || existing.Type != candidate.Type {
		return false
	}
	if existing.Type != SnakValue {
		return true
	}
	a, b := existing.Value, candidate.Value
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case ValueString:
		if a.String == b.String {
			return true
		}
		if existing.Property == PropDescribedAtURL || existing.Property == PropURL {
			return equivalentFlickrURLs(a.String, b.String)
		}
		return false
	case ValueEntity:
		return a.EntityID == b.EntityID
	case ValueTime:
		return equivalentTimes(a.Time, b.Time)
	case ValueCoordinate:
		return equivalentCoordinates(a.Coordinate, b.Coordinate)
	default:
		return a.Raw == b.Raw
	}
}

func equivalentFlickrURLs(url1, url2 string) bool {
	ref1, err1 := flickrid.Recognize(url1)
	ref2, err2 := flickrid.Recognize(url2)
	if err1 != nil || err2 != nil {
		return false
	}
	return ref1 == ref2
}

// Satisfies reports whether the existing statement already covers the
// candidate: same property, equivalent mainsnak. Qualifiers are deliberately
// excluded so qualifier-only differences read as already satisfied.
func Satisfies(existing, candidate Statement) bool {
	if existing.Property != candidate.Property {
		return false
	}
	return EquivalentSnaks(existing.Mainsnak, candidate.Mainsnak)
}

// Diff returns the expected statements with no equivalent in existing,
// preserving expected order. This is the set difference the reconciler
// writes; an empty result means the file is already up to date.
func Diff(expected, existing []Statement) []Statement {
	var missing []Statement
	for _, want := range expected {
		found := false
		for _, have := range existing {
			if Satisfies(have, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}
