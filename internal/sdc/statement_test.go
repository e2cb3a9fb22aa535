package sdc_test

import (
	"testing"
	"time"

	"flickbridge/internal/sdc"
)

func stringSnak(property, value string) sdc.Snak {
	return sdc.Snak{Property: property, Type: sdc.SnakValue, Value: sdc.StringValue(value)}
}

func TestEquivalentSnaksFlickrURLLeniency(t *testing.T) {
	a := stringSnak(sdc.PropDescribedAtURL, "http://www.flickr.com/photos/poly/6318576132/")
	b := stringSnak(sdc.PropDescribedAtURL, "https://www.flickr.com/photos/poly/6318576132")
	if !sdc.EquivalentSnaks(a, b) {
		t.Fatal("expected equivalent Flickr URLs to compare equal")
	}

	// The leniency is scoped to the URL properties; elsewhere strings
	// compare exactly.
	c := stringSnak(sdc.PropAuthorName, "http://www.flickr.com/photos/poly/6318576132/")
	d := stringSnak(sdc.PropAuthorName, "https://www.flickr.com/photos/poly/6318576132")
	if sdc.EquivalentSnaks(c, d) {
		t.Fatal("author name strings should compare exactly")
	}
}

func TestEquivalentSnaksTimePrecision(t *testing.T) {
	jan := sdc.Snak{Property: sdc.PropInception, Type: sdc.SnakValue,
		Value: sdc.TimeValueAt(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC), sdc.PrecisionYear)}
	jul := sdc.Snak{Property: sdc.PropInception, Type: sdc.SnakValue,
		Value: sdc.TimeValueAt(time.Date(2001, 7, 14, 9, 30, 0, 0, time.UTC), sdc.PrecisionYear)}
	if !sdc.EquivalentSnaks(jan, jul) {
		t.Fatal("year-precision times in the same year should be equivalent")
	}

	day1 := sdc.Snak{Property: sdc.PropInception, Type: sdc.SnakValue,
		Value: sdc.TimeValueAt(time.Date(2001, 7, 14, 0, 0, 0, 0, time.UTC), sdc.PrecisionDay)}
	day2 := sdc.Snak{Property: sdc.PropInception, Type: sdc.SnakValue,
		Value: sdc.TimeValueAt(time.Date(2001, 7, 15, 0, 0, 0, 0, time.UTC), sdc.PrecisionDay)}
	if sdc.EquivalentSnaks(day1, day2) {
		t.Fatal("different days at day precision should not be equivalent")
	}
}

func TestSatisfiesIgnoresQualifiers(t *testing.T) {
	existing := sdc.Statement{
		Property: sdc.PropPublishedIn,
		Mainsnak: sdc.Snak{Property: sdc.PropPublishedIn, Type: sdc.SnakValue, Value: sdc.EntityValue(sdc.EntityFlickr)},
		Qualifiers: []sdc.Snak{
			stringSnak(sdc.PropAuthorName, "hand-edited qualifier"),
		},
	}
	candidate := sdc.Statement{
		Property: sdc.PropPublishedIn,
		Mainsnak: sdc.Snak{Property: sdc.PropPublishedIn, Type: sdc.SnakValue, Value: sdc.EntityValue(sdc.EntityFlickr)},
		Qualifiers: []sdc.Snak{
			{Property: sdc.PropPublicationDate, Type: sdc.SnakValue,
				Value: sdc.TimeValueAt(time.Date(2014, 2, 3, 0, 0, 0, 0, time.UTC), sdc.PrecisionDay)},
		},
	}
	if !sdc.Satisfies(existing, candidate) {
		t.Fatal("qualifier-only difference must read as satisfied")
	}
}

func TestDiffReturnsOnlyMissing(t *testing.T) {
	expected := []sdc.Statement{
		sdc.PhotoIDStatement("6318576132"),
		{
			Property: sdc.PropPublishedIn,
			Mainsnak: sdc.Snak{Property: sdc.PropPublishedIn, Type: sdc.SnakValue, Value: sdc.EntityValue(sdc.EntityFlickr)},
		},
	}
	existing := []sdc.Statement{
		sdc.PhotoIDStatement("6318576132"),
	}

	missing := sdc.Diff(expected, existing)
	if len(missing) != 1 {
		t.Fatalf("expected 1 missing statement, got %d", len(missing))
	}
	if missing[0].Property != sdc.PropPublishedIn {
		t.Fatalf("unexpected missing statement: %s", missing[0].Property)
	}
}

func TestDiffEmptyWhenExistingCoversExpected(t *testing.T) {
	expected := []sdc.Statement{sdc.PhotoIDStatement("123")}
	existing := []sdc.Statement{sdc.PhotoIDStatement("123")}
	if missing := sdc.Diff(expected, existing); len(missing) != 0 {
		t.Fatalf("expected empty diff, got %d statements", len(missing))
	}
}
