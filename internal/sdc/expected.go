package sdc

import (
	"flickbridge/internal/flickr"
)

// ExpectedStatements computes the structured data statements a Flickr photo
// should carry on Commons today. Pure and deterministic: identical metadata
// always yields identical statements, which is what makes Diff meaningful.
//
// License and copyright-status statements are deliberately not generated.
// Flickr licenses drift after a photo is copied to Commons, and the license
// field is already well populated on existing files.
func ExpectedStatements(meta flickr.PhotoMetadata) []Statement {
	statements := []Statement{
		PhotoIDStatement(meta.ID),
		creatorStatement(meta.Owner),
		sourceStatement(meta.PageURL),
	}

	if meta.DateTaken != nil {
		if taken, ok := dateTakenStatement(*meta.DateTaken); ok {
			statements = append(statements, taken)
		}
	}

	statements = append(statements, publishedInStatement(meta))
	return statements
}

// PhotoIDStatement builds the standalone Flickr photo ID statement. It is a
// main statement rather than a qualifier, matching the convention of e.g.
// YouTube video ID, and it is the only statement written for photos that
// have since gone private or been deleted.
func PhotoIDStatement(photoID string) Statement {
	return Statement{
		Property: PropFlickrPhotoID,
		Mainsnak: Snak{Property: PropFlickrPhotoID, Type: SnakValue, Value: StringValue(photoID)},
	}
}

// creatorStatement records the photo's owner. There is no Wikidata entity
// for most Flickr users, so the mainsnak is "somevalue" and the identity
// lives in the qualifiers.
func creatorStatement(owner flickr.User) Statement {
	return Statement{
		Property: PropCreator,
		Mainsnak: Snak{Property: PropCreator, Type: SnakSomeValue},
		Qualifiers: []Snak{
			{Property: PropFlickrUserID, Type: SnakValue, Value: StringValue(owner.ID)},
			{Property: PropAuthorName, Type: SnakValue, Value: StringValue(owner.DisplayName())},
			{Property: PropURL, Type: SnakValue, Value: StringValue(owner.ProfileURL)},
		},
	}
}

func sourceStatement(photoURL string) Statement {
	return Statement{
		Property: PropSourceOfFile,
		Mainsnak: Snak{Property: PropSourceOfFile, Type: SnakValue, Value: EntityValue(EntityFileAvailableOnInternet)},
		Qualifiers: []Snak{
			{Property: PropDescribedAtURL, Type: SnakValue, Value: StringValue(photoURL)},
			{Property: PropOperator, Type: SnakValue, Value: EntityValue(EntityFlickr)},
		},
	}
}

func dateTakenStatement(taken flickr.DateTaken) (Statement, bool) {
	var precision int
	switch taken.Granularity {
	case flickr.GranularitySecond:
		precision = PrecisionDay
	case flickr.GranularityMonth:
		precision = PrecisionMonth
	case flickr.GranularityYear, flickr.GranularityCirca:
		precision = PrecisionYear
	default:
		// Unknown granularity from the API; better to write nothing than
		// to guess a precision.
		return Statement{}, false
	}

	statement := Statement{
		Property: PropInception,
		Mainsnak: Snak{Property: PropInception, Type: SnakValue, Value: TimeValueAt(taken.Value, precision)},
	}
	if taken.Granularity == flickr.GranularityCirca {
		statement.Qualifiers = []Snak{
			{Property: PropSourcingCircumstances, Type: SnakValue, Value: EntityValue(EntityCirca)},
		}
	}
	return statement, true
}

func publishedInStatement(meta flickr.PhotoMetadata) Statement {
	return Statement{
		Property: PropPublishedIn,
		Mainsnak: Snak{Property: PropPublishedIn, Type: SnakValue, Value: EntityValue(EntityFlickr)},
		Qualifiers: []Snak{
			{Property: PropPublicationDate, Type: SnakValue, Value: TimeValueAt(meta.DatePosted, PrecisionDay)},
		},
	}
}
