package sdc

// Wikidata property IDs used in Flickr-sourced structured data. To see
// documentation for a property, go to
// https://www.wikidata.org/wiki/Property:<ID>.
const (
	PropOperator              = "P137"
	PropCreator               = "P170"
	PropCopyrightLicense      = "P275"
	PropInception             = "P571"
	PropPublicationDate       = "P577"
	PropRetrieved             = "P813"
	PropDescribedAtURL        = "P973"
	PropPublishedIn           = "P1433"
	PropSourcingCircumstances = "P1480"
	PropAuthorName            = "P2093"
	PropURL                   = "P2699"
	PropFlickrUserID          = "P3267"
	PropCopyrightStatus       = "P6216"
	PropSourceOfFile          = "P7482"
	PropFlickrPhotoID         = "P12120"
)

// Wikidata entity IDs. To see documentation for an entity, go to
// https://www.wikidata.org/wiki/<ID>.
const (
	EntityPublicDomain             = "Q19652"
	EntityFlickr                   = "Q103204"
	EntityGregorianCalendar        = "Q1985727"
	EntityCirca                    = "Q5727902"
	EntityCopyrighted              = "Q50423863"
	EntityFileAvailableOnInternet  = "Q74228490"
	EntityCCPublicDomainDedication = "Q88088423"
)

// GregorianCalendarURI is the calendar model recorded on every time value.
const GregorianCalendarURI = "http://www.wikidata.org/entity/" + EntityGregorianCalendar
