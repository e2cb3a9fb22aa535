// Package snapshot streams Wikimedia Commons bulk dumps and extracts the
// Flickr photo references recorded on each file. Two dump shapes are
// supported: structured-data entity dumps (a JSON array with one entity per
// line, optionally gzip or bz2 compressed) and MediaWiki revision-history
// XML, where the wikitext source field is searched for Flickr URLs.
//
// Results flow to an injected Sink. Malformed records and unrecognizable
// references become anomaly records rather than scan failures; rescanning
// the same dump produces identical output.
package snapshot
