// Package flickr provides the photo metadata collaborator: the value types
// describing a Flickr photo and a client for the Flickr REST API.
//
// The rest of the system depends on the PhotoSource interface, so tests and
// offline tooling can substitute fixtures for the live API.
package flickr
