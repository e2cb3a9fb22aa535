// Command flickbridge is the operator CLI for the Flickr to Wikimedia
// Commons metadata bridge: scanning Commons dumps into the duplicate
// index, querying and maintaining the index, and reconciling the
// structured data of imported files against Flickr.
package main
