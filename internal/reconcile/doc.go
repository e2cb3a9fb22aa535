// Package reconcile compares the structured data of Commons files imported
// from Flickr against current Flickr metadata and writes the statements
// that are missing. Writes are additive; existing statements are never
// changed or removed. The batch runner processes targets independently
// under bounded concurrency, so one failing file never affects another.
package reconcile
