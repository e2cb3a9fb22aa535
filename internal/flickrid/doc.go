// Package flickrid recognizes the many textual forms a Flickr photo
// reference can take and canonicalizes them to a numeric photo ID.
//
// Recognize is a pure function over precompiled matchers. It is called
// millions of times during snapshot scanning and synchronously on every
// duplicate check, so it must stay allocation-light and free of I/O.
package flickrid
