// Package commons provides the Wikimedia Commons collaborator: reading a
// file's structured data and wikitext, and writing missing statements
// through the Action API.
//
// Writes are additive only. The reconciler never asks this package to
// remove or replace an existing statement, and the API payloads it builds
// contain no statement IDs, so the server treats every claim as new.
package commons
