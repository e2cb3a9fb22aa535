// Package dupindex persists the Flickr photo id to Commons file mapping
// built from snapshot scans. Lookups answer the duplicate question at
// upload time: has this Flickr photo already been copied to Commons?
//
// The index holds at most one row per photo id. Writes resolve key
// conflicts newest-scan-wins, so merging a fresh generation over a stale
// one converges on the fresh data.
package dupindex
