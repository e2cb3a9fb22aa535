// Package sdc models Wikimedia Commons structured data statements as value
// types with structural equality, and computes the statements a Flickr photo
// should carry.
//
// The reconciler's "write only what's missing" behavior is implemented here
// as an explicit set difference (Diff) over statements compared by property
// and mainsnak value. Qualifier-only differences never make two statements
// unequal, so manual qualifier edits on Commons are never clobbered.
package sdc
