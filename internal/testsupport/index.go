package testsupport

import (
	"testing"

	"flickbridge/internal/config"
	"flickbridge/internal/dupindex"
)

// MustOpenIndex opens a dupindex.Store for tests and registers cleanup.
func MustOpenIndex(t testing.TB, cfg *config.Config) *dupindex.Store {
	t.Helper()

	store, err := dupindex.Open(cfg)
	if err != nil {
		t.Fatalf("dupindex.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenIndexPath opens an index at an explicit path for tests.
func MustOpenIndexPath(t testing.TB, path string) *dupindex.Store {
	t.Helper()

	store, err := dupindex.OpenPath(path)
	if err != nil {
		t.Fatalf("dupindex.OpenPath: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
