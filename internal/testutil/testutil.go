// Package testutil provides shared test helpers for setting up
// temporary config trees and archive databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/lustro/internal/archive"
)

// TestArchive creates a temporary archive database that is
// automatically cleaned up.
func TestArchive(t *testing.T) *archive.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "lustro-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := archive.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
