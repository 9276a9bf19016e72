package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tinv/internal/verify"
)

// createTestStore creates a store in a temporary directory.
// The store is automatically closed when the test completes.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testRun builds a run record for text checked with the given limit.
func testRun(t *testing.T, id, text string, limit int) Run {
	t.Helper()
	rep, err := verify.Run(text, verify.Options{Limit: limit})
	if err != nil {
		t.Fatalf("verify.Run() failed: %v", err)
	}
	run, err := NewRun(id, "logs/sequence.txt", rep)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}
	return run
}
