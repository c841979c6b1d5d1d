package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/mixlab/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// deterministicOptions pins the snapshot id and creation time.
func deterministicOptions() []ExportOption {
	return []ExportOption{
		WithIDGenerator(testutil.NewFixedIDGenerator("snap-0001")),
		WithClock(testutil.NewStepClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), time.Second)),
	}
}
