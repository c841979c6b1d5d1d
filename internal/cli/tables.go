package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/oserror"

	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/loader"
	"github.com/roach88/mixlab/internal/store"
)

// isSnapshotPath reports whether path names a SQLite snapshot.
func isSnapshotPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// writeTableFile persists t as JSON or as a SQLite snapshot, by extension.
func writeTableFile(ctx context.Context, path string, t *ir.Table) error {
	if isSnapshotPath(path) {
		_, err := store.Export(ctx, path, t)
		return err
	}
	return loader.WriteTable(path, t)
}

// readTableFile loads a table written by writeTableFile.
func readTableFile(ctx context.Context, path string) (*ir.Table, error) {
	if isSnapshotPath(path) {
		snap, err := store.Import(ctx, path)
		if err != nil {
			return nil, err
		}
		return snap.Table, nil
	}
	return loader.ReadTable(path)
}

// loadErrorCode maps a loader or store error to a CLI error code.
func loadErrorCode(err error) string {
	if errors.Is(err, loader.ErrNotFound) || oserror.IsNotExist(err) {
		return ErrCodeNotFound
	}
	return ErrCodeLoadFailed
}
