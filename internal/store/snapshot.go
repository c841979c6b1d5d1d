package store

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/queryir"
)

var (
	// ErrIncompatibleFormat is returned when a snapshot's format version is
	// outside ir.FormatConstraint.
	ErrIncompatibleFormat = errors.New("incompatible snapshot format")

	// ErrCorruptSnapshot is returned when stored content does not match its
	// recorded hashes.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Meta keys.
const (
	metaFormatVersion = "format_version"
	metaToolVersion   = "tool_version"
	metaSnapshotID    = "snapshot_id"
	metaCreatedAt     = "created_at"
	metaDigest        = "table_digest"
	metaEntries       = "entries"
)

// Meta describes a snapshot.
type Meta struct {
	FormatVersion string    `json:"format_version"`
	ToolVersion   string    `json:"tool_version"`
	SnapshotID    string    `json:"snapshot_id"`
	CreatedAt     time.Time `json:"created_at"`
	Digest        string    `json:"table_digest"`
	Entries       int       `json:"entries"`
}

// Snapshot is a table read back from disk together with its metadata.
type Snapshot struct {
	Meta  Meta
	Table *ir.Table
}

// IDGenerator produces snapshot identifiers.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the snapshot creation time.
type Clock interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string { return uuid.NewString() }

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }

type exportConfig struct {
	ids   IDGenerator
	clock Clock
}

// ExportOption configures Export.
type ExportOption func(*exportConfig)

// WithIDGenerator overrides the random snapshot id.
func WithIDGenerator(g IDGenerator) ExportOption {
	return func(c *exportConfig) { c.ids = g }
}

// WithClock overrides the wall clock.
func WithClock(clk Clock) ExportOption {
	return func(c *exportConfig) { c.clock = clk }
}

// Export writes t to a SQLite snapshot at path. The database is built in
// a temp file in the same directory and renamed over path, so readers
// never observe a partial snapshot.
func Export(ctx context.Context, path string, t *ir.Table, opts ...ExportOption) (Meta, error) {
	cfg := exportConfig{ids: uuidGenerator{}, clock: wallClock{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	digest, err := ir.TableDigest(t)
	if err != nil {
		return Meta{}, errors.Wrap(err, "compute table digest")
	}
	meta := Meta{
		FormatVersion: ir.FormatVersion,
		ToolVersion:   ir.ToolVersion,
		SnapshotID:    cfg.ids.Generate(),
		CreatedAt:     cfg.clock.Now().UTC().Truncate(time.Second),
		Digest:        digest,
		Entries:       t.Len(),
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Meta{}, errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return Meta{}, errors.Wrap(err, "creating temp snapshot")
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	s, err := Open(tmpPath)
	if err != nil {
		return Meta{}, err
	}
	if err := s.WriteTable(ctx, t); err != nil {
		s.Close()
		return Meta{}, err
	}
	if err := s.WriteMeta(ctx, meta); err != nil {
		s.Close()
		return Meta{}, err
	}
	if err := s.Close(); err != nil {
		return Meta{}, errors.Wrap(err, "closing snapshot")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return Meta{}, errors.Wrapf(err, "replacing %s", path)
	}
	return meta, nil
}

// Import reads a snapshot written by Export. The format version must
// satisfy ir.FormatConstraint and the table must match the stored digest.
func Import(ctx context.Context, path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "snapshot %s", path)
	}
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// QueryFile verifies the snapshot at path and returns the reactions
// matching q.
func QueryFile(ctx context.Context, path string, q queryir.Select) ([]queryir.Row, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "snapshot %s", path)
	}
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s.Select(ctx, q)
}

// Load reads and verifies the snapshot held by s.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	meta, err := s.ReadMeta(ctx)
	if err != nil {
		return nil, err
	}
	if err := CheckFormat(meta.FormatVersion); err != nil {
		return nil, err
	}

	t, err := s.ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	digest, err := ir.TableDigest(t)
	if err != nil {
		return nil, errors.Wrap(err, "compute table digest")
	}
	if digest != meta.Digest {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "table digest %s does not match recorded %s", digest, meta.Digest)
	}
	return &Snapshot{Meta: meta, Table: t}, nil
}

// CheckFormat reports whether a snapshot format version can be read.
func CheckFormat(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(ErrIncompatibleFormat, "invalid format version %q: %v", version, err)
	}
	c, err := semver.NewConstraint(ir.FormatConstraint)
	if err != nil {
		return errors.Wrapf(err, "invalid format constraint %s", ir.FormatConstraint)
	}
	if !c.Check(v) {
		return errors.WithHint(
			errors.Wrapf(ErrIncompatibleFormat, "format %s does not satisfy %s", version, ir.FormatConstraint),
			"rebuild the snapshot with this version of mixlab")
	}
	return nil
}

// WriteMeta stores snapshot metadata, replacing existing values.
func (s *Store) WriteMeta(ctx context.Context, m Meta) error {
	values := [][2]string{
		{metaFormatVersion, m.FormatVersion},
		{metaToolVersion, m.ToolVersion},
		{metaSnapshotID, m.SnapshotID},
		{metaCreatedAt, m.CreatedAt.UTC().Format(time.RFC3339)},
		{metaDigest, m.Digest},
		{metaEntries, strconv.Itoa(m.Entries)},
	}
	for _, kv := range values {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, kv[0], kv[1])
		if err != nil {
			return errors.Wrapf(err, "write meta %s", kv[0])
		}
	}
	return nil
}

// ReadMeta loads snapshot metadata.
func (s *Store) ReadMeta(ctx context.Context) (Meta, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return Meta{}, errors.Wrap(err, "query meta")
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Meta{}, errors.Wrap(err, "scan meta")
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return Meta{}, errors.Wrap(err, "iterate meta")
	}
	if _, ok := values[metaFormatVersion]; !ok {
		return Meta{}, errors.Wrap(ErrCorruptSnapshot, "missing format version")
	}

	m := Meta{
		FormatVersion: values[metaFormatVersion],
		ToolVersion:   values[metaToolVersion],
		SnapshotID:    values[metaSnapshotID],
		Digest:        values[metaDigest],
	}
	if raw := values[metaCreatedAt]; raw != "" {
		if m.CreatedAt, err = time.Parse(time.RFC3339, raw); err != nil {
			return Meta{}, errors.Wrapf(ErrCorruptSnapshot, "created_at %q", raw)
		}
	}
	if raw := values[metaEntries]; raw != "" {
		if m.Entries, err = strconv.Atoi(raw); err != nil {
			return Meta{}, errors.Wrapf(ErrCorruptSnapshot, "entries %q", raw)
		}
	}
	return m, nil
}
