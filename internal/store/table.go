package store

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"

	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/queryir"
	"github.com/roach88/mixlab/internal/querysql"
)

// WriteTable replaces the stored reactions with the entries of t in a
// single transaction.
func (s *Store) WriteTable(ctx context.Context, t *ir.Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin write table")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM reactions`); err != nil {
		return errors.Wrap(err, "clear reactions")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reactions
		(key, arity, type, product, color, heat, observations, requires, requires_ids, min_temp, max_temp, duration_seconds, record_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(err, "prepare insert reaction")
	}
	defer stmt.Close()

	t.Each(func(k ir.Key, r ir.Reaction) bool {
		err = insertReaction(ctx, stmt, k, r)
		return err == nil
	})
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit write table")
	}
	return nil
}

func insertReaction(ctx context.Context, stmt *sql.Stmt, k ir.Key, r ir.Reaction) error {
	obs, err := json.Marshal(nonNil(r.Observations))
	if err != nil {
		return errors.Wrapf(err, "marshal observations for %s", k)
	}
	reqs, err := json.Marshal(nonNil(r.Requires))
	if err != nil {
		return errors.Wrapf(err, "marshal requires for %s", k)
	}
	reqIDs, err := json.Marshal(requiresIDs(r.Requires))
	if err != nil {
		return errors.Wrapf(err, "marshal requires ids for %s", k)
	}
	hash, err := ir.RecordHash(r)
	if err != nil {
		return errors.Wrapf(err, "hash record %s", k)
	}
	_, err = stmt.ExecContext(ctx,
		k.String(),
		k.Arity(),
		string(r.Type),
		nullString(r.Product),
		nullString(r.Color),
		nullString(r.Heat),
		string(obs),
		string(reqs),
		string(reqIDs),
		nullInt(r.MinTemp),
		nullInt(r.MaxTemp),
		nullInt(r.DurationSeconds),
		hash,
	)
	if err != nil {
		return errors.Wrapf(err, "insert reaction %s", k)
	}
	return nil
}

// requiresIDs holds the identity form of each apparatus entry. Queries match
// against it so SQL and in-memory filtering agree on Unicode input.
func requiresIDs(reqs []string) []string {
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if id := ir.Identifier(req).Normalize(); !id.IsEmpty() {
			ids = append(ids, string(id))
		}
	}
	return ids
}

// reactionColumns is the column order scanReaction expects.
var reactionColumns = []string{
	"key", "type", "product", "color", "heat", "observations", "requires",
	"min_temp", "max_temp", "duration_seconds", "record_hash",
}

// ReadTable loads every stored reaction. Stored record hashes are checked
// against the decoded records.
func (s *Store) ReadTable(ctx context.Context) (*ir.Table, error) {
	rows, err := s.Select(ctx, queryir.Select{})
	if err != nil {
		return nil, err
	}
	entries := make(map[ir.Key]ir.Reaction, len(rows))
	for _, row := range rows {
		entries[row.Key] = row.Reaction
	}
	return ir.NewTable(entries), nil
}

// Select returns the stored reactions matching q in key order.
func (s *Store) Select(ctx context.Context, q queryir.Select) ([]queryir.Row, error) {
	query, params, err := querysql.NewCompiler(reactionColumns...).Compile(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "query reactions")
	}
	defer rows.Close()

	var out []queryir.Row
	for rows.Next() {
		key, r, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, queryir.Row{Key: key, Reaction: r})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate reactions")
	}
	return out, nil
}

func scanReaction(rows *sql.Rows) (ir.Key, ir.Reaction, error) {
	var (
		rawKey, typ, obs, reqs, storedHash string
		product, color, heat               sql.NullString
		minTemp, maxTemp, duration         sql.NullInt64
	)
	if err := rows.Scan(&rawKey, &typ, &product, &color, &heat, &obs, &reqs, &minTemp, &maxTemp, &duration, &storedHash); err != nil {
		return ir.Key{}, ir.Reaction{}, errors.Wrap(err, "scan reaction")
	}

	r := ir.Reaction{
		Type:            ir.ParseReactionType(typ),
		Product:         fromNullString(product),
		Color:           fromNullString(color),
		Heat:            fromNullString(heat),
		MinTemp:         fromNullInt(minTemp),
		MaxTemp:         fromNullInt(maxTemp),
		DurationSeconds: fromNullInt(duration),
	}
	if err := json.Unmarshal([]byte(obs), &r.Observations); err != nil {
		return ir.Key{}, ir.Reaction{}, errors.Wrapf(err, "decode observations for %s", rawKey)
	}
	if err := json.Unmarshal([]byte(reqs), &r.Requires); err != nil {
		return ir.Key{}, ir.Reaction{}, errors.Wrapf(err, "decode requires for %s", rawKey)
	}

	hash, err := ir.RecordHash(r)
	if err != nil {
		return ir.Key{}, ir.Reaction{}, errors.Wrapf(err, "hash record %s", rawKey)
	}
	if hash != storedHash {
		return ir.Key{}, ir.Reaction{}, errors.Wrapf(ErrCorruptSnapshot, "record hash mismatch for %s", rawKey)
	}
	return ir.ParseKey(rawKey), r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func fromNullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return ir.Str(n.String)
}

func fromNullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return ir.Int(n.Int64)
}
