// Package catalog implements the live entity stores (courses, lessons, badges,
// achievements) that offline changes are applied to.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	postgres "github.com/heartmarshall/learnsync/internal/adapter/postgres"
	"github.com/heartmarshall/learnsync/internal/catalog"
	"github.com/heartmarshall/learnsync/internal/domain"
)

// Store persists one entity kind in its table.
type Store struct {
	db   postgres.Querier
	kind catalog.Kind
}

// New creates a store for kind.
func New(db postgres.Querier, kind catalog.Kind) *Store {
	return &Store{db: db, kind: kind}
}

// Register creates a store for every kind and adds it to reg.
func Register(reg *catalog.Registry, db postgres.Querier, kinds ...catalog.Kind) {
	for _, k := range kinds {
		reg.Register(k, New(db, k))
	}
}

// ---------------------------------------------------------------------------
// Apply operations
// ---------------------------------------------------------------------------

// ApplyCreate inserts a row. A positive id is used as the primary key and
// the identity sequence is moved past it; otherwise the database assigns one.
func (s *Store) ApplyCreate(ctx context.Context, id int64, values catalog.Values) (int64, json.RawMessage, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	set := make(map[string]any, len(values)+1)
	for col, v := range values {
		set[col] = v
	}
	if id > 0 {
		set["id"] = id
	}

	sql, args, err := postgres.Build(s.name(), postgres.Builder().
		Insert(s.kind.Table).
		SetMap(set).
		Suffix("RETURNING id"))
	if err != nil {
		return 0, nil, err
	}

	var newID int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&newID); err != nil {
		return 0, nil, postgres.MapError(err, s.name(), id)
	}

	if id > 0 {
		if err := s.advanceSequence(ctx, q, newID); err != nil {
			return 0, nil, err
		}
	}

	snap, err := s.Snapshot(ctx, newID)
	if err != nil {
		return 0, nil, err
	}
	return newID, snap, nil
}

// ApplyUpdate sets the given columns on an existing row.
// Returns domain.ErrNotFound if the row does not exist.
func (s *Store) ApplyUpdate(ctx context.Context, id int64, values catalog.Values) (json.RawMessage, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	sql, args, err := postgres.Build(s.name(), postgres.Builder().
		Update(s.kind.Table).
		SetMap(map[string]any(values)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id"))
	if err != nil {
		return nil, err
	}

	var got int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&got); err != nil {
		return nil, postgres.MapError(err, s.name(), id)
	}

	return s.Snapshot(ctx, id)
}

// ApplyDelete removes a row and returns the state it had.
// Returns domain.ErrNotFound if the row does not exist and domain.ErrConflict
// if other rows still reference it.
func (s *Store) ApplyDelete(ctx context.Context, id int64) (json.RawMessage, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	snap, err := s.snapshot(ctx, q, id, true)
	if err != nil {
		return nil, err
	}

	sql, args, err := postgres.Build(s.name(), postgres.Builder().
		Delete(s.kind.Table).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("%s %d is still referenced: %w", s.name(), id, domain.ErrConflict)
		}
		return nil, postgres.MapError(err, s.name(), id)
	}

	return snap, nil
}

// Snapshot returns the current row as a JSON object keyed by payload names.
// Returns domain.ErrNotFound if the row does not exist.
func (s *Store) Snapshot(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.snapshot(ctx, postgres.QuerierFromCtx(ctx, s.db), id, false)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Store) name() string { return s.kind.Type.String() }

func (s *Store) columns() []string {
	cols := make([]string, 0, len(s.kind.Fields)+3)
	cols = append(cols, "id")
	for _, f := range s.kind.Fields {
		cols = append(cols, f.Column)
	}
	return append(cols, "created_at", "updated_at")
}

func (s *Store) snapshot(ctx context.Context, q postgres.Querier, id int64, lock bool) (json.RawMessage, error) {
	b := postgres.Builder().
		Select(s.columns()...).
		From(s.kind.Table).
		Where(sq.Eq{"id": id})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}

	sql, args, err := postgres.Build(s.name(), b)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, s.name(), id)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, postgres.MapError(err, s.name(), id)
	}

	out := make(map[string]any, len(row))
	for col, v := range row {
		out[s.kind.ColumnToField(col)] = v
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal %s %d snapshot: %w", s.name(), id, err)
	}
	return data, nil
}

// advanceSequence moves the identity sequence past a client-chosen id. It
// never moves it backwards: ids handed out before stay retired even when
// their rows were deleted, so a new entity cannot inherit an old history.
func (s *Store) advanceSequence(ctx context.Context, q postgres.Querier, id int64) error {
	const sql = `SELECT setval(seq, GREATEST($1::bigint, COALESCE(pg_sequence_last_value(seq), 0)))
		FROM (SELECT pg_get_serial_sequence($2, 'id')::regclass AS seq) s`
	if _, err := q.Exec(ctx, sql, id, s.kind.Table); err != nil {
		return fmt.Errorf("advance %s id sequence: %w", s.kind.Table, err)
	}
	return nil
}
