// Package offlinechange implements the offline change log using PostgreSQL.
package offlinechange

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/learnsync/internal/adapter/postgres"
	"github.com/heartmarshall/learnsync/internal/domain"
)

const table = "offline_changes"

var columns = []string{
	"id", "user_id", "entity_type", "entity_id", "change_type", "data", "created_at", "seq",
	"synced", "conflict_resolved", "error_message", "attempts", "synced_at",
}

// Repo provides offline change persistence backed by PostgreSQL.
// Rows are never deleted.
type Repo struct {
	db postgres.Querier
}

// New creates a new offline change repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID               uuid.UUID  `db:"id"`
	UserID           uuid.UUID  `db:"user_id"`
	EntityType       string     `db:"entity_type"`
	EntityID         int64      `db:"entity_id"`
	ChangeType       string     `db:"change_type"`
	Data             []byte     `db:"data"`
	CreatedAt        time.Time  `db:"created_at"`
	Seq              int64      `db:"seq"`
	Synced           bool       `db:"synced"`
	ConflictResolved bool       `db:"conflict_resolved"`
	ErrorMessage     *string    `db:"error_message"`
	Attempts         int        `db:"attempts"`
	SyncedAt         *time.Time `db:"synced_at"`
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// CreateBatch appends changes to the log in slice order. All rows of one
// batch share created_at; the identity column keeps their order.
func (r *Repo) CreateBatch(ctx context.Context, changes []*domain.OfflineChange) ([]*domain.OfflineChange, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	b := postgres.Builder().
		Insert(table).
		Columns("id", "user_id", "entity_type", "entity_id", "change_type", "data")
	for _, c := range changes {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		data := []byte(c.Data)
		if len(data) == 0 {
			data = []byte(`{}`)
		}
		b = b.Values(c.ID, c.UserID, string(c.EntityType), c.EntityID, string(c.ChangeType), data)
	}
	b = b.Suffix("RETURNING " + strings.Join(columns, ", "))

	sql, args, err := postgres.Build("insert offline changes", b)
	if err != nil {
		return nil, err
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "offline_change batch", len(changes))
	}
	return toDomainList(rows), nil
}

// MarkSynced records a successful application. entityID is stored so a
// create carries the id the entity ended up with.
func (r *Repo) MarkSynced(ctx context.Context, id uuid.UUID, entityID int64) error {
	sql, args, err := postgres.Build("mark synced", postgres.Builder().
		Update(table).
		Set("synced", true).
		Set("entity_id", entityID).
		Set("error_message", nil).
		Set("synced_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "synced": false}))
	if err != nil {
		return err
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "offline_change", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("offline_change %s: %w", id, domain.ErrConflict)
	}
	return nil
}

// RecordError stores the failure of one attempt and bumps the attempt count.
func (r *Repo) RecordError(ctx context.Context, id uuid.UUID, message string) error {
	sql, args, err := postgres.Build("record error", postgres.Builder().
		Update(table).
		Set("error_message", message).
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Eq{"id": id, "synced": false}))
	if err != nil {
		return err
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "offline_change", id)
	}
	return nil
}

// Resolve marks an unsynced change as conflict-resolved so it is no longer
// replayed. Returns domain.ErrNotFound if the user has no such unsynced change.
func (r *Repo) Resolve(ctx context.Context, userID, id uuid.UUID) (*domain.OfflineChange, error) {
	sql, args, err := postgres.Build("resolve change", postgres.Builder().
		Update(table).
		Set("conflict_resolved", true).
		Where(sq.Eq{"id": id, "user_id": userID, "synced": false}).
		Suffix("RETURNING "+strings.Join(columns, ", ")))
	if err != nil {
		return nil, err
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "offline_change", id)
	}
	return toDomain(out), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListPending returns the user's unsynced, unresolved changes oldest first.
// A non-nil after restricts the page to changes positioned strictly after it.
func (r *Repo) ListPending(ctx context.Context, userID uuid.UUID, after *domain.ChangeCursor, limit int) ([]*domain.OfflineChange, error) {
	b := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID, "synced": false, "conflict_resolved": false}).
		OrderBy("created_at", "seq")
	if after != nil {
		b = b.Where(sq.Expr("(created_at, seq) > (?, ?)", after.CreatedAt, after.Seq))
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return r.list(ctx, "list pending changes", b)
}

// LockForApply reads a change and holds its row lock until the surrounding
// transaction ends, so two workers cannot apply the same change.
func (r *Repo) LockForApply(ctx context.Context, id uuid.UUID) (*domain.OfflineChange, error) {
	sql, args, err := postgres.Build("lock change", postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE"))
	if err != nil {
		return nil, err
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "offline_change", id)
	}
	return toDomain(out), nil
}

// ListByUser returns the user's changes newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, pendingOnly bool, limit, offset int) ([]*domain.OfflineChange, error) {
	where := sq.Eq{"user_id": userID}
	if pendingOnly {
		where["synced"] = false
		where["conflict_resolved"] = false
	}
	return r.list(ctx, "list changes", postgres.Builder().
		Select(columns...).
		From(table).
		Where(where).
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

// UsersWithPending returns every user that has changes left to apply.
func (r *Repo) UsersWithPending(ctx context.Context) ([]uuid.UUID, error) {
	sql, args, err := postgres.Build("users with pending", postgres.Builder().
		Select("DISTINCT user_id").
		From(table).
		Where(sq.Eq{"synced": false, "conflict_resolved": false}))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("users with pending changes: %w", err)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) list(ctx context.Context, what string, b sq.SelectBuilder) ([]*domain.OfflineChange, error) {
	sql, args, err := postgres.Build(what, b)
	if err != nil {
		return nil, err
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return toDomainList(rows), nil
}

func toDomainList(rows []row) []*domain.OfflineChange {
	out := make([]*domain.OfflineChange, len(rows))
	for i, rw := range rows {
		out[i] = toDomain(rw)
	}
	return out
}

func toDomain(r row) *domain.OfflineChange {
	return &domain.OfflineChange{
		ID:               r.ID,
		UserID:           r.UserID,
		EntityType:       domain.EntityType(r.EntityType),
		EntityID:         r.EntityID,
		ChangeType:       domain.ChangeType(r.ChangeType),
		Data:             r.Data,
		CreatedAt:        r.CreatedAt,
		Seq:              r.Seq,
		Synced:           r.Synced,
		ConflictResolved: r.ConflictResolved,
		ErrorMessage:     r.ErrorMessage,
		Attempts:         r.Attempts,
		SyncedAt:         r.SyncedAt,
	}
}
