// Package syncqueue implements the per-user delivery queue using PostgreSQL.
package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/learnsync/internal/adapter/postgres"
	"github.com/heartmarshall/learnsync/internal/domain"
)

// Repo provides sync queue persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new sync queue repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// joined is a queue row together with the version it references.
type joined struct {
	ID               uuid.UUID `db:"id"`
	UserID           uuid.UUID `db:"user_id"`
	ContentVersionID uuid.UUID `db:"content_version_id"`
	Status           string    `db:"status"`
	ErrorMessage     *string   `db:"error_message"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`

	EntityType       string    `db:"entity_type"`
	EntityID         int64     `db:"entity_id"`
	Version          int       `db:"version"`
	Deleted          bool      `db:"deleted"`
	Data             []byte    `db:"data"`
	VersionCreatedAt time.Time `db:"version_created_at"`
}

var joinedColumns = []string{
	"q.id", "q.user_id", "q.content_version_id", "q.status", "q.error_message", "q.created_at", "q.updated_at",
	"cv.entity_type", "cv.entity_id", "cv.version", "cv.deleted", "cv.data", "cv.created_at AS version_created_at",
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// getOrCreateSQL inserts a pending row, or revives a failed one. A row in any
// other state is left alone and no row is returned.
const getOrCreateSQL = `
INSERT INTO sync_queue (id, user_id, content_version_id, status)
VALUES ($1, $2, $3, 'pending')
ON CONFLICT (user_id, content_version_id) DO UPDATE
    SET status = 'pending', error_message = NULL, updated_at = now()
    WHERE sync_queue.status = 'failed'
RETURNING (xmax = 0) AS inserted`

// GetOrCreateMany makes sure the user has a queue row for every version id,
// sending all statements in one batch. Failed rows are reset to pending.
func (r *Repo) GetOrCreateMany(ctx context.Context, userID uuid.UUID, versionIDs []uuid.UUID) (domain.QueueBuildResult, error) {
	var res domain.QueueBuildResult
	if len(versionIDs) == 0 {
		return res, nil
	}

	batch := &pgx.Batch{}
	for _, vid := range versionIDs {
		batch.Queue(getOrCreateSQL, uuid.New(), userID, vid)
	}

	br := postgres.QuerierFromCtx(ctx, r.db).SendBatch(ctx, batch)
	defer br.Close()

	for _, vid := range versionIDs {
		var inserted bool
		err := br.QueryRow().Scan(&inserted)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			continue
		case err != nil:
			return res, postgres.MapError(err, "sync_queue version", vid)
		case inserted:
			res.Created++
		default:
			res.Reset++
		}
	}

	if err := br.Close(); err != nil {
		return res, fmt.Errorf("close sync_queue batch: %w", err)
	}
	return res, nil
}

// claimSQL moves up to $3 deliverable rows to in_progress. Rows stuck in
// in_progress longer than the lease ($2 seconds) are handed out again.
const claimSQL = `
WITH claimed AS (
    SELECT id FROM sync_queue
    WHERE user_id = $1
      AND (status = 'pending'
           OR (status = 'in_progress' AND updated_at < now() - make_interval(secs => $2)))
    ORDER BY created_at, id
    LIMIT $3
    FOR UPDATE SKIP LOCKED
), q AS (
    UPDATE sync_queue s
    SET status = 'in_progress', updated_at = now()
    FROM claimed
    WHERE s.id = claimed.id
    RETURNING s.*
)
SELECT q.id, q.user_id, q.content_version_id, q.status, q.error_message, q.created_at, q.updated_at,
       cv.entity_type, cv.entity_id, cv.version, cv.deleted, cv.data, cv.created_at AS version_created_at
FROM q
JOIN content_versions cv ON cv.id = q.content_version_id
ORDER BY q.created_at, q.id`

// ClaimPending hands out deliverable rows together with their versions.
func (r *Repo) ClaimPending(ctx context.Context, userID uuid.UUID, limit int, lease time.Duration) ([]*domain.SyncQueueEntry, error) {
	var rows []joined
	err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, claimSQL, userID, lease.Seconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("claim sync_queue: %w", err)
	}
	return toDomainList(rows), nil
}

// Ack records the client's delivery outcome. A completed row cannot be
// moved back to failed. Returns domain.ErrNotFound if the user has no such
// row in an acknowledgeable state.
func (r *Repo) Ack(ctx context.Context, userID, id uuid.UUID, status domain.SyncStatus, message *string) error {
	where := sq.And{sq.Eq{"id": id, "user_id": userID}}
	if status != domain.SyncStatusCompleted {
		where = append(where, sq.NotEq{"status": string(domain.SyncStatusCompleted)})
	}

	sql, args, err := postgres.Build("ack sync_queue", postgres.Builder().
		Update("sync_queue").
		Set("status", string(status)).
		Set("error_message", message).
		Set("updated_at", sq.Expr("now()")).
		Where(where))
	if err != nil {
		return err
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "sync_queue", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync_queue %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListByUser returns the user's queue rows, oldest first, optionally
// filtered by status.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, status *domain.SyncStatus, limit, offset int) ([]*domain.SyncQueueEntry, error) {
	where := sq.Eq{"q.user_id": userID}
	if status != nil {
		where["q.status"] = string(*status)
	}

	sql, args, err := postgres.Build("list sync_queue", postgres.Builder().
		Select(joinedColumns...).
		From("sync_queue q").
		Join("content_versions cv ON cv.id = q.content_version_id").
		Where(where).
		OrderBy("q.created_at", "q.id").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, err
	}

	var rows []joined
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list sync_queue: %w", err)
	}
	return toDomainList(rows), nil
}

type statusCount struct {
	Status string `db:"status"`
	N      int    `db:"n"`
}

// CountByStatus returns how many of the user's rows are in each status.
// Statuses without rows are reported as zero.
func (r *Repo) CountByStatus(ctx context.Context, userID uuid.UUID) (map[domain.SyncStatus]int, error) {
	sql, args, err := postgres.Build("count sync_queue", postgres.Builder().
		Select("status", "COUNT(*) AS n").
		From("sync_queue").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("status"))
	if err != nil {
		return nil, err
	}

	var rows []statusCount
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("count sync_queue: %w", err)
	}

	out := map[domain.SyncStatus]int{
		domain.SyncStatusPending:    0,
		domain.SyncStatusInProgress: 0,
		domain.SyncStatusCompleted:  0,
		domain.SyncStatusFailed:     0,
	}
	for _, sc := range rows {
		out[domain.SyncStatus(sc.Status)] = sc.N
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func toDomainList(rows []joined) []*domain.SyncQueueEntry {
	out := make([]*domain.SyncQueueEntry, len(rows))
	for i, rw := range rows {
		out[i] = toDomain(rw)
	}
	return out
}

func toDomain(r joined) *domain.SyncQueueEntry {
	return &domain.SyncQueueEntry{
		ID:               r.ID,
		UserID:           r.UserID,
		ContentVersionID: r.ContentVersionID,
		Status:           domain.SyncStatus(r.Status),
		ErrorMessage:     r.ErrorMessage,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Version: &domain.ContentVersion{
			ID:         r.ContentVersionID,
			EntityType: domain.EntityType(r.EntityType),
			EntityID:   r.EntityID,
			Version:    r.Version,
			Deleted:    r.Deleted,
			Data:       json.RawMessage(r.Data),
			CreatedAt:  r.VersionCreatedAt,
		},
	}
}
