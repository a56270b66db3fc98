// Package task implements the durable background task queue using PostgreSQL.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/learnsync/internal/adapter/postgres"
	"github.com/heartmarshall/learnsync/internal/domain"
)

const table = "sync_tasks"

var columns = []string{
	"id", "kind", "user_id", "status", "attempts", "last_error",
	"run_after", "leased_until", "created_at", "updated_at",
}

// Repo provides task persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new task repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID          uuid.UUID  `db:"id"`
	Kind        string     `db:"kind"`
	UserID      uuid.UUID  `db:"user_id"`
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	LastError   *string    `db:"last_error"`
	RunAfter    time.Time  `db:"run_after"`
	LeasedUntil *time.Time `db:"leased_until"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// ---------------------------------------------------------------------------
// Producer side
// ---------------------------------------------------------------------------

// enqueueSQL skips the insert when an identical task is already waiting.
// Two racing producers may both insert; consumers are idempotent.
var enqueueSQL = `
INSERT INTO sync_tasks (id, kind, user_id, run_after)
SELECT $1::uuid, $2::varchar, $3::uuid, now()
WHERE NOT EXISTS (
    SELECT 1 FROM sync_tasks
    WHERE kind = $2 AND user_id = $3 AND status = 'pending'
)
RETURNING ` + strings.Join(columns, ", ")

// Enqueue schedules kind for userID. Returns nil when an equivalent task
// is already pending.
func (r *Repo) Enqueue(ctx context.Context, kind domain.TaskKind, userID uuid.UUID) (*domain.Task, error) {
	var out row
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, enqueueSQL, uuid.New(), string(kind), userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError(err, "sync_task "+kind.String(), userID)
	}
	return toDomain(out), nil
}

// ---------------------------------------------------------------------------
// Consumer side
// ---------------------------------------------------------------------------

// claimSQL leases the oldest runnable task. Running tasks whose lease ran
// out are picked up again.
var claimSQL = `
UPDATE sync_tasks
SET status = 'running',
    attempts = attempts + 1,
    leased_until = now() + make_interval(secs => $1),
    updated_at = now()
WHERE id = (
    SELECT id FROM sync_tasks
    WHERE (status = 'pending' AND run_after <= now())
       OR (status = 'running' AND leased_until < now())
    ORDER BY run_after, created_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING ` + strings.Join(columns, ", ")

// Claim leases one runnable task for lease. Returns nil when there is none.
func (r *Repo) Claim(ctx context.Context, lease time.Duration) (*domain.Task, error) {
	var out row
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, claimSQL, lease.Seconds())
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim sync_task: %w", err)
	}
	return toDomain(out), nil
}

// Complete marks a task done.
func (r *Repo) Complete(ctx context.Context, id uuid.UUID) error {
	return r.finish(ctx, id, map[string]any{"status": string(domain.TaskStatusDone), "last_error": nil})
}

// Retry puts a task back to pending, runnable after runAfter.
func (r *Repo) Retry(ctx context.Context, id uuid.UUID, runAfter time.Time, lastErr string) error {
	return r.finish(ctx, id, map[string]any{
		"status":     string(domain.TaskStatusPending),
		"run_after":  runAfter,
		"last_error": lastErr,
	})
}

// Kill gives up on a task.
func (r *Repo) Kill(ctx context.Context, id uuid.UUID, lastErr string) error {
	return r.finish(ctx, id, map[string]any{"status": string(domain.TaskStatusDead), "last_error": lastErr})
}

// finish applies set to a task this worker still holds.
func (r *Repo) finish(ctx context.Context, id uuid.UUID, set map[string]any) error {
	b := postgres.Builder().
		Update(table).
		SetMap(set).
		Set("leased_until", nil).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "status": string(domain.TaskStatusRunning)})

	sql, args, err := postgres.Build("finish sync_task", b)
	if err != nil {
		return err
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "sync_task", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync_task %s is not running: %w", id, domain.ErrConflict)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Maintenance
// ---------------------------------------------------------------------------

// PurgeFinished deletes done and dead tasks last touched before cutoff.
func (r *Repo) PurgeFinished(ctx context.Context, cutoff time.Time) (int, error) {
	sql, args, err := postgres.Build("purge sync_tasks", postgres.Builder().
		Delete(table).
		Where(sq.Eq{"status": []string{string(domain.TaskStatusDone), string(domain.TaskStatusDead)}}).
		Where(sq.Lt{"updated_at": cutoff}))
	if err != nil {
		return 0, err
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("purge sync_tasks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CountByStatus returns the number of tasks in each status. Statuses with
// no tasks are absent from the map.
func (r *Repo) CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error) {
	sql, args, err := postgres.Build("count sync_tasks", postgres.Builder().
		Select("status", "COUNT(*)").
		From(table).
		GroupBy("status"))
	if err != nil {
		return nil, err
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("count sync_tasks: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.TaskStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan sync_tasks count: %w", err)
		}
		out[domain.TaskStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count sync_tasks: %w", err)
	}
	return out, nil
}

// GetByID returns a task by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	sql, args, err := postgres.Build("get sync_task", postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "sync_task", id)
	}
	return toDomain(out), nil
}

func toDomain(r row) *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Kind:        domain.TaskKind(r.Kind),
		UserID:      r.UserID,
		Status:      domain.TaskStatus(r.Status),
		Attempts:    r.Attempts,
		LastError:   r.LastError,
		RunAfter:    r.RunAfter,
		LeasedUntil: r.LeasedUntil,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
