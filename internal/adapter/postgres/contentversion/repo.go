// Package contentversion implements the immutable content version store.
package contentversion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/learnsync/internal/adapter/postgres"
	"github.com/heartmarshall/learnsync/internal/domain"
)

const table = "content_versions"

var columns = []string{"id", "entity_type", "entity_id", "version", "deleted", "data", "created_at"}

// Repo provides content version persistence backed by PostgreSQL.
// Rows are only ever inserted; the schema rejects updates.
type Repo struct {
	db postgres.Querier
}

// New creates a new content version repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID         uuid.UUID `db:"id"`
	EntityType string    `db:"entity_type"`
	EntityID   int64     `db:"entity_id"`
	Version    int       `db:"version"`
	Deleted    bool      `db:"deleted"`
	Data       []byte    `db:"data"`
	CreatedAt  time.Time `db:"created_at"`
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// NextVersion returns the number the next version of ref must carry:
// the count of existing versions plus one. Callers hold the entity's row
// lock so concurrent writers cannot observe the same count.
func (r *Repo) NextVersion(ctx context.Context, ref domain.EntityRef) (int, error) {
	sql, args, err := postgres.Build("count versions", postgres.Builder().
		Select("COUNT(*)").
		From(table).
		Where(sq.Eq{"entity_type": string(ref.Type), "entity_id": ref.ID}))
	if err != nil {
		return 0, err
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count versions of %s: %w", ref, err)
	}
	return n + 1, nil
}

// Create inserts v. ID and CreatedAt are assigned when zero.
// Returns domain.ErrAlreadyExists if the (type, id, version) triple is taken.
func (r *Repo) Create(ctx context.Context, v *domain.ContentVersion) (*domain.ContentVersion, error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	data := v.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	sql, args, err := postgres.Build("insert version", postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(v.ID, string(v.EntityType), v.EntityID, v.Version, v.Deleted, []byte(data), v.CreatedAt).
		Suffix("RETURNING "+strings.Join(columns, ", ")))
	if err != nil {
		return nil, err
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "content_version", v.Ref())
	}
	return toDomain(out), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a version by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentVersion, error) {
	return r.getOne(ctx, id, postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}))
}

// Latest returns the highest version of ref.
func (r *Repo) Latest(ctx context.Context, ref domain.EntityRef) (*domain.ContentVersion, error) {
	return r.getOne(ctx, ref, postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"entity_type": string(ref.Type), "entity_id": ref.ID}).
		OrderBy("version DESC").
		Limit(1))
}

// ListByEntity returns every version of ref, oldest first.
func (r *Repo) ListByEntity(ctx context.Context, ref domain.EntityRef) ([]*domain.ContentVersion, error) {
	return r.list(ctx, "list versions of "+ref.String(), postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"entity_type": string(ref.Type), "entity_id": ref.ID}).
		OrderBy("version ASC"))
}

// LatestPerEntity returns the highest version of every entity of type t.
func (r *Repo) LatestPerEntity(ctx context.Context, t domain.EntityType) ([]*domain.ContentVersion, error) {
	return r.list(ctx, "latest "+t.String()+" versions", postgres.Builder().
		Select(columns...).
		Options("DISTINCT ON (entity_id)").
		From(table).
		Where(sq.Eq{"entity_type": string(t)}).
		OrderBy("entity_id", "version DESC"))
}

// ---------------------------------------------------------------------------
// User-scoped reads (joined with sync_queue)
// ---------------------------------------------------------------------------

func completedForUser(userID uuid.UUID) sq.SelectBuilder {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = "cv." + c
	}
	return postgres.Builder().
		Select(cols...).
		From(table+" cv").
		Join("sync_queue q ON q.content_version_id = cv.id").
		Where(sq.Eq{"q.user_id": userID, "q.status": string(domain.SyncStatusCompleted)})
}

// ListCompletedForUser returns versions the user has acknowledged, newest
// first, and their total count.
func (r *Repo) ListCompletedForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ContentVersion, int, error) {
	countSQL, countArgs, err := postgres.Build("count completed versions", postgres.Builder().
		Select("COUNT(*)").
		From("sync_queue").
		Where(sq.Eq{"user_id": userID, "status": string(domain.SyncStatusCompleted)}))
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count completed versions: %w", err)
	}

	items, err := r.list(ctx, "list completed versions", completedForUser(userID).
		OrderBy("cv.created_at DESC", "cv.id").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetCompletedForUser returns a version only if the user has acknowledged it.
func (r *Repo) GetCompletedForUser(ctx context.Context, userID, id uuid.UUID) (*domain.ContentVersion, error) {
	return r.getOne(ctx, id, completedForUser(userID).Where(sq.Eq{"cv.id": id}))
}

type latestRow struct {
	EntityType string `db:"entity_type"`
	EntityID   int64  `db:"entity_id"`
	Version    int    `db:"version"`
}

// LatestCompletedForUser maps "type:id" to the highest version number among
// versions whose queue row for the user is completed.
func (r *Repo) LatestCompletedForUser(ctx context.Context, userID uuid.UUID) (domain.LatestVersions, error) {
	sql, args, err := postgres.Build("latest completed versions", postgres.Builder().
		Select("cv.entity_type", "cv.entity_id", "MAX(cv.version) AS version").
		From(table+" cv").
		Join("sync_queue q ON q.content_version_id = cv.id").
		Where(sq.Eq{"q.user_id": userID, "q.status": string(domain.SyncStatusCompleted)}).
		GroupBy("cv.entity_type", "cv.entity_id"))
	if err != nil {
		return nil, err
	}

	var rows []latestRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("latest completed versions: %w", err)
	}

	out := make(domain.LatestVersions, len(rows))
	for _, lr := range rows {
		out.Observe(domain.EntityRef{Type: domain.EntityType(lr.EntityType), ID: lr.EntityID}, lr.Version)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) getOne(ctx context.Context, id any, b sq.SelectBuilder) (*domain.ContentVersion, error) {
	sql, args, err := postgres.Build("get version", b)
	if err != nil {
		return nil, err
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "content_version", id)
	}
	return toDomain(out), nil
}

func (r *Repo) list(ctx context.Context, what string, b sq.SelectBuilder) ([]*domain.ContentVersion, error) {
	sql, args, err := postgres.Build(what, b)
	if err != nil {
		return nil, err
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	out := make([]*domain.ContentVersion, len(rows))
	for i, rw := range rows {
		out[i] = toDomain(rw)
	}
	return out, nil
}

func toDomain(r row) *domain.ContentVersion {
	return &domain.ContentVersion{
		ID:         r.ID,
		EntityType: domain.EntityType(r.EntityType),
		EntityID:   r.EntityID,
		Version:    r.Version,
		Deleted:    r.Deleted,
		Data:       json.RawMessage(r.Data),
		CreatedAt:  r.CreatedAt,
	}
}
