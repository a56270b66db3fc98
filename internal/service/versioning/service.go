// Package versioning answers read queries over immutable content versions.
package versioning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/pkg/ctxutil"
)

type versionRepo interface {
	GetCompletedForUser(ctx context.Context, userID, id uuid.UUID) (*domain.ContentVersion, error)
	ListCompletedForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ContentVersion, int, error)
	LatestCompletedForUser(ctx context.Context, userID uuid.UUID) (domain.LatestVersions, error)
	Latest(ctx context.Context, ref domain.EntityRef) (*domain.ContentVersion, error)
	ListByEntity(ctx context.Context, ref domain.EntityRef) ([]*domain.ContentVersion, error)
}

type latestCache interface {
	Get(key string) (domain.LatestVersions, bool)
	Set(key string, value domain.LatestVersions)
}

type projectionCache interface {
	Get(key string) (*domain.ContentVersion, bool)
	Set(key string, value *domain.ContentVersion)
}

const defaultPageSize = 50

// Service serves version lookups. Per-user latest-version maps and
// per-entity projections are cached; writers invalidate them by key.
type Service struct {
	versions    versionRepo
	latest      latestCache
	projections projectionCache
	group       singleflight.Group
	log         *slog.Logger
}

// NewService creates the versioning service.
func NewService(log *slog.Logger, versions versionRepo, latest latestCache, projections projectionCache) *Service {
	return &Service{
		versions:    versions,
		latest:      latest,
		projections: projections,
		log:         log.With("service", "versioning"),
	}
}

// LatestVersions maps "<type>:<id>" to the highest version the user has
// acknowledged. Results may be stale until the cache entry expires or the
// user acknowledges a delivery.
func (s *Service) LatestVersions(ctx context.Context) (domain.LatestVersions, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	key := domain.LatestVersionsCacheKey(userID)
	if m, hit := s.latest.Get(key); hit {
		return m, nil
	}

	// The query is shared by every caller waiting on key, so one caller
	// going away must not cancel it for the rest.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		m, err := s.versions.LatestCompletedForUser(shared, userID)
		if err != nil {
			return nil, err
		}
		s.latest.Set(key, m)
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("latest versions: %w", err)
	}

	return v.(domain.LatestVersions), nil
}

// VersionPage is one page of versions with the total count.
type VersionPage struct {
	Items []*domain.ContentVersion `json:"items"`
	Total int                      `json:"total"`
}

// ListVersions pages through the versions the user has acknowledged, newest first.
func (s *Service) ListVersions(ctx context.Context, limit, offset int) (*VersionPage, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var errs []domain.FieldError
	if limit < 0 || limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}
	if limit == 0 {
		limit = defaultPageSize
	}

	items, total, err := s.versions.ListCompletedForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return &VersionPage{Items: items, Total: total}, nil
}

// GetVersion returns one acknowledged version.
func (s *Service) GetVersion(ctx context.Context, id uuid.UUID) (*domain.ContentVersion, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	v, err := s.versions.GetCompletedForUser(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// LatestForEntity returns the newest version of an entity, tombstones
// included. The result is cached under the entity's projection key.
func (s *Service) LatestForEntity(ctx context.Context, ref domain.EntityRef) (*domain.ContentVersion, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	key := ref.CacheKey()
	if v, hit := s.projections.Get(key); hit {
		return v, nil
	}

	v, err := s.versions.Latest(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("latest version of %s: %w", ref, err)
	}
	s.projections.Set(key, v)

	s.log.DebugContext(ctx, "projection cached", slog.String("entity", ref.String()))
	return v, nil
}

// EntityHistory returns every version of an entity, oldest first.
func (s *Service) EntityHistory(ctx context.Context, ref domain.EntityRef) ([]*domain.ContentVersion, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	versions, err := s.versions.ListByEntity(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", ref, err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
	}
	return versions, nil
}

func validateRef(ref domain.EntityRef) error {
	var errs []domain.FieldError
	if !ref.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "unknown entity type"})
	}
	if ref.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be > 0"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
