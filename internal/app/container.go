package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/learnsync/internal/adapter/postgres"
	pgcatalog "github.com/heartmarshall/learnsync/internal/adapter/postgres/catalog"
	"github.com/heartmarshall/learnsync/internal/adapter/postgres/contentversion"
	"github.com/heartmarshall/learnsync/internal/adapter/postgres/offlinechange"
	queuerepo "github.com/heartmarshall/learnsync/internal/adapter/postgres/syncqueue"
	"github.com/heartmarshall/learnsync/internal/adapter/postgres/task"
	"github.com/heartmarshall/learnsync/internal/auth"
	"github.com/heartmarshall/learnsync/internal/cache"
	"github.com/heartmarshall/learnsync/internal/catalog"
	"github.com/heartmarshall/learnsync/internal/config"
	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/realtime"
	"github.com/heartmarshall/learnsync/internal/service/offline"
	"github.com/heartmarshall/learnsync/internal/service/syncqueue"
	"github.com/heartmarshall/learnsync/internal/service/versioning"
	"github.com/heartmarshall/learnsync/internal/validation"
	"github.com/heartmarshall/learnsync/internal/worker"
)

// Container holds the wired application graph. Commands that need a subset
// of it (reconcile, cleanup) build one and use only what they need.
type Container struct {
	Pool *pgxpool.Pool

	Changes *offlinechange.Repo
	Tasks   *task.Repo

	Offline    *offline.Service
	Processor  *offline.Processor
	Queue      *syncqueue.Service
	Versioning *versioning.Service

	Hub     *realtime.Hub
	Workers *worker.Pool
	JWT     *auth.JWTManager
}

// NewContainer connects to the database, optionally migrates it, and wires
// every repository and service. Close releases the pool.
func NewContainer(ctx context.Context, cfg *config.Config, log *slog.Logger, appName string) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database, appName)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	c, err := Wire(pool, cfg, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// Wire builds the graph on an existing pool. It does not start the hub or
// the workers.
func Wire(pool *pgxpool.Pool, cfg *config.Config, log *slog.Logger) (*Container, error) {
	validator, err := validation.New()
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}

	latest, err := cache.New[domain.LatestVersions](cfg.Sync.CacheSize, cfg.Sync.LatestVersionsTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("latest versions cache: %w", err)
	}
	projections, err := cache.New[*domain.ContentVersion](cfg.Sync.CacheSize, cfg.Sync.LatestVersionsTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("projection cache: %w", err)
	}

	registry := catalog.NewRegistry(validator.Engine())
	pgcatalog.Register(registry, pool, catalog.Kinds()...)

	txManager := postgres.NewTxManager(pool)
	changes := offlinechange.New(pool)
	versions := contentversion.New(pool)
	queue := queuerepo.New(pool)
	tasks := task.New(pool)

	hub := realtime.NewHub(log, cfg.WebSocket)
	workers := worker.New(log, tasks, cfg.Sync, nil)

	c := &Container{
		Pool:    pool,
		Changes: changes,
		Tasks:   tasks,
		Hub:     hub,
		Workers: workers,
		JWT:     auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, nil),
	}

	c.Offline = offline.NewService(log, changes, tasks, txManager, validator, workers, cfg.Sync.MaxChangesPerBatch)
	c.Processor = offline.NewProcessor(log, changes, versions, tasks, txManager, registry, projections, hub, cfg.Sync.ProcessBatchSize)
	c.Queue = syncqueue.NewService(log, versions, queue, tasks, txManager, registry, validator, workers, latest, hub, cfg.Sync)
	c.Versioning = versioning.NewService(log, versions, latest, projections)

	workers.Handle(domain.TaskKindProcessChanges, func(ctx context.Context, t *domain.Task) error {
		_, err := c.Processor.ProcessPending(ctx, t.UserID)
		return err
	})
	workers.Handle(domain.TaskKindBuildQueue, func(ctx context.Context, t *domain.Task) error {
		_, err := c.Queue.BuildForUser(ctx, t.UserID)
		return err
	})

	return c, nil
}

// Close releases the database pool.
func (c *Container) Close() {
	c.Pool.Close()
}
