// Package syncqueue builds and serves the per-user delivery queue of
// content versions.
package syncqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/config"
	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/realtime"
)

type versionRepo interface {
	LatestPerEntity(ctx context.Context, t domain.EntityType) ([]*domain.ContentVersion, error)
}

type queueRepo interface {
	GetOrCreateMany(ctx context.Context, userID uuid.UUID, versionIDs []uuid.UUID) (domain.QueueBuildResult, error)
	ClaimPending(ctx context.Context, userID uuid.UUID, limit int, lease time.Duration) ([]*domain.SyncQueueEntry, error)
	Ack(ctx context.Context, userID, id uuid.UUID, status domain.SyncStatus, message *string) error
	ListByUser(ctx context.Context, userID uuid.UUID, status *domain.SyncStatus, limit, offset int) ([]*domain.SyncQueueEntry, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[domain.SyncStatus]int, error)
}

type taskQueue interface {
	Enqueue(ctx context.Context, kind domain.TaskKind, userID uuid.UUID) (*domain.Task, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type typeLister interface {
	Types() []domain.EntityType
}

type structValidator interface {
	Struct(s any) error
}

type waker interface {
	Wake()
}

type invalidator interface {
	Delete(key string)
}

type notifier interface {
	NotifyUser(userID uuid.UUID, event realtime.MessageType, payload any) int
}

// Service builds sync queues and lets clients pull and acknowledge them.
type Service struct {
	versions  versionRepo
	queue     queueRepo
	tasks     taskQueue
	tx        txManager
	types     typeLister
	validator structValidator
	wake      waker
	cache     invalidator
	notify    notifier
	cfg       config.SyncConfig
	log       *slog.Logger
}

// NewService creates the sync queue service.
func NewService(
	log *slog.Logger,
	versions versionRepo,
	queue queueRepo,
	tasks taskQueue,
	tx txManager,
	types typeLister,
	validator structValidator,
	wake waker,
	cache invalidator,
	notify notifier,
	cfg config.SyncConfig,
) *Service {
	return &Service{
		versions:  versions,
		queue:     queue,
		tasks:     tasks,
		tx:        tx,
		types:     types,
		validator: validator,
		wake:      wake,
		cache:     cache,
		notify:    notify,
		cfg:       cfg,
		log:       log.With("service", "syncqueue"),
	}
}
