// Package offline accepts client changes recorded while offline and replays
// them against the live content store.
package offline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/catalog"
	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/realtime"
)

type changeRepo interface {
	CreateBatch(ctx context.Context, changes []*domain.OfflineChange) ([]*domain.OfflineChange, error)
	ListByUser(ctx context.Context, userID uuid.UUID, pendingOnly bool, limit, offset int) ([]*domain.OfflineChange, error)
	Resolve(ctx context.Context, userID, id uuid.UUID) (*domain.OfflineChange, error)

	// processor side
	ListPending(ctx context.Context, userID uuid.UUID, after *domain.ChangeCursor, limit int) ([]*domain.OfflineChange, error)
	LockForApply(ctx context.Context, id uuid.UUID) (*domain.OfflineChange, error)
	MarkSynced(ctx context.Context, id uuid.UUID, entityID int64) error
	RecordError(ctx context.Context, id uuid.UUID, message string) error
}

type versionRepo interface {
	NextVersion(ctx context.Context, ref domain.EntityRef) (int, error)
	Create(ctx context.Context, v *domain.ContentVersion) (*domain.ContentVersion, error)
}

type taskQueue interface {
	Enqueue(ctx context.Context, kind domain.TaskKind, userID uuid.UUID) (*domain.Task, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type structValidator interface {
	Struct(s any) error
}

type waker interface {
	Wake()
}

type kindRegistry interface {
	Lookup(t domain.EntityType) (catalog.Entry, bool)
	Decode(t domain.EntityType, ct domain.ChangeType, raw json.RawMessage) (catalog.Values, error)
}

type invalidator interface {
	Delete(key string)
}

type notifier interface {
	NotifyUser(userID uuid.UUID, event realtime.MessageType, payload any) int
}

const defaultListLimit = 50

// Service records offline changes and exposes the user's change log.
type Service struct {
	changes    changeRepo
	tasks      taskQueue
	tx         txManager
	validator  structValidator
	wake       waker
	maxChanges int
	log        *slog.Logger
}

// NewService creates the change log service. maxChanges bounds one submission.
func NewService(
	log *slog.Logger,
	changes changeRepo,
	tasks taskQueue,
	tx txManager,
	validator structValidator,
	wake waker,
	maxChanges int,
) *Service {
	return &Service{
		changes:    changes,
		tasks:      tasks,
		tx:         tx,
		validator:  validator,
		wake:       wake,
		maxChanges: maxChanges,
		log:        log.With("service", "offline"),
	}
}
