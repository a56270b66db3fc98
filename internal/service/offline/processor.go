package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/realtime"
)

// Processor replays pending offline changes against the live store.
type Processor struct {
	changes   changeRepo
	versions  versionRepo
	tasks     taskQueue
	tx        txManager
	registry  kindRegistry
	cache     invalidator
	notify    notifier
	batchSize int
	log       *slog.Logger
}

// NewProcessor creates a Processor that reads pending changes batchSize at a time.
func NewProcessor(
	log *slog.Logger,
	changes changeRepo,
	versions versionRepo,
	tasks taskQueue,
	tx txManager,
	registry kindRegistry,
	cache invalidator,
	notify notifier,
	batchSize int,
) *Processor {
	return &Processor{
		changes:   changes,
		versions:  versions,
		tasks:     tasks,
		tx:        tx,
		registry:  registry,
		cache:     cache,
		notify:    notify,
		batchSize: batchSize,
		log:       log.With("service", "offline_processor"),
	}
}

type outcome int

const (
	outcomeApplied outcome = iota
	outcomeSkipped
)

// ProcessPending applies the user's pending changes oldest first, each in
// its own transaction. A failing change is recorded on its row and does not
// stop the run: the log is read page by page past the last change tried, so
// changes that keep failing never hide the ones behind them. Only failing to
// list changes is returned as an error.
func (p *Processor) ProcessPending(ctx context.Context, userID uuid.UUID) (domain.ProcessResult, error) {
	var (
		res   domain.ProcessResult
		after *domain.ChangeCursor
	)

	for {
		pending, err := p.changes.ListPending(ctx, userID, after, p.batchSize)
		if err != nil {
			return res, fmt.Errorf("list pending changes: %w", err)
		}

		for _, change := range pending {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			ref, out, applyErr := p.apply(ctx, change.ID)
			switch {
			case applyErr != nil:
				res.Failed++
				p.fail(ctx, change, applyErr)
			case out == outcomeSkipped:
				res.Skipped++
			default:
				res.Applied++
				p.cache.Delete(ref.CacheKey())
			}
		}

		if p.batchSize <= 0 || len(pending) < p.batchSize {
			break
		}
		cursor := pending[len(pending)-1].Cursor()
		after = &cursor
	}

	if res.Applied > 0 || res.Failed > 0 {
		p.notify.NotifyUser(userID, realtime.EventChangesProcessed, realtime.ChangesProcessedPayload{
			Applied: res.Applied,
			Failed:  res.Failed,
			Skipped: res.Skipped,
		})
	}

	if res.Total() > 0 {
		p.log.InfoContext(ctx, "offline changes processed",
			slog.String("user_id", userID.String()),
			slog.Int("applied", res.Applied),
			slog.Int("failed", res.Failed),
			slog.Int("skipped", res.Skipped),
		)
	}

	return res, nil
}

// apply runs one change: lock, re-check, mutate, version, mark synced and
// schedule a queue build, all in one transaction.
func (p *Processor) apply(ctx context.Context, changeID uuid.UUID) (domain.EntityRef, outcome, error) {
	var (
		ref domain.EntityRef
		out = outcomeApplied
	)

	err := p.tx.RunInTx(ctx, func(txCtx context.Context) error {
		change, err := p.changes.LockForApply(txCtx, changeID)
		if err != nil {
			return fmt.Errorf("lock change: %w", err)
		}
		if !change.IsPending() {
			out = outcomeSkipped
			return nil
		}

		entityID, snapshot, err := p.mutate(txCtx, change)
		if err != nil {
			return err
		}
		ref = domain.EntityRef{Type: change.EntityType, ID: entityID}

		next, err := p.versions.NextVersion(txCtx, ref)
		if err != nil {
			return fmt.Errorf("next version: %w", err)
		}

		_, err = p.versions.Create(txCtx, &domain.ContentVersion{
			EntityType: ref.Type,
			EntityID:   ref.ID,
			Version:    next,
			Deleted:    change.ChangeType == domain.ChangeTypeDelete,
			Data:       snapshot,
		})
		if err != nil {
			return fmt.Errorf("create version: %w", err)
		}

		if err := p.changes.MarkSynced(txCtx, change.ID, entityID); err != nil {
			return fmt.Errorf("mark synced: %w", err)
		}

		if _, err := p.tasks.Enqueue(txCtx, domain.TaskKindBuildQueue, change.UserID); err != nil {
			return fmt.Errorf("enqueue queue build: %w", err)
		}
		return nil
	})

	return ref, out, err
}

// mutate applies the change to the live store and returns the id of the
// affected entity together with the snapshot to version.
func (p *Processor) mutate(ctx context.Context, change *domain.OfflineChange) (int64, json.RawMessage, error) {
	entry, ok := p.registry.Lookup(change.EntityType)
	if !ok {
		return 0, nil, domain.NewValidationError("entity_type",
			fmt.Sprintf("unsupported entity type %q", change.EntityType))
	}

	values, err := p.registry.Decode(change.EntityType, change.ChangeType, change.Data)
	if err != nil {
		return 0, nil, err
	}

	switch change.ChangeType {
	case domain.ChangeTypeCreate:
		id, snapshot, err := entry.Applier.ApplyCreate(ctx, change.EntityID, values)
		if err != nil {
			return 0, nil, fmt.Errorf("create %s: %w", change.EntityType, err)
		}
		return id, snapshot, nil

	case domain.ChangeTypeUpdate:
		snapshot, err := entry.Applier.ApplyUpdate(ctx, change.EntityID, values)
		if err != nil {
			return 0, nil, fmt.Errorf("update %s: %w", change.Ref(), err)
		}
		return change.EntityID, snapshot, nil

	case domain.ChangeTypeDelete:
		snapshot, err := entry.Applier.ApplyDelete(ctx, change.EntityID)
		if err != nil {
			return 0, nil, fmt.Errorf("delete %s: %w", change.Ref(), err)
		}
		return change.EntityID, snapshot, nil
	}

	return 0, nil, domain.NewValidationError("change_type",
		fmt.Sprintf("unsupported change type %q", change.ChangeType))
}

// fail stores the error on the change row outside the rolled back transaction.
func (p *Processor) fail(ctx context.Context, change *domain.OfflineChange, cause error) {
	level := slog.LevelWarn
	if !isClientError(cause) {
		level = slog.LevelError
	}
	p.log.Log(ctx, level, "offline change failed",
		slog.String("change_id", change.ID.String()),
		slog.String("user_id", change.UserID.String()),
		slog.String("entity", change.Ref().String()),
		slog.String("change_type", change.ChangeType.String()),
		slog.String("error", cause.Error()),
	)

	if err := p.changes.RecordError(ctx, change.ID, cause.Error()); err != nil {
		p.log.ErrorContext(ctx, "record change error",
			slog.String("change_id", change.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// isClientError reports errors caused by the change itself rather than
// by the infrastructure.
func isClientError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrAlreadyExists) ||
		errors.Is(err, domain.ErrConflict)
}
