package offline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/pkg/ctxutil"
)

// ListChanges returns the user's change log, newest first.
func (s *Service) ListChanges(ctx context.Context, input ListChangesInput) ([]*domain.OfflineChange, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	changes, err := s.changes.ListByUser(ctx, userID, input.PendingOnly, limit, input.Offset)
	if err != nil {
		return nil, fmt.Errorf("list offline changes: %w", err)
	}
	return changes, nil
}

// Resolve marks a change as conflict-resolved so the processor stops
// retrying it. Synced changes cannot be resolved and report not found.
func (s *Service) Resolve(ctx context.Context, changeID uuid.UUID) (*domain.OfflineChange, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if changeID == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}

	change, err := s.changes.Resolve(ctx, userID, changeID)
	if err != nil {
		return nil, fmt.Errorf("resolve offline change: %w", err)
	}

	s.log.InfoContext(ctx, "offline change resolved",
		slog.String("user_id", userID.String()),
		slog.String("change_id", changeID.String()),
	)

	return change, nil
}
