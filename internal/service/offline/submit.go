package offline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/pkg/ctxutil"
)

// Submit appends the batch to the user's change log and schedules its
// processing in the same transaction. Changes are applied asynchronously.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	if err := input.checkShape(s.maxChanges); err != nil {
		return nil, err
	}

	changes := make([]*domain.OfflineChange, len(input.Changes))
	for i, c := range input.Changes {
		changes[i] = c.toDomain(userID)
		changes[i].ID = uuid.New()
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.changes.CreateBatch(txCtx, changes); err != nil {
			return fmt.Errorf("create offline changes: %w", err)
		}
		if _, err := s.tasks.Enqueue(txCtx, domain.TaskKindProcessChanges, userID); err != nil {
			return fmt.Errorf("enqueue processing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wake.Wake()

	ids := make([]uuid.UUID, len(changes))
	for i, c := range changes {
		ids[i] = c.ID
	}

	s.log.InfoContext(ctx, "offline changes queued",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(changes)),
	)

	return &SubmitResult{Accepted: len(changes), IDs: ids}, nil
}
