package syncqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/pkg/ctxutil"
)

// Status returns the user's queue rows with per-status totals.
func (s *Service) Status(ctx context.Context, input StatusInput) (*StatusResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var filter *domain.SyncStatus
	if input.Status != "" {
		st := domain.SyncStatus(input.Status)
		filter = &st
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.cfg.DefaultPullLimit
	}

	entries, err := s.queue.ListByUser(ctx, userID, filter, limit, input.Offset)
	if err != nil {
		return nil, fmt.Errorf("list sync queue: %w", err)
	}

	counts, err := s.queue.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count sync queue: %w", err)
	}

	return &StatusResult{Counts: counts, Entries: entries}, nil
}

// Pull hands out up to limit deliverable rows with their version payloads
// and marks them in progress. Rows not acknowledged within the delivery
// lease are handed out again.
func (s *Service) Pull(ctx context.Context, limit int) ([]*domain.SyncQueueEntry, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if limit < 0 || limit > s.cfg.MaxPullLimit {
		return nil, domain.NewValidationError("limit", fmt.Sprintf("must be between 0 and %d", s.cfg.MaxPullLimit))
	}
	if limit == 0 {
		limit = s.cfg.DefaultPullLimit
	}

	entries, err := s.queue.ClaimPending(ctx, userID, limit, s.cfg.DeliveryLease)
	if err != nil {
		return nil, fmt.Errorf("claim deliveries: %w", err)
	}

	if len(entries) > 0 {
		s.log.DebugContext(ctx, "deliveries pulled",
			slog.String("user_id", userID.String()),
			slog.Int("count", len(entries)),
		)
	}

	return entries, nil
}

// Ack records delivery outcomes in one transaction. A completed row cannot
// be failed afterwards. The user's latest-versions cache is dropped so the
// next query sees the new completions.
func (s *Service) Ack(ctx context.Context, input AckInput) (*AckResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, item := range input.Items {
			status := domain.SyncStatus(item.Status)
			msg := item.Error
			if status == domain.SyncStatusCompleted {
				msg = nil
			}
			if err := s.queue.Ack(txCtx, userID, item.ID, status, msg); err != nil {
				return fmt.Errorf("ack %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(domain.LatestVersionsCacheKey(userID))

	s.log.InfoContext(ctx, "deliveries acknowledged",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(input.Items)),
	)

	return &AckResult{Acked: len(input.Items)}, nil
}
