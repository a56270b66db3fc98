package syncqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/realtime"
	"github.com/heartmarshall/learnsync/pkg/ctxutil"
)

// BuildForUser makes sure the user's queue holds the latest version of
// every entity of every registered kind. Failed deliveries of those
// versions go back to pending. Connected clients are told when anything
// new became deliverable.
func (s *Service) BuildForUser(ctx context.Context, userID uuid.UUID) (domain.QueueBuildResult, error) {
	var total domain.QueueBuildResult

	for _, t := range s.types.Types() {
		latest, err := s.versions.LatestPerEntity(ctx, t)
		if err != nil {
			return total, fmt.Errorf("latest %s versions: %w", t, err)
		}
		if len(latest) == 0 {
			continue
		}

		ids := make([]uuid.UUID, len(latest))
		for i, v := range latest {
			ids[i] = v.ID
		}

		res, err := s.queue.GetOrCreateMany(ctx, userID, ids)
		if err != nil {
			return total, fmt.Errorf("queue %s versions: %w", t, err)
		}
		total.Created += res.Created
		total.Reset += res.Reset
	}

	if total.Created > 0 || total.Reset > 0 {
		s.notify.NotifyUser(userID, realtime.EventSyncAvailable, realtime.SyncAvailablePayload{
			Created: total.Created + total.Reset,
		})
	}

	s.log.InfoContext(ctx, "sync queue built",
		slog.String("user_id", userID.String()),
		slog.Int("created", total.Created),
		slog.Int("reset", total.Reset),
	)

	return total, nil
}

// RequestSync schedules a queue build for the authenticated user.
func (s *Service) RequestSync(ctx context.Context) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if _, err := s.tasks.Enqueue(ctx, domain.TaskKindBuildQueue, userID); err != nil {
		return fmt.Errorf("enqueue queue build: %w", err)
	}
	s.wake.Wake()

	s.log.InfoContext(ctx, "content sync requested", slog.String("user_id", userID.String()))
	return nil
}
