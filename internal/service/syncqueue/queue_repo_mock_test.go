package syncqueue

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/learnsync/internal/domain"
	"sync"
	"time"
)

var _ queueRepo = &queueRepoMock{}

type queueRepoMock struct {
	GetOrCreateManyFunc func(ctx context.Context, userID uuid.UUID, versionIDs []uuid.UUID) (domain.QueueBuildResult, error)
	ClaimPendingFunc    func(ctx context.Context, userID uuid.UUID, limit int, lease time.Duration) ([]*domain.SyncQueueEntry, error)
	AckFunc             func(ctx context.Context, userID uuid.UUID, id uuid.UUID, status domain.SyncStatus, message *string) error
	ListByUserFunc      func(ctx context.Context, userID uuid.UUID, status *domain.SyncStatus, limit int, offset int) ([]*domain.SyncQueueEntry, error)
	CountByStatusFunc   func(ctx context.Context, userID uuid.UUID) (map[domain.SyncStatus]int, error)

	calls struct {
		GetOrCreateMany []struct {
			Ctx        context.Context
			UserID     uuid.UUID
			VersionIDs []uuid.UUID
		}
		ClaimPending []struct {
			Ctx    context.Context
			UserID uuid.UUID
			Limit  int
			Lease  time.Duration
		}
		Ack []struct {
			Ctx     context.Context
			UserID  uuid.UUID
			ID      uuid.UUID
			Status  domain.SyncStatus
			Message *string
		}
		ListByUser []struct {
			Ctx    context.Context
			UserID uuid.UUID
			Status *domain.SyncStatus
			Limit  int
			Offset int
		}
		CountByStatus []struct {
			Ctx    context.Context
			UserID uuid.UUID
		}
	}
	lockGetOrCreateMany sync.RWMutex
	lockClaimPending    sync.RWMutex
	lockAck             sync.RWMutex
	lockListByUser      sync.RWMutex
	lockCountByStatus   sync.RWMutex
}

func (mock *queueRepoMock) GetOrCreateMany(ctx context.Context, userID uuid.UUID, versionIDs []uuid.UUID) (domain.QueueBuildResult, error) {
	if mock.GetOrCreateManyFunc == nil {
		panic("queueRepoMock.GetOrCreateManyFunc: method is nil but queueRepo.GetOrCreateMany was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		UserID     uuid.UUID
		VersionIDs []uuid.UUID
	}{Ctx: ctx, UserID: userID, VersionIDs: versionIDs}
	mock.lockGetOrCreateMany.Lock()
	mock.calls.GetOrCreateMany = append(mock.calls.GetOrCreateMany, callInfo)
	mock.lockGetOrCreateMany.Unlock()
	return mock.GetOrCreateManyFunc(ctx, userID, versionIDs)
}

func (mock *queueRepoMock) GetOrCreateManyCalls() []struct {
	Ctx        context.Context
	UserID     uuid.UUID
	VersionIDs []uuid.UUID
} {
	mock.lockGetOrCreateMany.RLock()
	calls := mock.calls.GetOrCreateMany
	mock.lockGetOrCreateMany.RUnlock()
	return calls
}

func (mock *queueRepoMock) ClaimPending(ctx context.Context, userID uuid.UUID, limit int, lease time.Duration) ([]*domain.SyncQueueEntry, error) {
	if mock.ClaimPendingFunc == nil {
		panic("queueRepoMock.ClaimPendingFunc: method is nil but queueRepo.ClaimPending was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		Limit  int
		Lease  time.Duration
	}{Ctx: ctx, UserID: userID, Limit: limit, Lease: lease}
	mock.lockClaimPending.Lock()
	mock.calls.ClaimPending = append(mock.calls.ClaimPending, callInfo)
	mock.lockClaimPending.Unlock()
	return mock.ClaimPendingFunc(ctx, userID, limit, lease)
}

func (mock *queueRepoMock) ClaimPendingCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
	Limit  int
	Lease  time.Duration
} {
	mock.lockClaimPending.RLock()
	calls := mock.calls.ClaimPending
	mock.lockClaimPending.RUnlock()
	return calls
}

func (mock *queueRepoMock) Ack(ctx context.Context, userID uuid.UUID, id uuid.UUID, status domain.SyncStatus, message *string) error {
	if mock.AckFunc == nil {
		panic("queueRepoMock.AckFunc: method is nil but queueRepo.Ack was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		UserID  uuid.UUID
		ID      uuid.UUID
		Status  domain.SyncStatus
		Message *string
	}{Ctx: ctx, UserID: userID, ID: id, Status: status, Message: message}
	mock.lockAck.Lock()
	mock.calls.Ack = append(mock.calls.Ack, callInfo)
	mock.lockAck.Unlock()
	return mock.AckFunc(ctx, userID, id, status, message)
}

func (mock *queueRepoMock) AckCalls() []struct {
	Ctx     context.Context
	UserID  uuid.UUID
	ID      uuid.UUID
	Status  domain.SyncStatus
	Message *string
} {
	mock.lockAck.RLock()
	calls := mock.calls.Ack
	mock.lockAck.RUnlock()
	return calls
}

func (mock *queueRepoMock) ListByUser(ctx context.Context, userID uuid.UUID, status *domain.SyncStatus, limit int, offset int) ([]*domain.SyncQueueEntry, error) {
	if mock.ListByUserFunc == nil {
		panic("queueRepoMock.ListByUserFunc: method is nil but queueRepo.ListByUser was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		Status *domain.SyncStatus
		Limit  int
		Offset int
	}{Ctx: ctx, UserID: userID, Status: status, Limit: limit, Offset: offset}
	mock.lockListByUser.Lock()
	mock.calls.ListByUser = append(mock.calls.ListByUser, callInfo)
	mock.lockListByUser.Unlock()
	return mock.ListByUserFunc(ctx, userID, status, limit, offset)
}

func (mock *queueRepoMock) ListByUserCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
	Status *domain.SyncStatus
	Limit  int
	Offset int
} {
	mock.lockListByUser.RLock()
	calls := mock.calls.ListByUser
	mock.lockListByUser.RUnlock()
	return calls
}

func (mock *queueRepoMock) CountByStatus(ctx context.Context, userID uuid.UUID) (map[domain.SyncStatus]int, error) {
	if mock.CountByStatusFunc == nil {
		panic("queueRepoMock.CountByStatusFunc: method is nil but queueRepo.CountByStatus was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
	}{Ctx: ctx, UserID: userID}
	mock.lockCountByStatus.Lock()
	mock.calls.CountByStatus = append(mock.calls.CountByStatus, callInfo)
	mock.lockCountByStatus.Unlock()
	return mock.CountByStatusFunc(ctx, userID)
}

func (mock *queueRepoMock) CountByStatusCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
} {
	mock.lockCountByStatus.RLock()
	calls := mock.calls.CountByStatus
	mock.lockCountByStatus.RUnlock()
	return calls
}
