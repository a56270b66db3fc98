package offline

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/learnsync/internal/domain"
	"sync"
)

var _ changeRepo = &changeRepoMock{}

type changeRepoMock struct {
	CreateBatchFunc  func(ctx context.Context, changes []*domain.OfflineChange) ([]*domain.OfflineChange, error)
	ListByUserFunc   func(ctx context.Context, userID uuid.UUID, pendingOnly bool, limit int, offset int) ([]*domain.OfflineChange, error)
	ResolveFunc      func(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.OfflineChange, error)
	ListPendingFunc  func(ctx context.Context, userID uuid.UUID, after *domain.ChangeCursor, limit int) ([]*domain.OfflineChange, error)
	LockForApplyFunc func(ctx context.Context, id uuid.UUID) (*domain.OfflineChange, error)
	MarkSyncedFunc   func(ctx context.Context, id uuid.UUID, entityID int64) error
	RecordErrorFunc  func(ctx context.Context, id uuid.UUID, message string) error

	calls struct {
		CreateBatch []struct {
			Ctx     context.Context
			Changes []*domain.OfflineChange
		}
		ListByUser []struct {
			Ctx         context.Context
			UserID      uuid.UUID
			PendingOnly bool
			Limit       int
			Offset      int
		}
		Resolve []struct {
			Ctx    context.Context
			UserID uuid.UUID
			ID     uuid.UUID
		}
		ListPending []struct {
			Ctx    context.Context
			UserID uuid.UUID
			After  *domain.ChangeCursor
			Limit  int
		}
		LockForApply []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		MarkSynced []struct {
			Ctx      context.Context
			ID       uuid.UUID
			EntityID int64
		}
		RecordError []struct {
			Ctx     context.Context
			ID      uuid.UUID
			Message string
		}
	}
	lockCreateBatch  sync.RWMutex
	lockListByUser   sync.RWMutex
	lockResolve      sync.RWMutex
	lockListPending  sync.RWMutex
	lockLockForApply sync.RWMutex
	lockMarkSynced   sync.RWMutex
	lockRecordError  sync.RWMutex
}

func (mock *changeRepoMock) CreateBatch(ctx context.Context, changes []*domain.OfflineChange) ([]*domain.OfflineChange, error) {
	if mock.CreateBatchFunc == nil {
		panic("changeRepoMock.CreateBatchFunc: method is nil but changeRepo.CreateBatch was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Changes []*domain.OfflineChange
	}{Ctx: ctx, Changes: changes}
	mock.lockCreateBatch.Lock()
	mock.calls.CreateBatch = append(mock.calls.CreateBatch, callInfo)
	mock.lockCreateBatch.Unlock()
	return mock.CreateBatchFunc(ctx, changes)
}

func (mock *changeRepoMock) CreateBatchCalls() []struct {
	Ctx     context.Context
	Changes []*domain.OfflineChange
} {
	mock.lockCreateBatch.RLock()
	calls := mock.calls.CreateBatch
	mock.lockCreateBatch.RUnlock()
	return calls
}

func (mock *changeRepoMock) ListByUser(ctx context.Context, userID uuid.UUID, pendingOnly bool, limit int, offset int) ([]*domain.OfflineChange, error) {
	if mock.ListByUserFunc == nil {
		panic("changeRepoMock.ListByUserFunc: method is nil but changeRepo.ListByUser was just called")
	}
	callInfo := struct {
		Ctx         context.Context
		UserID      uuid.UUID
		PendingOnly bool
		Limit       int
		Offset      int
	}{Ctx: ctx, UserID: userID, PendingOnly: pendingOnly, Limit: limit, Offset: offset}
	mock.lockListByUser.Lock()
	mock.calls.ListByUser = append(mock.calls.ListByUser, callInfo)
	mock.lockListByUser.Unlock()
	return mock.ListByUserFunc(ctx, userID, pendingOnly, limit, offset)
}

func (mock *changeRepoMock) ListByUserCalls() []struct {
	Ctx         context.Context
	UserID      uuid.UUID
	PendingOnly bool
	Limit       int
	Offset      int
} {
	mock.lockListByUser.RLock()
	calls := mock.calls.ListByUser
	mock.lockListByUser.RUnlock()
	return calls
}

func (mock *changeRepoMock) Resolve(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.OfflineChange, error) {
	if mock.ResolveFunc == nil {
		panic("changeRepoMock.ResolveFunc: method is nil but changeRepo.Resolve was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		ID     uuid.UUID
	}{Ctx: ctx, UserID: userID, ID: id}
	mock.lockResolve.Lock()
	mock.calls.Resolve = append(mock.calls.Resolve, callInfo)
	mock.lockResolve.Unlock()
	return mock.ResolveFunc(ctx, userID, id)
}

func (mock *changeRepoMock) ResolveCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
	ID     uuid.UUID
} {
	mock.lockResolve.RLock()
	calls := mock.calls.Resolve
	mock.lockResolve.RUnlock()
	return calls
}

func (mock *changeRepoMock) ListPending(ctx context.Context, userID uuid.UUID, after *domain.ChangeCursor, limit int) ([]*domain.OfflineChange, error) {
	if mock.ListPendingFunc == nil {
		panic("changeRepoMock.ListPendingFunc: method is nil but changeRepo.ListPending was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
		After  *domain.ChangeCursor
		Limit  int
	}{Ctx: ctx, UserID: userID, After: after, Limit: limit}
	mock.lockListPending.Lock()
	mock.calls.ListPending = append(mock.calls.ListPending, callInfo)
	mock.lockListPending.Unlock()
	return mock.ListPendingFunc(ctx, userID, after, limit)
}

func (mock *changeRepoMock) ListPendingCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
	After  *domain.ChangeCursor
	Limit  int
} {
	mock.lockListPending.RLock()
	calls := mock.calls.ListPending
	mock.lockListPending.RUnlock()
	return calls
}

func (mock *changeRepoMock) LockForApply(ctx context.Context, id uuid.UUID) (*domain.OfflineChange, error) {
	if mock.LockForApplyFunc == nil {
		panic("changeRepoMock.LockForApplyFunc: method is nil but changeRepo.LockForApply was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockLockForApply.Lock()
	mock.calls.LockForApply = append(mock.calls.LockForApply, callInfo)
	mock.lockLockForApply.Unlock()
	return mock.LockForApplyFunc(ctx, id)
}

func (mock *changeRepoMock) LockForApplyCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockLockForApply.RLock()
	calls := mock.calls.LockForApply
	mock.lockLockForApply.RUnlock()
	return calls
}

func (mock *changeRepoMock) MarkSynced(ctx context.Context, id uuid.UUID, entityID int64) error {
	if mock.MarkSyncedFunc == nil {
		panic("changeRepoMock.MarkSyncedFunc: method is nil but changeRepo.MarkSynced was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		ID       uuid.UUID
		EntityID int64
	}{Ctx: ctx, ID: id, EntityID: entityID}
	mock.lockMarkSynced.Lock()
	mock.calls.MarkSynced = append(mock.calls.MarkSynced, callInfo)
	mock.lockMarkSynced.Unlock()
	return mock.MarkSyncedFunc(ctx, id, entityID)
}

func (mock *changeRepoMock) MarkSyncedCalls() []struct {
	Ctx      context.Context
	ID       uuid.UUID
	EntityID int64
} {
	mock.lockMarkSynced.RLock()
	calls := mock.calls.MarkSynced
	mock.lockMarkSynced.RUnlock()
	return calls
}

func (mock *changeRepoMock) RecordError(ctx context.Context, id uuid.UUID, message string) error {
	if mock.RecordErrorFunc == nil {
		panic("changeRepoMock.RecordErrorFunc: method is nil but changeRepo.RecordError was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		ID      uuid.UUID
		Message string
	}{Ctx: ctx, ID: id, Message: message}
	mock.lockRecordError.Lock()
	mock.calls.RecordError = append(mock.calls.RecordError, callInfo)
	mock.lockRecordError.Unlock()
	return mock.RecordErrorFunc(ctx, id, message)
}

func (mock *changeRepoMock) RecordErrorCalls() []struct {
	Ctx     context.Context
	ID      uuid.UUID
	Message string
} {
	mock.lockRecordError.RLock()
	calls := mock.calls.RecordError
	mock.lockRecordError.RUnlock()
	return calls
}
