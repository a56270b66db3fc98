package worker

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/learnsync/internal/domain"
	"sync"
	"time"
)

var _ taskRepo = &taskRepoMock{}

type taskRepoMock struct {
	ClaimFunc    func(ctx context.Context, lease time.Duration) (*domain.Task, error)
	CompleteFunc func(ctx context.Context, id uuid.UUID) error
	RetryFunc    func(ctx context.Context, id uuid.UUID, runAfter time.Time, lastErr string) error
	KillFunc     func(ctx context.Context, id uuid.UUID, lastErr string) error

	calls struct {
		Claim []struct {
			Ctx   context.Context
			Lease time.Duration
		}
		Complete []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Retry []struct {
			Ctx      context.Context
			ID       uuid.UUID
			RunAfter time.Time
			LastErr  string
		}
		Kill []struct {
			Ctx     context.Context
			ID      uuid.UUID
			LastErr string
		}
	}
	lockClaim    sync.RWMutex
	lockComplete sync.RWMutex
	lockRetry    sync.RWMutex
	lockKill     sync.RWMutex
}

func (mock *taskRepoMock) Claim(ctx context.Context, lease time.Duration) (*domain.Task, error) {
	if mock.ClaimFunc == nil {
		panic("taskRepoMock.ClaimFunc: method is nil but taskRepo.Claim was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Lease time.Duration
	}{Ctx: ctx, Lease: lease}
	mock.lockClaim.Lock()
	mock.calls.Claim = append(mock.calls.Claim, callInfo)
	mock.lockClaim.Unlock()
	return mock.ClaimFunc(ctx, lease)
}

func (mock *taskRepoMock) ClaimCalls() []struct {
	Ctx   context.Context
	Lease time.Duration
} {
	mock.lockClaim.RLock()
	calls := mock.calls.Claim
	mock.lockClaim.RUnlock()
	return calls
}

func (mock *taskRepoMock) Complete(ctx context.Context, id uuid.UUID) error {
	if mock.CompleteFunc == nil {
		panic("taskRepoMock.CompleteFunc: method is nil but taskRepo.Complete was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockComplete.Lock()
	mock.calls.Complete = append(mock.calls.Complete, callInfo)
	mock.lockComplete.Unlock()
	return mock.CompleteFunc(ctx, id)
}

func (mock *taskRepoMock) CompleteCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockComplete.RLock()
	calls := mock.calls.Complete
	mock.lockComplete.RUnlock()
	return calls
}

func (mock *taskRepoMock) Retry(ctx context.Context, id uuid.UUID, runAfter time.Time, lastErr string) error {
	if mock.RetryFunc == nil {
		panic("taskRepoMock.RetryFunc: method is nil but taskRepo.Retry was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		ID       uuid.UUID
		RunAfter time.Time
		LastErr  string
	}{Ctx: ctx, ID: id, RunAfter: runAfter, LastErr: lastErr}
	mock.lockRetry.Lock()
	mock.calls.Retry = append(mock.calls.Retry, callInfo)
	mock.lockRetry.Unlock()
	return mock.RetryFunc(ctx, id, runAfter, lastErr)
}

func (mock *taskRepoMock) RetryCalls() []struct {
	Ctx      context.Context
	ID       uuid.UUID
	RunAfter time.Time
	LastErr  string
} {
	mock.lockRetry.RLock()
	calls := mock.calls.Retry
	mock.lockRetry.RUnlock()
	return calls
}

func (mock *taskRepoMock) Kill(ctx context.Context, id uuid.UUID, lastErr string) error {
	if mock.KillFunc == nil {
		panic("taskRepoMock.KillFunc: method is nil but taskRepo.Kill was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		ID      uuid.UUID
		LastErr string
	}{Ctx: ctx, ID: id, LastErr: lastErr}
	mock.lockKill.Lock()
	mock.calls.Kill = append(mock.calls.Kill, callInfo)
	mock.lockKill.Unlock()
	return mock.KillFunc(ctx, id, lastErr)
}

func (mock *taskRepoMock) KillCalls() []struct {
	Ctx     context.Context
	ID      uuid.UUID
	LastErr string
} {
	mock.lockKill.RLock()
	calls := mock.calls.Kill
	mock.lockKill.RUnlock()
	return calls
}
