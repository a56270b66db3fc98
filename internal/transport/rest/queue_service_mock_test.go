package rest

import (
	"context"
	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/service/syncqueue"
	"sync"
)

var _ queueService = &queueServiceMock{}

type queueServiceMock struct {
	RequestSyncFunc func(ctx context.Context) error
	StatusFunc      func(ctx context.Context, input syncqueue.StatusInput) (*syncqueue.StatusResult, error)
	PullFunc        func(ctx context.Context, limit int) ([]*domain.SyncQueueEntry, error)
	AckFunc         func(ctx context.Context, input syncqueue.AckInput) (*syncqueue.AckResult, error)

	calls struct {
		RequestSync []struct {
			Ctx context.Context
		}
		Status []struct {
			Ctx   context.Context
			Input syncqueue.StatusInput
		}
		Pull []struct {
			Ctx   context.Context
			Limit int
		}
		Ack []struct {
			Ctx   context.Context
			Input syncqueue.AckInput
		}
	}
	lockRequestSync sync.RWMutex
	lockStatus      sync.RWMutex
	lockPull        sync.RWMutex
	lockAck         sync.RWMutex
}

func (mock *queueServiceMock) RequestSync(ctx context.Context) error {
	if mock.RequestSyncFunc == nil {
		panic("queueServiceMock.RequestSyncFunc: method is nil but queueService.RequestSync was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockRequestSync.Lock()
	mock.calls.RequestSync = append(mock.calls.RequestSync, callInfo)
	mock.lockRequestSync.Unlock()
	return mock.RequestSyncFunc(ctx)
}

func (mock *queueServiceMock) RequestSyncCalls() []struct{ Ctx context.Context } {
	mock.lockRequestSync.RLock()
	calls := mock.calls.RequestSync
	mock.lockRequestSync.RUnlock()
	return calls
}

func (mock *queueServiceMock) Status(ctx context.Context, input syncqueue.StatusInput) (*syncqueue.StatusResult, error) {
	if mock.StatusFunc == nil {
		panic("queueServiceMock.StatusFunc: method is nil but queueService.Status was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input syncqueue.StatusInput
	}{Ctx: ctx, Input: input}
	mock.lockStatus.Lock()
	mock.calls.Status = append(mock.calls.Status, callInfo)
	mock.lockStatus.Unlock()
	return mock.StatusFunc(ctx, input)
}

func (mock *queueServiceMock) StatusCalls() []struct {
	Ctx   context.Context
	Input syncqueue.StatusInput
} {
	mock.lockStatus.RLock()
	calls := mock.calls.Status
	mock.lockStatus.RUnlock()
	return calls
}

func (mock *queueServiceMock) Pull(ctx context.Context, limit int) ([]*domain.SyncQueueEntry, error) {
	if mock.PullFunc == nil {
		panic("queueServiceMock.PullFunc: method is nil but queueService.Pull was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Limit int
	}{Ctx: ctx, Limit: limit}
	mock.lockPull.Lock()
	mock.calls.Pull = append(mock.calls.Pull, callInfo)
	mock.lockPull.Unlock()
	return mock.PullFunc(ctx, limit)
}

func (mock *queueServiceMock) PullCalls() []struct {
	Ctx   context.Context
	Limit int
} {
	mock.lockPull.RLock()
	calls := mock.calls.Pull
	mock.lockPull.RUnlock()
	return calls
}

func (mock *queueServiceMock) Ack(ctx context.Context, input syncqueue.AckInput) (*syncqueue.AckResult, error) {
	if mock.AckFunc == nil {
		panic("queueServiceMock.AckFunc: method is nil but queueService.Ack was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input syncqueue.AckInput
	}{Ctx: ctx, Input: input}
	mock.lockAck.Lock()
	mock.calls.Ack = append(mock.calls.Ack, callInfo)
	mock.lockAck.Unlock()
	return mock.AckFunc(ctx, input)
}

func (mock *queueServiceMock) AckCalls() []struct {
	Ctx   context.Context
	Input syncqueue.AckInput
} {
	mock.lockAck.RLock()
	calls := mock.calls.Ack
	mock.lockAck.RUnlock()
	return calls
}
