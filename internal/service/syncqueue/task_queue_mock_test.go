package syncqueue

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/learnsync/internal/domain"
	"sync"
)

var _ taskQueue = &taskQueueMock{}

type taskQueueMock struct {
	EnqueueFunc func(ctx context.Context, kind domain.TaskKind, userID uuid.UUID) (*domain.Task, error)

	calls struct {
		Enqueue []struct {
			Ctx    context.Context
			Kind   domain.TaskKind
			UserID uuid.UUID
		}
	}
	lockEnqueue sync.RWMutex
}

func (mock *taskQueueMock) Enqueue(ctx context.Context, kind domain.TaskKind, userID uuid.UUID) (*domain.Task, error) {
	if mock.EnqueueFunc == nil {
		panic("taskQueueMock.EnqueueFunc: method is nil but taskQueue.Enqueue was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Kind   domain.TaskKind
		UserID uuid.UUID
	}{Ctx: ctx, Kind: kind, UserID: userID}
	mock.lockEnqueue.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, callInfo)
	mock.lockEnqueue.Unlock()
	return mock.EnqueueFunc(ctx, kind, userID)
}

func (mock *taskQueueMock) EnqueueCalls() []struct {
	Ctx    context.Context
	Kind   domain.TaskKind
	UserID uuid.UUID
} {
	mock.lockEnqueue.RLock()
	calls := mock.calls.Enqueue
	mock.lockEnqueue.RUnlock()
	return calls
}
