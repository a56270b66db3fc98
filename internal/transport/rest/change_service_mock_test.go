package rest

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/service/offline"
	"sync"
)

var _ changeService = &changeServiceMock{}

type changeServiceMock struct {
	SubmitFunc      func(ctx context.Context, input offline.SubmitInput) (*offline.SubmitResult, error)
	ListChangesFunc func(ctx context.Context, input offline.ListChangesInput) ([]*domain.OfflineChange, error)
	ResolveFunc     func(ctx context.Context, changeID uuid.UUID) (*domain.OfflineChange, error)

	calls struct {
		Submit []struct {
			Ctx   context.Context
			Input offline.SubmitInput
		}
		ListChanges []struct {
			Ctx   context.Context
			Input offline.ListChangesInput
		}
		Resolve []struct {
			Ctx      context.Context
			ChangeID uuid.UUID
		}
	}
	lockSubmit      sync.RWMutex
	lockListChanges sync.RWMutex
	lockResolve     sync.RWMutex
}

func (mock *changeServiceMock) Submit(ctx context.Context, input offline.SubmitInput) (*offline.SubmitResult, error) {
	if mock.SubmitFunc == nil {
		panic("changeServiceMock.SubmitFunc: method is nil but changeService.Submit was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input offline.SubmitInput
	}{Ctx: ctx, Input: input}
	mock.lockSubmit.Lock()
	mock.calls.Submit = append(mock.calls.Submit, callInfo)
	mock.lockSubmit.Unlock()
	return mock.SubmitFunc(ctx, input)
}

func (mock *changeServiceMock) SubmitCalls() []struct {
	Ctx   context.Context
	Input offline.SubmitInput
} {
	mock.lockSubmit.RLock()
	calls := mock.calls.Submit
	mock.lockSubmit.RUnlock()
	return calls
}

func (mock *changeServiceMock) ListChanges(ctx context.Context, input offline.ListChangesInput) ([]*domain.OfflineChange, error) {
	if mock.ListChangesFunc == nil {
		panic("changeServiceMock.ListChangesFunc: method is nil but changeService.ListChanges was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input offline.ListChangesInput
	}{Ctx: ctx, Input: input}
	mock.lockListChanges.Lock()
	mock.calls.ListChanges = append(mock.calls.ListChanges, callInfo)
	mock.lockListChanges.Unlock()
	return mock.ListChangesFunc(ctx, input)
}

func (mock *changeServiceMock) ListChangesCalls() []struct {
	Ctx   context.Context
	Input offline.ListChangesInput
} {
	mock.lockListChanges.RLock()
	calls := mock.calls.ListChanges
	mock.lockListChanges.RUnlock()
	return calls
}

func (mock *changeServiceMock) Resolve(ctx context.Context, changeID uuid.UUID) (*domain.OfflineChange, error) {
	if mock.ResolveFunc == nil {
		panic("changeServiceMock.ResolveFunc: method is nil but changeService.Resolve was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		ChangeID uuid.UUID
	}{Ctx: ctx, ChangeID: changeID}
	mock.lockResolve.Lock()
	mock.calls.Resolve = append(mock.calls.Resolve, callInfo)
	mock.lockResolve.Unlock()
	return mock.ResolveFunc(ctx, changeID)
}

func (mock *changeServiceMock) ResolveCalls() []struct {
	Ctx      context.Context
	ChangeID uuid.UUID
} {
	mock.lockResolve.RLock()
	calls := mock.calls.Resolve
	mock.lockResolve.RUnlock()
	return calls
}
