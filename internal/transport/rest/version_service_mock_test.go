package rest

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/service/versioning"
	"sync"
)

var _ versionService = &versionServiceMock{}

type versionServiceMock struct {
	LatestVersionsFunc  func(ctx context.Context) (domain.LatestVersions, error)
	ListVersionsFunc    func(ctx context.Context, limit int, offset int) (*versioning.VersionPage, error)
	GetVersionFunc      func(ctx context.Context, id uuid.UUID) (*domain.ContentVersion, error)
	LatestForEntityFunc func(ctx context.Context, ref domain.EntityRef) (*domain.ContentVersion, error)
	EntityHistoryFunc   func(ctx context.Context, ref domain.EntityRef) ([]*domain.ContentVersion, error)

	calls struct {
		LatestVersions []struct {
			Ctx context.Context
		}
		ListVersions []struct {
			Ctx    context.Context
			Limit  int
			Offset int
		}
		GetVersion []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		LatestForEntity []struct {
			Ctx context.Context
			Ref domain.EntityRef
		}
		EntityHistory []struct {
			Ctx context.Context
			Ref domain.EntityRef
		}
	}
	lockLatestVersions  sync.RWMutex
	lockListVersions    sync.RWMutex
	lockGetVersion      sync.RWMutex
	lockLatestForEntity sync.RWMutex
	lockEntityHistory   sync.RWMutex
}

func (mock *versionServiceMock) LatestVersions(ctx context.Context) (domain.LatestVersions, error) {
	if mock.LatestVersionsFunc == nil {
		panic("versionServiceMock.LatestVersionsFunc: method is nil but versionService.LatestVersions was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockLatestVersions.Lock()
	mock.calls.LatestVersions = append(mock.calls.LatestVersions, callInfo)
	mock.lockLatestVersions.Unlock()
	return mock.LatestVersionsFunc(ctx)
}

func (mock *versionServiceMock) LatestVersionsCalls() []struct{ Ctx context.Context } {
	mock.lockLatestVersions.RLock()
	calls := mock.calls.LatestVersions
	mock.lockLatestVersions.RUnlock()
	return calls
}

func (mock *versionServiceMock) ListVersions(ctx context.Context, limit int, offset int) (*versioning.VersionPage, error) {
	if mock.ListVersionsFunc == nil {
		panic("versionServiceMock.ListVersionsFunc: method is nil but versionService.ListVersions was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Limit  int
		Offset int
	}{Ctx: ctx, Limit: limit, Offset: offset}
	mock.lockListVersions.Lock()
	mock.calls.ListVersions = append(mock.calls.ListVersions, callInfo)
	mock.lockListVersions.Unlock()
	return mock.ListVersionsFunc(ctx, limit, offset)
}

func (mock *versionServiceMock) ListVersionsCalls() []struct {
	Ctx    context.Context
	Limit  int
	Offset int
} {
	mock.lockListVersions.RLock()
	calls := mock.calls.ListVersions
	mock.lockListVersions.RUnlock()
	return calls
}

func (mock *versionServiceMock) GetVersion(ctx context.Context, id uuid.UUID) (*domain.ContentVersion, error) {
	if mock.GetVersionFunc == nil {
		panic("versionServiceMock.GetVersionFunc: method is nil but versionService.GetVersion was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetVersion.Lock()
	mock.calls.GetVersion = append(mock.calls.GetVersion, callInfo)
	mock.lockGetVersion.Unlock()
	return mock.GetVersionFunc(ctx, id)
}

func (mock *versionServiceMock) GetVersionCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetVersion.RLock()
	calls := mock.calls.GetVersion
	mock.lockGetVersion.RUnlock()
	return calls
}

func (mock *versionServiceMock) LatestForEntity(ctx context.Context, ref domain.EntityRef) (*domain.ContentVersion, error) {
	if mock.LatestForEntityFunc == nil {
		panic("versionServiceMock.LatestForEntityFunc: method is nil but versionService.LatestForEntity was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ref domain.EntityRef
	}{Ctx: ctx, Ref: ref}
	mock.lockLatestForEntity.Lock()
	mock.calls.LatestForEntity = append(mock.calls.LatestForEntity, callInfo)
	mock.lockLatestForEntity.Unlock()
	return mock.LatestForEntityFunc(ctx, ref)
}

func (mock *versionServiceMock) LatestForEntityCalls() []struct {
	Ctx context.Context
	Ref domain.EntityRef
} {
	mock.lockLatestForEntity.RLock()
	calls := mock.calls.LatestForEntity
	mock.lockLatestForEntity.RUnlock()
	return calls
}

func (mock *versionServiceMock) EntityHistory(ctx context.Context, ref domain.EntityRef) ([]*domain.ContentVersion, error) {
	if mock.EntityHistoryFunc == nil {
		panic("versionServiceMock.EntityHistoryFunc: method is nil but versionService.EntityHistory was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ref domain.EntityRef
	}{Ctx: ctx, Ref: ref}
	mock.lockEntityHistory.Lock()
	mock.calls.EntityHistory = append(mock.calls.EntityHistory, callInfo)
	mock.lockEntityHistory.Unlock()
	return mock.EntityHistoryFunc(ctx, ref)
}

func (mock *versionServiceMock) EntityHistoryCalls() []struct {
	Ctx context.Context
	Ref domain.EntityRef
} {
	mock.lockEntityHistory.RLock()
	calls := mock.calls.EntityHistory
	mock.lockEntityHistory.RUnlock()
	return calls
}
