package syncqueue

import (
	"context"
	"github.com/heartmarshall/learnsync/internal/domain"
	"sync"
)

var _ versionRepo = &versionRepoMock{}

type versionRepoMock struct {
	LatestPerEntityFunc func(ctx context.Context, t domain.EntityType) ([]*domain.ContentVersion, error)

	calls struct {
		LatestPerEntity []struct {
			Ctx context.Context
			T   domain.EntityType
		}
	}
	lockLatestPerEntity sync.RWMutex
}

func (mock *versionRepoMock) LatestPerEntity(ctx context.Context, t domain.EntityType) ([]*domain.ContentVersion, error) {
	if mock.LatestPerEntityFunc == nil {
		panic("versionRepoMock.LatestPerEntityFunc: method is nil but versionRepo.LatestPerEntity was just called")
	}
	callInfo := struct {
		Ctx context.Context
		T   domain.EntityType
	}{Ctx: ctx, T: t}
	mock.lockLatestPerEntity.Lock()
	mock.calls.LatestPerEntity = append(mock.calls.LatestPerEntity, callInfo)
	mock.lockLatestPerEntity.Unlock()
	return mock.LatestPerEntityFunc(ctx, t)
}

func (mock *versionRepoMock) LatestPerEntityCalls() []struct {
	Ctx context.Context
	T   domain.EntityType
} {
	mock.lockLatestPerEntity.RLock()
	calls := mock.calls.LatestPerEntity
	mock.lockLatestPerEntity.RUnlock()
	return calls
}
