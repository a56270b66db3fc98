package syncqueue

import (
	"github.com/heartmarshall/learnsync/internal/domain"
	"sync"
)

var _ typeLister = &typeListerMock{}

type typeListerMock struct {
	TypesFunc func() []domain.EntityType

	calls struct {
		Types []struct{}
	}
	lockTypes sync.RWMutex
}

func (mock *typeListerMock) Types() []domain.EntityType {
	if mock.TypesFunc == nil {
		panic("typeListerMock.TypesFunc: method is nil but typeLister.Types was just called")
	}
	mock.lockTypes.Lock()
	mock.calls.Types = append(mock.calls.Types, struct{}{})
	mock.lockTypes.Unlock()
	return mock.TypesFunc()
}

func (mock *typeListerMock) TypesCalls() []struct{} {
	mock.lockTypes.RLock()
	calls := mock.calls.Types
	mock.lockTypes.RUnlock()
	return calls
}
