package syncqueue

import (
	"sync"
)

var _ invalidator = &invalidatorMock{}

type invalidatorMock struct {
	DeleteFunc func(key string)

	calls struct {
		Delete []struct {
			Key string
		}
	}
	lockDelete sync.RWMutex
}

func (mock *invalidatorMock) Delete(key string) {
	if mock.DeleteFunc == nil {
		panic("invalidatorMock.DeleteFunc: method is nil but invalidator.Delete was just called")
	}
	callInfo := struct{ Key string }{Key: key}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, callInfo)
	mock.lockDelete.Unlock()
	mock.DeleteFunc(key)
}

func (mock *invalidatorMock) DeleteCalls() []struct{ Key string } {
	mock.lockDelete.RLock()
	calls := mock.calls.Delete
	mock.lockDelete.RUnlock()
	return calls
}
