package syncqueue

import (
	"sync"
)

var _ waker = &wakerMock{}

type wakerMock struct {
	WakeFunc func()

	calls struct {
		Wake []struct{}
	}
	lockWake sync.RWMutex
}

func (mock *wakerMock) Wake() {
	if mock.WakeFunc == nil {
		panic("wakerMock.WakeFunc: method is nil but waker.Wake was just called")
	}
	mock.lockWake.Lock()
	mock.calls.Wake = append(mock.calls.Wake, struct{}{})
	mock.lockWake.Unlock()
	mock.WakeFunc()
}

func (mock *wakerMock) WakeCalls() []struct{} {
	mock.lockWake.RLock()
	calls := mock.calls.Wake
	mock.lockWake.RUnlock()
	return calls
}
