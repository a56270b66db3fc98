package rest

import (
	"github.com/google/uuid"
	"net/http"
	"sync"
)

var _ socketHub = &socketHubMock{}

type socketHubMock struct {
	ServeFunc func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error

	calls struct {
		Serve []struct {
			W      http.ResponseWriter
			R      *http.Request
			UserID uuid.UUID
		}
	}
	lockServe sync.RWMutex
}

func (mock *socketHubMock) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	if mock.ServeFunc == nil {
		panic("socketHubMock.ServeFunc: method is nil but socketHub.Serve was just called")
	}
	callInfo := struct {
		W      http.ResponseWriter
		R      *http.Request
		UserID uuid.UUID
	}{W: w, R: r, UserID: userID}
	mock.lockServe.Lock()
	mock.calls.Serve = append(mock.calls.Serve, callInfo)
	mock.lockServe.Unlock()
	return mock.ServeFunc(w, r, userID)
}

func (mock *socketHubMock) ServeCalls() []struct {
	W      http.ResponseWriter
	R      *http.Request
	UserID uuid.UUID
} {
	mock.lockServe.RLock()
	calls := mock.calls.Serve
	mock.lockServe.RUnlock()
	return calls
}
