package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes mws so that the first one runs outermost. Nil entries are
// skipped, so optional middleware can be listed unconditionally.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] != nil {
				h = mws[i](h)
			}
		}
		return h
	}
}

// Then wraps a handler function with m. A nil m returns the function as is.
func (m Middleware) Then(fn http.HandlerFunc) http.Handler {
	if m == nil {
		return fn
	}
	return m(fn)
}
