package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/heartmarshall/learnsync/internal/config"
	"github.com/heartmarshall/learnsync/internal/transport/middleware"
)

// RouterDeps collects what NewRouter mounts. WS may be nil when websockets
// are disabled; Limiter may be nil when rate limiting is off.
type RouterDeps struct {
	Sync     *SyncHandler
	Versions *VersionHandler
	WS       *WSHandler
	Health   *HealthHandler

	Auth    middleware.Middleware
	WSAuth  middleware.Middleware
	Limiter *middleware.RateLimiter

	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
	Log       *slog.Logger
}

// NewRouter wires every HTTP route. Global middleware wraps the router
// itself so that unmatched requests and CORS preflights pass through it.
func NewRouter(d RouterDeps) http.Handler {
	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r := mux.NewRouter()
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notAllowed

	r.HandleFunc("/live", d.Health.Live).Methods(http.MethodGet)
	r.HandleFunc("/ready", d.Health.Ready).Methods(http.MethodGet)
	r.HandleFunc("/health", d.Health.Health).Methods(http.MethodGet)

	submitLimit := d.Limiter.Limit("submit", d.RateLimit.SubmitPerMinute)

	// Subrouters do not inherit these; without them a wrong method under
	// /api falls through to the root 404.
	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = notFound
	api.MethodNotAllowedHandler = notAllowed
	api.Use(mux.MiddlewareFunc(middleware.Chain(d.Auth, d.Limiter.Limit("api", d.RateLimit.PerMinute))))

	api.Handle("/sync/changes", submitLimit.Then(d.Sync.SubmitChanges)).Methods(http.MethodPost)
	api.HandleFunc("/sync/changes", d.Sync.ListChanges).Methods(http.MethodGet)
	api.HandleFunc("/sync/changes/{id}/resolve", d.Sync.ResolveChange).Methods(http.MethodPost)
	api.HandleFunc("/sync/request", d.Sync.RequestSync).Methods(http.MethodPost)
	api.HandleFunc("/sync/status", d.Sync.Status).Methods(http.MethodGet)
	api.HandleFunc("/sync/pull", d.Sync.Pull).Methods(http.MethodGet)
	api.HandleFunc("/sync/ack", d.Sync.Ack).Methods(http.MethodPost)

	api.HandleFunc("/versions/latest", d.Versions.Latest).Methods(http.MethodGet)
	api.HandleFunc("/versions", d.Versions.List).Methods(http.MethodGet)
	api.HandleFunc("/versions/{id}", d.Versions.Get).Methods(http.MethodGet)
	api.HandleFunc("/content/{type}/{id}", d.Versions.Content).Methods(http.MethodGet)
	api.HandleFunc("/content/{type}/{id}/versions", d.Versions.History).Methods(http.MethodGet)

	if d.WS != nil {
		r.Handle("/ws", d.WSAuth.Then(d.WS.Connect)).Methods(http.MethodGet)
	}

	return middleware.Chain(
		middleware.Recovery(d.Log),
		middleware.RequestID,
		middleware.Logger(d.Log),
		middleware.CORS(d.CORS),
	)(r)
}
