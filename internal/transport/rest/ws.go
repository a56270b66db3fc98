package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/realtime"
	"github.com/heartmarshall/learnsync/pkg/ctxutil"
)

type socketHub interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

// WSHandler upgrades authenticated requests to notification sockets.
type WSHandler struct {
	hub socketHub
	log *slog.Logger
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub socketHub, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: logger.With("handler", "ws")}
}

// Connect handles GET /ws. The hub writes its own response on failure.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.hub.Serve(w, r, userID); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, realtime.ErrTooManyConnections) {
			level = slog.LevelError
		}
		h.log.Log(r.Context(), level, "websocket connect",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}
