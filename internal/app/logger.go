package app

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/heartmarshall/learnsync/internal/config"
	"github.com/heartmarshall/learnsync/pkg/ctxutil"
)

// NewLogger builds the process logger writing to w and installs it as the
// slog default. Format "json" is meant for production; anything else gives
// text output with source locations. Unknown levels fall back to info.
//
// Records logged with a context carry the request id and the authenticated
// user found in it, so service code only passes ctx.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		opts.AddSource = true
		h = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(contextHandler{h})
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// contextHandler adds request-scoped identity to every record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	var has struct{ requestID, userID, device bool }
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			has.requestID = true
		case "user_id":
			has.userID = true
		case "device":
			has.device = true
		}
		return true
	})

	if id := ctxutil.RequestIDFromCtx(ctx); id != "" && !has.requestID {
		r.AddAttrs(slog.String("request_id", id))
	}
	if userID, ok := ctxutil.UserIDFromCtx(ctx); ok && !has.userID {
		r.AddAttrs(slog.String("user_id", userID.String()))
	}
	if device := ctxutil.DeviceFromCtx(ctx); device != "" && !has.device {
		r.AddAttrs(slog.String("device", device))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}
