// Package app wires configuration, storage, services, workers and the HTTP
// server into a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/learnsync/internal/config"
	"github.com/heartmarshall/learnsync/internal/transport/middleware"
	"github.com/heartmarshall/learnsync/internal/transport/rest"
)

// Run is the server entry point. It returns when ctx is cancelled and every
// component has stopped, or as soon as one of them fails.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log, os.Stderr)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Int("workers", cfg.Sync.Workers),
		slog.Bool("websocket", !cfg.WebSocket.Disabled),
	)

	c, err := NewContainer(ctx, cfg, logger, "learnsync-server")
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer c.Close()

	var limiter *middleware.RateLimiter
	if !cfg.RateLimit.Disabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval, nil)
		defer limiter.Stop()
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      c.Handler(cfg, logger, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Hub.Run(gctx) })
	g.Go(func() error { return c.Workers.Run(gctx) })
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

// Handler builds the HTTP routes over the container's services. A nil
// limiter disables rate limiting.
func (c *Container) Handler(cfg *config.Config, logger *slog.Logger, limiter *middleware.RateLimiter) http.Handler {
	deps := rest.RouterDeps{
		Sync:      rest.NewSyncHandler(c.Offline, c.Queue, cfg.Server.MaxBodyBytes, logger),
		Versions:  rest.NewVersionHandler(c.Versioning, logger),
		Health:    rest.NewHealthHandler(BuildVersion(), rest.DBCheck(c.Pool)),
		Auth:      middleware.Auth(c.JWT, false),
		WSAuth:    middleware.Auth(c.JWT, true),
		Limiter:   limiter,
		CORS:      cfg.CORS,
		RateLimit: cfg.RateLimit,
		Log:       logger,
	}
	if !cfg.WebSocket.Disabled {
		deps.WS = rest.NewWSHandler(c.Hub, logger)
	}
	return rest.NewRouter(deps)
}
