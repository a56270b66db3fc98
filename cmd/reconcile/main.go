// Command reconcile applies pending offline changes and rebuilds sync
// queues synchronously, without the worker pool. With -user it handles one
// user; otherwise every user with pending changes.
//
// Exit codes: 0 = success, 1 = error, 2 = some users failed.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/app"
	"github.com/heartmarshall/learnsync/internal/config"
)

func main() {
	userFlag := flag.String("user", "", "reconcile only this user id")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c, err := app.NewContainer(ctx, cfg, logger, "learnsync-reconcile")
	if err != nil {
		logger.Error("init", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer c.Close()

	var users []uuid.UUID
	if *userFlag != "" {
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			logger.Error("invalid -user", slog.String("error", err.Error()))
			os.Exit(1)
		}
		users = []uuid.UUID{id}
	} else {
		users, err = c.Changes.UsersWithPending(ctx)
		if err != nil {
			logger.Error("list users with pending changes", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	var failed int
	for _, userID := range users {
		log := logger.With(slog.String("user_id", userID.String()))

		processed, err := c.Processor.ProcessPending(ctx, userID)
		if err != nil {
			log.Error("process pending changes", slog.String("error", err.Error()))
			failed++
			continue
		}

		built, err := c.Queue.BuildForUser(ctx, userID)
		if err != nil {
			log.Error("build sync queue", slog.String("error", err.Error()))
			failed++
			continue
		}

		log.Info("user reconciled",
			slog.Int("applied", processed.Applied),
			slog.Int("failed", processed.Failed),
			slog.Int("skipped", processed.Skipped),
			slog.Int("queued", built.Created),
			slog.Int("requeued", built.Reset),
		)
	}

	logger.Info("reconcile completed", slog.Int("users", len(users)), slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(2)
	}
}
