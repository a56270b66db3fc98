// Command cleanup purges finished background tasks older than the retention
// period and reports what is left in the task queue. Run it from cron.
//
// Exit codes: 0 = success, 1 = error, 2 = dead tasks remain after the purge.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/learnsync/internal/adapter/postgres"
	"github.com/heartmarshall/learnsync/internal/adapter/postgres/task"
	"github.com/heartmarshall/learnsync/internal/app"
	"github.com/heartmarshall/learnsync/internal/config"
	"github.com/heartmarshall/learnsync/internal/domain"
)

func main() {
	retention := flag.Duration("retention", 0, "override sync.task_retention")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Usage = func() {
		flag.PrintDefaults()
		config.Usage(flag.CommandLine.Output())
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log, os.Stderr)

	keep := cfg.Sync.TaskRetention
	if *retention > 0 {
		keep = *retention
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database, "learnsync-cleanup")
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	tasks := task.New(pool)
	cutoff := time.Now().Add(-keep)

	purged, err := tasks.PurgeFinished(ctx, cutoff)
	if err != nil {
		logger.Error("purge finished tasks", slog.String("error", err.Error()), slog.Time("cutoff", cutoff))
		os.Exit(1)
	}

	counts, err := tasks.CountByStatus(ctx)
	if err != nil {
		logger.Error("count tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("task cleanup done",
		slog.Int("purged", purged),
		slog.Time("cutoff", cutoff),
		slog.Int("pending", counts[domain.TaskStatusPending]),
		slog.Int("running", counts[domain.TaskStatusRunning]),
		slog.Int("dead", counts[domain.TaskStatusDead]),
	)

	// Dead tasks inside the retention window need an operator; reconcile
	// replays the affected users.
	if counts[domain.TaskStatusDead] > 0 {
		logger.Warn("dead tasks remain", slog.Int("dead", counts[domain.TaskStatusDead]))
		pool.Close()
		os.Exit(2)
	}
}
