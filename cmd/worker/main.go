package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/app"
	jobmetrics "github.com/Satu-Teladan-App/admin-dashboard/internal/jobs"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/platform/db"
	"github.com/Satu-Teladan-App/admin-dashboard/jobs"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	retentionTask, err := jobs.NewAuditRetentionTask(jobs.AuditRetentionPayload{RetentionDays: cfg.AuditRetentionDays})
	if err != nil {
		return err
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Maintenance: jobs.NewMaintenance(pool, logger, jobmetrics.NewMetrics(nil)),
		Cron: []jobs.CronRegistration{
			{Spec: "@hourly", Task: jobs.NewSessionPurgeTask()},
			{Spec: "@daily", Task: retentionTask},
		},
	})
	if err != nil {
		return err
	}

	logger.Info("worker starting", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("worker stopped")
	return nil
}
