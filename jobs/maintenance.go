package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/Satu-Teladan-App/admin-dashboard/internal/jobs"
)

// Maintenance holds the database-backed job handlers.
type Maintenance struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewMaintenance constructs the maintenance handlers.
func NewMaintenance(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *Maintenance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintenance{pool: pool, logger: logger, metrics: metrics}
}

// HandleSessionPurge deletes login session records past their expiry. Redis
// keys expire on their own; this keeps the postgres audit trail bounded.
func (m *Maintenance) HandleSessionPurge(ctx context.Context, t *asynq.Task) error {
	tracker := m.metrics.Track(TaskSessionPurge)
	tag, err := m.pool.Exec(ctx, `DELETE FROM dashboard_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return tracker.End(fmt.Errorf("purge sessions: %w", err))
	}
	m.logger.Info("session purge complete", slog.Int64("deleted", tag.RowsAffected()))
	return tracker.End(nil)
}

// HandleAuditRetention trims audit log rows older than the retention window.
func (m *Maintenance) HandleAuditRetention(ctx context.Context, t *asynq.Task) error {
	tracker := m.metrics.Track(TaskAuditRetention)
	payload := AuditRetentionPayload{RetentionDays: 90}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(fmt.Errorf("audit retention payload: %w", err))
		}
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = 90
	}
	cutoff := time.Now().AddDate(0, 0, -payload.RetentionDays)
	tag, err := m.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return tracker.End(fmt.Errorf("audit retention: %w", err))
	}
	m.logger.Info("audit retention complete",
		slog.Int("retention_days", payload.RetentionDays),
		slog.Int64("deleted", tag.RowsAffected()))
	return tracker.End(nil)
}
