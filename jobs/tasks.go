package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue used by all dashboard maintenance jobs.
	QueueDefault = "default"

	// TaskSessionPurge removes expired login session records.
	TaskSessionPurge = "sessions:purge"
	// TaskAuditRetention trims audit log rows past the retention window.
	TaskAuditRetention = "audit:retention"
)

// AuditRetentionPayload parameterizes the retention sweep.
type AuditRetentionPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewSessionPurgeTask builds the session purge task.
func NewSessionPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionPurge, nil)
}

// NewAuditRetentionTask builds the audit retention task.
func NewAuditRetentionTask(payload AuditRetentionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRetention, data), nil
}
