// Package jobs hosts the Asynq background workers: the nightly expiry scan
// and auth-history retention cleanup.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExpiryScan triggers the nightly stock expiry scan.
	TaskExpiryScan = "stock:expiry_scan"
	// TaskHistoryCleanup prunes old login and register history rows.
	TaskHistoryCleanup = "auth:history_cleanup"
)

// ExpiryScanPayload carries scheduling metadata.
type ExpiryScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewExpiryScanTask constructs an Asynq task for the expiry scan.
func NewExpiryScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ExpiryScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiryScan, body, asynq.Queue(QueueDefault)), nil
}

// HistoryCleanupPayload sets the retention window in days.
type HistoryCleanupPayload struct {
	RetainDays int `json:"retain_days"`
}

// NewHistoryCleanupTask constructs an Asynq task for history cleanup.
func NewHistoryCleanupTask(retainDays int) (*asynq.Task, error) {
	body, err := json.Marshal(HistoryCleanupPayload{RetainDays: retainDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHistoryCleanup, body, asynq.Queue(QueueDefault)), nil
}
