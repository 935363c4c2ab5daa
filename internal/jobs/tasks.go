// Package jobs runs background work over asynq: periodic refreshes of the
// showcase service's rendering assets.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeAssetRefresh = "assets:refresh"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// AssetRefreshPayload carries the trigger source for observability.
type AssetRefreshPayload struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewAssetRefreshTask builds an asset refresh task. Reason is "startup" for
// the boot-time refresh and "scheduled" for cron triggers.
func NewAssetRefreshTask(reason string) (*asynq.Task, error) {
	payload, err := json.Marshal(AssetRefreshPayload{
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeAssetRefresh, payload, asynq.Queue(QueueLow)), nil
}
