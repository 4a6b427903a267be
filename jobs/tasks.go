package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMetricsRefresh recomputes the monthly metrics row of one business.
	TaskMetricsRefresh = "metrics:refresh"
)

// MetricsRefreshPayload identifies the (business, month) key to recompute.
type MetricsRefreshPayload struct {
	BusinessID string `json:"business_id" validate:"required,uuid"`
	Year       int    `json:"year" validate:"gte=2000,lte=2100"`
	Month      int    `json:"month" validate:"gte=1,lte=12"`
}

// NewMetricsRefreshTask constructs an Asynq task. Retry policy is left to the caller.
func NewMetricsRefreshTask(payload MetricsRefreshPayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts = append([]asynq.Option{asynq.Queue(QueueDefault)}, opts...)
	return asynq.NewTask(TaskMetricsRefresh, data, opts...), nil
}
