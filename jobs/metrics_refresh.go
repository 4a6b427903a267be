package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/Amazpen/amazpen-app-sub007/internal/jobs"
	"github.com/Amazpen/amazpen-app-sub007/internal/metrics"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// MetricsRefresher recomputes one monthly metrics row.
type MetricsRefresher interface {
	RefreshMetrics(ctx context.Context, businessID uuid.UUID, year, month int) (metrics.MetricsRow, error)
}

// MetricsRefreshJob handles TaskMetricsRefresh.
type MetricsRefreshJob struct {
	Service  MetricsRefresher
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	validate *validator.Validate
}

// NewMetricsRefreshJob constructs the job handler.
func NewMetricsRefreshJob(service MetricsRefresher, logger *slog.Logger, jobMetrics *jobmetrics.Metrics) *MetricsRefreshJob {
	return &MetricsRefreshJob{
		Service:  service,
		Logger:   logger,
		Metrics:  jobMetrics,
		validate: validator.New(),
	}
}

// Handle executes the refresh. Malformed payloads, invalid keys and keys without
// business configuration are not retried.
func (j *MetricsRefreshJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("metrics refresh: dependencies not configured")
	}
	var payload MetricsRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		j.log().Warn("decode payload", slog.Any("error", err))
		return fmt.Errorf("metrics refresh: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := j.validator().Struct(payload); err != nil {
		j.log().Warn("invalid payload", slog.Any("error", err))
		return fmt.Errorf("metrics refresh: %v: %w", err, asynq.SkipRetry)
	}
	businessID := uuid.MustParse(payload.BusinessID)

	tracker := j.metrics().Track(TaskMetricsRefresh)
	row, err := j.Service.RefreshMetrics(ctx, businessID, payload.Year, payload.Month)
	if err != nil {
		j.log().Error("refresh metrics",
			slog.String("business_id", payload.BusinessID),
			slog.Int("year", payload.Year),
			slog.Int("month", payload.Month),
			slog.Any("error", err))
		err = tracker.End(err)
		if permanent(err) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	j.log().Info("refreshed metrics",
		slog.String("business_id", payload.BusinessID),
		slog.Int("year", row.Year),
		slog.Int("month", row.Month))
	return tracker.End(nil)
}

// permanent reports errors that retrying the same key cannot fix.
func permanent(err error) bool {
	return errors.Is(err, metrics.ErrConfigurationMissing) ||
		errors.Is(err, metrics.ErrInvalidPeriod) ||
		errors.Is(err, metrics.ErrInvalidBusiness)
}

func (j *MetricsRefreshJob) validator() *validator.Validate {
	if j.validate == nil {
		j.validate = validator.New()
	}
	return j.validate
}

func (j *MetricsRefreshJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *MetricsRefreshJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMetricsRefresh))
	}
	return slog.Default().With(slog.String("job", TaskMetricsRefresh))
}
