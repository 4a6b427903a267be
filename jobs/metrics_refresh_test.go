package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/Amazpen/amazpen-app-sub007/internal/jobs"
	"github.com/Amazpen/amazpen-app-sub007/internal/metrics"
)

type stubRefresher struct {
	calls      int
	businessID uuid.UUID
	year       int
	month      int
	err        error
}

func (s *stubRefresher) RefreshMetrics(ctx context.Context, businessID uuid.UUID, year, month int) (metrics.MetricsRow, error) {
	s.calls++
	s.businessID, s.year, s.month = businessID, year, month
	if s.err != nil {
		return metrics.MetricsRow{}, s.err
	}
	return metrics.MetricsRow{BusinessID: businessID, Year: year, Month: month}, nil
}

func newTestJob(svc MetricsRefresher) *MetricsRefreshJob {
	return NewMetricsRefreshJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestNewMetricsRefreshTaskPayload(t *testing.T) {
	businessID := uuid.New()
	task, err := NewMetricsRefreshTask(MetricsRefreshPayload{BusinessID: businessID.String(), Year: 2024, Month: 5})
	require.NoError(t, err)
	require.Equal(t, TaskMetricsRefresh, task.Type())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Equal(t, businessID.String(), decoded["business_id"])
	require.EqualValues(t, 2024, decoded["year"])
	require.EqualValues(t, 5, decoded["month"])
}

func TestMetricsRefreshJobHandlesTask(t *testing.T) {
	svc := &stubRefresher{}
	businessID := uuid.New()
	task, err := NewMetricsRefreshTask(MetricsRefreshPayload{BusinessID: businessID.String(), Year: 2024, Month: 2})
	require.NoError(t, err)

	require.NoError(t, newTestJob(svc).Handle(context.Background(), task))
	require.Equal(t, 1, svc.calls)
	require.Equal(t, businessID, svc.businessID)
	require.Equal(t, 2024, svc.year)
	require.Equal(t, 2, svc.month)
}

func TestMetricsRefreshJobSkipsRetryOnBadPayload(t *testing.T) {
	svc := &stubRefresher{}
	job := newTestJob(svc)

	cases := []*asynq.Task{
		asynq.NewTask(TaskMetricsRefresh, []byte("{")),
		asynq.NewTask(TaskMetricsRefresh, []byte(`{"business_id":"nope","year":2024,"month":1}`)),
		asynq.NewTask(TaskMetricsRefresh, []byte(fmt.Sprintf(`{"business_id":%q,"year":2024,"month":13}`, uuid.NewString()))),
	}
	for _, task := range cases {
		err := job.Handle(context.Background(), task)
		require.ErrorIs(t, err, asynq.SkipRetry, string(task.Payload()))
	}
	require.Zero(t, svc.calls)
}

func TestMetricsRefreshJobSkipsRetryWithoutConfiguration(t *testing.T) {
	svc := &stubRefresher{err: metrics.ErrConfigurationMissing}
	task, err := NewMetricsRefreshTask(MetricsRefreshPayload{BusinessID: uuid.NewString(), Year: 2024, Month: 2})
	require.NoError(t, err)

	err = newTestJob(svc).Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.ErrorIs(t, err, metrics.ErrConfigurationMissing)
}

func TestMetricsRefreshJobSkipsRetryForNilBusiness(t *testing.T) {
	svc := &stubRefresher{err: metrics.ErrInvalidBusiness}
	task, err := NewMetricsRefreshTask(MetricsRefreshPayload{BusinessID: uuid.Nil.String(), Year: 2024, Month: 2})
	require.NoError(t, err)

	err = newTestJob(svc).Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.ErrorIs(t, err, metrics.ErrInvalidBusiness)
}

func TestMetricsRefreshJobRetriesTransientFailure(t *testing.T) {
	transient := errors.New("connection refused")
	svc := &stubRefresher{err: transient}
	task, err := NewMetricsRefreshTask(MetricsRefreshPayload{BusinessID: uuid.NewString(), Year: 2024, Month: 2})
	require.NoError(t, err)

	err = newTestJob(svc).Handle(context.Background(), task)
	require.ErrorIs(t, err, transient)
	require.False(t, errors.Is(err, asynq.SkipRetry))
}
