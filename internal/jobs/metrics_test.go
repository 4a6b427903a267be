package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

const refreshJob = "metrics:refresh"

func TestTrackerRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	for i := 0; i < 9; i++ {
		require.NoError(t, metrics.Track(refreshJob).End(nil))
	}
	boom := errors.New("timeout")
	require.ErrorIs(t, metrics.Track(refreshJob).End(boom), boom)

	families, err := reg.Gather()
	require.NoError(t, err)

	require.Equal(t, 9.0, counterValue(t, families, "amazpen_jobs_total", map[string]string{"job": refreshJob, "status": "success"}))
	require.Equal(t, 1.0, counterValue(t, families, "amazpen_jobs_total", map[string]string{"job": refreshJob, "status": "failure"}))
	require.Equal(t, 1.0, counterValue(t, families, "amazpen_jobs_failures_total", map[string]string{"job": refreshJob}))

	hist := histogram(t, families, "amazpen_job_duration_seconds", map[string]string{"job": refreshJob})
	require.EqualValues(t, 10, hist.GetSampleCount())
	require.Less(t, hist.GetSampleSum()/float64(hist.GetSampleCount()), 2.0)
}

func TestNilMetricsPassErrorsThrough(t *testing.T) {
	var metrics *Metrics
	boom := errors.New("boom")

	require.ErrorIs(t, metrics.Track(refreshJob).End(boom), boom)
	require.NoError(t, metrics.Track(refreshJob).End(nil))
}

func counterValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	metric := find(t, families, name, labels)
	return metric.GetCounter().GetValue()
}

func histogram(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) *dto.Histogram {
	t.Helper()
	hist := find(t, families, name, labels).GetHistogram()
	require.NotNil(t, hist, "histogram %s missing samples", name)
	return hist
}

func find(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return nil
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range metric.GetLabel() {
		val, ok := labels[lp.GetName()]
		if !ok {
			continue
		}
		if lp.GetValue() != val {
			return false
		}
		matched++
	}
	return matched == len(labels)
}
