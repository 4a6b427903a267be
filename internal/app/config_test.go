package app

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "APP_ENV", "APP_ADDR", "METRICS_CACHE_TTL", "METRICS_REFRESH_TIMEOUT", "AUTH_USER_HEADER", "LOG_LEVEL", "WORKER_METRICS_ADDR")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 10*time.Minute, cfg.MetricsCacheTTL)
	require.Equal(t, 20*time.Second, cfg.MetricsRefreshTimeout)
	require.Equal(t, "X-User-ID", cfg.UserHeader)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("METRICS_REFRESH_TIMEOUT", "45s")
	t.Setenv("WORKER_CONCURRENCY", "12")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, 45*time.Second, cfg.MetricsRefreshTimeout)
	require.Equal(t, 12, cfg.WorkerConcurrency)
}

func TestLoadConfigRejectsZeroTimeout(t *testing.T) {
	t.Setenv("METRICS_REFRESH_TIMEOUT", "0s")

	_, err := LoadConfig()
	require.Error(t, err)
}
