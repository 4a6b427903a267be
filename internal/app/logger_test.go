package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONCarriesServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "debug", AppEnv: "staging"})

	logger.Debug("metrics refreshed", "business_id", "b-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "metrics refreshed", entry["msg"])
	require.Equal(t, serviceName, entry["service"])
	require.Equal(t, "staging", entry["env"])
	require.Equal(t, "b-1", entry["business_id"])
}

func TestNewLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogLevel: "warn"})

	logger.Info("skipped")
	require.Zero(t, buf.Len())

	logger.Warn("kept")
	require.Contains(t, buf.String(), "msg=kept")
}

func TestNewLoggerInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogLevel: "chatty"})

	logger.Debug("hidden")
	logger.Info("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}
