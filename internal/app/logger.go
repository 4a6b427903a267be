package app

import (
	"io"
	"log/slog"
	"os"
)

const serviceName = "amazpen-metrics"

// NewLogger returns a configured slog.Logger based on configuration.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	opts := &slog.HandlerOptions{AddSource: true, Level: &level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	env := ""
	if cfg != nil {
		if cfg.LogLevel != "" {
			if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
				level = slog.LevelInfo
			}
		}
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(w, opts)
		}
		env = cfg.AppEnv
	}
	logger := slog.New(handler).With(slog.String("service", serviceName))
	if env != "" {
		logger = logger.With(slog.String("env", env))
	}
	return logger
}
