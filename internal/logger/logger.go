package logger

import (
	"log/slog"
	"os"
)

// Init configures the process-wide slog default: JSON on stdout.
// Debug level is enabled outside production.
func Init(env string) *slog.Logger {
	level := slog.LevelDebug
	if env == "production" || env == "prod" {
		level = slog.LevelInfo
	}
	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}
