package logging

import (
	"context"
	"log/slog"
	"os"
)

// LoggingService wraps the configured logger for package-level access.
type LoggingService struct {
	Logger *slog.Logger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance. An empty logDir
// keeps logging on the console only (used by tests).
func InitLogger(logDir string, level slog.Level, retentionWeeks int, maxFileSize int64) {
	DefaultLoggingService = &LoggingService{
		Logger: SetupLogger(logDir, level, retentionWeeks, maxFileSize),
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

func logOrFallback(level slog.Level, msg string, args ...any) {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		DefaultLoggingService.Logger.Log(context.Background(), level, msg, args...)
		return
	}
	fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	fallback.Log(context.Background(), level, msg, args...)
}

// Package-level functions for direct access

func Info(msg string, args ...any)  { logOrFallback(slog.LevelInfo, msg, args...) }
func Warn(msg string, args ...any)  { logOrFallback(slog.LevelWarn, msg, args...) }
func Error(msg string, args ...any) { logOrFallback(slog.LevelError, msg, args...) }
func Debug(msg string, args ...any) { logOrFallback(slog.LevelDebug, msg, args...) }
