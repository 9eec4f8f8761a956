package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog with a size-rotated file destination. Runs are short and
// externally scheduled, so the log file is the only place their history
// accumulates; rotation keeps it bounded.
type Logger struct {
	sl *slog.Logger
}

// RotationConfig bounds the log file on disk.
type RotationConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func NewLogger(logPath, logLevel string, rotation RotationConfig) *Logger {
	level := parseLevel(logLevel)

	var w io.Writer = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   true,
	}
	// Mirror to stderr when debugging so a manual run is readable live.
	if level == slog.LevelDebug {
		w = io.MultiWriter(w, os.Stderr)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{sl: slog.New(handler)}
}

// NewTestLogger discards all output; for use in tests.
func NewTestLogger() *Logger {
	return &Logger{sl: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.sl.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.sl.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.sl.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.sl.Error(msg, fields...)
}
