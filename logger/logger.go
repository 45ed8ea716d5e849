// Package logger holds the process-wide zap logger. Every package logs through
// the helpers below so output stays consistent between the server and the CLI.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger *zap.Logger
)

// Initialize builds the global logger for level ("debug", "info", "warn",
// "error"). Debug selects zap's development encoder.
func Initialize(level string) error {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var cfg zap.Config
	if zapLevel == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Set(built)
	return nil
}

// ParseLevel converts a level name into a zap level. An empty name is info.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zapLevel, nil
}

// Set replaces the global logger. Tests use it with zaptest/observer cores.
func Set(l *zap.Logger) {
	Logger = l
	if l != nil {
		zap.ReplaceGlobals(l)
	}
}

// Sync flushes any buffered log entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// WithContext returns a child logger carrying fields. A production logger is
// built on first use when Initialize was never called.
func WithContext(fields ...zap.Field) *zap.Logger {
	if Logger == nil {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		fallback, err := cfg.Build()
		if err != nil {
			return zap.NewNop()
		}
		Logger = fallback
	}
	return Logger.With(fields...)
}

// Named returns a child logger for a component, e.g. "scheduler".
func Named(component string) *zap.Logger {
	return WithContext().Named(component)
}

func Debug(msg string, fields ...zap.Field) {
	if Logger != nil {
		Logger.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if Logger != nil {
		Logger.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if Logger != nil {
		Logger.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if Logger != nil {
		Logger.Error(msg, fields...)
	}
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	return Logger
}
