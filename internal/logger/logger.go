// Package logger provides the structured logging interface used across the
// rigops service.
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface handed to every component.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	// With returns a new logger with the given fields attached.
	With(fields ...Field) Logger
	// Sync flushes any buffered log entries.
	Sync() error
}

// Field is a type alias for zap.Field.
type Field = zap.Field

// Config holds logger settings.
type Config struct {
	Level       string `env:"LOG_LEVEL"  yaml:"level"`
	Format      string `env:"LOG_FORMAT" yaml:"format"`
	Development bool   `yaml:"development"`
}

type zapLogger struct {
	logger *zap.Logger
}

// New builds a zap logger from the given configuration. Format selects the
// encoding: "console" for humans, anything else means JSON.
func New(cfg Config) (Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	// Sampling hides logs in development; disable it there.
	if cfg.Development {
		zapCfg.Sampling = nil
	}

	z, err := zapCfg.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return &zapLogger{logger: z}, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.logger.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.logger.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, fields...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.logger.Fatal(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// Field constructors re-exported so callers never import zap directly.

// String creates a string field.
func String(key, val string) Field { return zap.String(key, val) }

// Int creates an int field.
func Int(key string, val int) Field { return zap.Int(key, val) }

// Int64 creates an int64 field.
func Int64(key string, val int64) Field { return zap.Int64(key, val) }

// Float64 creates a float64 field.
func Float64(key string, val float64) Field { return zap.Float64(key, val) }

// Bool creates a bool field.
func Bool(key string, val bool) Field { return zap.Bool(key, val) }

// Duration creates a duration field.
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

// Time creates a time field.
func Time(key string, val time.Time) Field { return zap.Time(key, val) }

// Error creates an error field with the key "error".
func Error(err error) Field { return zap.Error(err) }

// Strings creates a string slice field.
func Strings(key string, val []string) Field { return zap.Strings(key, val) }

// Any creates a field holding an arbitrary value.
func Any(key string, val any) Field { return zap.Any(key, val) }
