package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger for structured logging
type Logger struct {
	logger *zap.Logger
}

// NewLogger builds a JSON production logger, or a colored console logger
// when development is set. level is a zap level name such as "debug".
func NewLogger(development bool, level string) (*Logger, error) {
	var config zap.Config
	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger: logger}, nil
}

// New wraps an existing zap logger.
func New(l *zap.Logger) *Logger {
	return &Logger{logger: l}
}

// NewNopLogger creates a no-op logger for testing
func NewNopLogger() *Logger {
	return &Logger{logger: zap.NewNop()}
}

// Zap exposes the underlying logger for libraries that take one directly.
func (l *Logger) Zap() *zap.Logger {
	return l.logger
}

func (l *Logger) Sync() error {
	return l.logger.Sync()
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.logger.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.logger.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.logger.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.logger.Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.logger.Fatal(msg, fields...)
}

// Named creates a child logger scoped to a component.
func (l *Logger) Named(name string) *Logger {
	return &Logger{logger: l.logger.Named(name)}
}

// WithFields creates a child logger with additional fields
func (l *Logger) WithFields(fields ...zap.Field) *Logger {
	return &Logger{logger: l.logger.With(fields...)}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With(zap.Error(err))}
}

// CronLogger adapts Logger to the Info/Error logger shape used by robfig/cron.
type CronLogger struct {
	l *Logger
}

func (l *Logger) Cron() CronLogger {
	return CronLogger{l: l.Named("cron")}
}

func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.logger.Sugar().With(zap.Error(err)).Errorw(msg, keysAndValues...)
}
