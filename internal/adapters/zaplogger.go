package adapters

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements domain.Logger on a zap sugared logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a production-configured logger. Debug messages are
// emitted only when debug is set.
func NewZapLogger(debug bool) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

// Info logs an info level message with key-value pairs
func (l *ZapLogger) Info(msg string, args ...interface{}) { l.sugar.Infow(msg, args...) }

// Error logs an error level message with key-value pairs
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, args...) }

// Debug logs a debug level message with key-value pairs
func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, args...) }

// Warn logs a warning level message with key-value pairs
func (l *ZapLogger) Warn(msg string, args ...interface{}) { l.sugar.Warnw(msg, args...) }

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() { _ = l.sugar.Sync() }
