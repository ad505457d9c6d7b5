package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  = zap.NewNop()
	once sync.Once
)

// RequestIDKey is the Fiber locals key populated by the requestid middleware.
const RequestIDKey = "requestid"

// Init initializes the logger. mode is the APP_MODE ("dev" or "prod").
func Init(mode string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		if mode == "dev" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		l, err := config.Build(zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
		log = l
	})
}

// SetLogger replaces the underlying logger (used by tests)
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

// GetLogger returns the underlying zap logger
func GetLogger() *zap.Logger {
	return log
}

// WithContext adds the request id carried by ctx, if any
func WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		return log.With(zap.String("request_id", reqID))
	}
	return log
}

// Info logs a message at InfoLevel
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

// Sync flushes buffered entries
func Sync() {
	_ = log.Sync()
}
