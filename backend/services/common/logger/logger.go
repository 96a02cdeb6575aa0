package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger set by Initialize.
var Log = zap.NewNop()

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Initialize sets Log for the given environment without a CloudWatch sink.
func Initialize(env string) *zap.Logger {
	return InitializeWithWriter(env, nil)
}

// InitializeWithWriter sets Log for env. When cloudWatchWriter is non-nil the
// console core is tee'd with a JSON core writing to it.
func InitializeWithWriter(env string, cloudWatchWriter io.Writer) *zap.Logger {
	cfg := configFor(env)

	if cloudWatchWriter == nil {
		l, err := cfg.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		Log = l
		return Log
	}

	level := zap.NewAtomicLevelAt(cfg.Level.Level())
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg.EncoderConfig), zapcore.AddSync(os.Stdout), level)
	cloudwatch := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(cloudWatchWriter), level)

	Log = zap.New(zapcore.NewTee(console, cloudwatch), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return Log
}

func configFor(env string) zap.Config {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// FromContext returns Log annotated with the request id carried by ctx, if any.
func FromContext(ctx context.Context) *zap.Logger {
	if id := requestID(ctx); id != "" {
		return Log.With(zap.String(RequestIDKey, id))
	}
	return Log
}

type ctxKey struct{}

// WithRequestID stores id on ctx for FromContext.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func requestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if gc, ok := ctx.(*gin.Context); ok {
		return gc.GetString(RequestIDKey)
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
