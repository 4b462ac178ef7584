package logger

import (
	"context"
	"os"

	"currycrave/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Capture func(attrs ...zap.Field)

type Logger interface {
	Context(ctx context.Context) context.Context
	ContextWithRequestID(ctx context.Context, requestID string) context.Context
	ContextWithCapture(ctx context.Context, operationName string) (context.Context, Capture)

	Debug(ctx context.Context, log string, fields ...zapcore.Field)
	Info(ctx context.Context, log string, fields ...zapcore.Field)
	Warn(ctx context.Context, log string, fields ...zapcore.Field)
	Error(ctx context.Context, log string, fields ...zapcore.Field)
}

var Module = fx.Provide(func(cfg config.IConfig) Logger {
	return New(cfg.GetString("logger.level"))
})

// New constructs a JSON logger writing to stdout.
func New(level string) Logger {
	stdoutSyncer := zapcore.Lock(os.Stdout)

	prodEncoderConfig := zap.NewProductionEncoderConfig()
	prodEncoderConfig.FunctionKey = "func"
	prodEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(prodEncoderConfig),
		stdoutSyncer,
		getLevel(level),
	)

	// AddCallerSkip skips the wrapper frame so "caller" points at the call site
	return wrap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return wrap(zap.NewNop())
}

// FromZap wraps an existing zap logger.
func FromZap(log *zap.Logger) Logger {
	return wrap(log)
}

func wrap(log *zap.Logger) Logger {
	return &logger{
		lg:          log,
		idGenerator: defaultIDGenerator(),
	}
}

type logger struct {
	lg          *zap.Logger
	idGenerator IDGenerator
}

func getLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warning", "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}
