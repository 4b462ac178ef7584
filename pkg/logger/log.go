package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func (l *logger) Context(ctx context.Context) context.Context {
	if _, ok := ctx.Value(&logCtx).(*logContext); ok {
		return ctx
	}

	return context.WithValue(ctx, &logCtx, newLogContext(l.idGenerator.NewLogID(ctx)))
}

func (l *logger) ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	logID := l.idGenerator.NewLogID(ctx)
	if lgCtx, ok := ctx.Value(&logCtx).(*logContext); ok {
		logID = lgCtx.LogID
	}

	return context.WithValue(ctx, &logCtx, newLogContextWithOptions(logID, withRequestID(requestID)))
}

func (l *logger) ContextWithCapture(ctx context.Context, operationName string) (context.Context, Capture) {
	lgCtx, ok := ctx.Value(&logCtx).(*logContext)
	if !ok {
		lgCtx = newLogContextWithOptions(l.idGenerator.NewLogID(ctx))
	}

	lgCtx = newLogContextWithOptions(lgCtx.LogID, withRequestID(lgCtx.RequestID), withOperationName(operationName))
	ctx = context.WithValue(ctx, &logCtx, lgCtx)

	return ctx, l.captureContext(lgCtx)
}

func (l *logger) captureContext(lgCtx *logContext) Capture {
	return func(attrs ...zap.Field) {
		attrs = append(attrs, lgCtx.ToFields()...)
		attrs = append(attrs, zap.String(durationKey, time.Since(time.Time(lgCtx.StartTime)).String()))
		l.lg.Info(lgCtx.OperationName, attrs...)
	}
}

func (l *logger) Debug(ctx context.Context, log string, fields ...zapcore.Field) {
	l.lg.Debug(log, withAttrs(ctx, fields)...)
}

func (l *logger) Info(ctx context.Context, log string, fields ...zapcore.Field) {
	l.lg.Info(log, withAttrs(ctx, fields)...)
}

func (l *logger) Warn(ctx context.Context, log string, fields ...zapcore.Field) {
	l.lg.Warn(log, withAttrs(ctx, fields)...)
}

func (l *logger) Error(ctx context.Context, log string, fields ...zapcore.Field) {
	l.lg.Error(log, withAttrs(ctx, fields)...)
}

func withAttrs(ctx context.Context, fields []zapcore.Field) []zapcore.Field {
	if ctx == nil {
		return fields
	}
	return append(fields, getAttrs(ctx)...)
}
