package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type ctxKey struct{}

func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return L()
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return ContextWithLogger(ctx, FromContext(ctx).With(
		"operation", operation,
		"op_id", shortID(),
	))
}

func WithHost(ctx context.Context, host string) context.Context {
	return ContextWithLogger(ctx, FromContext(ctx).With("host", host))
}

func WithStack(ctx context.Context, stack string) context.Context {
	return ContextWithLogger(ctx, FromContext(ctx).With("stack", stack))
}

func shortID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
