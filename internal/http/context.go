package http

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerContextKey     contextKey = "logger"
	sessionIDContextKey  contextKey = "session_id"
	categoryIDContextKey contextKey = "category_id"
)

// ContextWithLogger returns a derived context carrying a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext extracts a request scoped logger from the context if available.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerContextKey).(*slog.Logger)
	return logger
}

// ContextWithSessionID injects the session identifier resolved from the request path.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

// SessionIDFromContext extracts a session identifier previously associated with the context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	return id, ok
}

// ContextWithCategoryID injects the category identifier resolved from the request path.
func ContextWithCategoryID(ctx context.Context, categoryID string) context.Context {
	return context.WithValue(ctx, categoryIDContextKey, categoryID)
}

// CategoryIDFromContext extracts a category identifier previously associated with the context.
func CategoryIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(categoryIDContextKey).(string)
	return id, ok
}
