package core

import (
	"context"

	"go.uber.org/zap"
)

// Context keys for analysis options
type contextKey string

const (
	loggerKey     contextKey = "logger"
	analysisIDKey contextKey = "analysisID"
)

// ContextWithLogger returns a context carrying the logger used by the Execute functions.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// loggerFromContext returns the context logger or a no-op logger
func loggerFromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

// withAnalysisID sets the tracked analysis run in the context
func withAnalysisID(ctx context.Context, analysisID int64) context.Context {
	return context.WithValue(ctx, analysisIDKey, analysisID)
}

// getAnalysisID returns the tracked analysis run from the context
func getAnalysisID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(analysisIDKey).(int64)
	return id, ok && id > 0
}
