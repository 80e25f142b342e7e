package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	logger := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), logger)
	ctx = withAnalysisID(ctx, 12345)

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := range numGoroutines {
		go func(id int) {
			defer wg.Done()
			analysisID, ok := getAnalysisID(ctx)
			assert.True(t, ok, "Goroutine %d: getAnalysisID should return true", id)
			assert.Equal(t, int64(12345), analysisID, "Goroutine %d: analysisID should be 12345", id)
			assert.Same(t, logger, loggerFromContext(ctx), "Goroutine %d: logger should round-trip", id)
		}(i)
	}
	wg.Wait()
}

func TestGetAnalysisID(t *testing.T) {
	_, ok := getAnalysisID(context.Background())
	assert.False(t, ok)

	_, ok = getAnalysisID(withAnalysisID(context.Background(), 0))
	assert.False(t, ok, "non-positive IDs are not tracked runs")

	id, ok := getAnalysisID(withAnalysisID(context.Background(), 7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestLoggerFromContextFallback(t *testing.T) {
	assert.NotNil(t, loggerFromContext(context.Background()))
	assert.NotNil(t, loggerFromContext(ContextWithLogger(context.Background(), nil)))
}
