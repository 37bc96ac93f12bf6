package usecase

import (
	"context"
	"log/slog"

	"github.com/hszk-dev/ytproxy/internal/infrastructure/cache"
)

// CacheReporter exposes cache statistics and administrative clearing.
type CacheReporter interface {
	// Stats returns a snapshot of the cache counters.
	Stats() cache.Stats

	// Clear empties the cache and returns the number of removed entries.
	Clear(ctx context.Context) int
}

type cacheReporter struct {
	cache  cache.TranscriptCache
	logger *slog.Logger
}

// NewCacheReporter creates a CacheReporter over the shared transcript cache.
func NewCacheReporter(transcriptCache cache.TranscriptCache, logger *slog.Logger) CacheReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &cacheReporter{
		cache:  transcriptCache,
		logger: logger,
	}
}

func (r *cacheReporter) Stats() cache.Stats {
	return r.cache.Stats()
}

func (r *cacheReporter) Clear(ctx context.Context) int {
	removed := r.cache.Clear()
	r.logger.InfoContext(ctx, "transcript cache cleared", "removed", removed)
	return removed
}

// Compile-time verification that cacheReporter implements CacheReporter.
var _ CacheReporter = (*cacheReporter)(nil)
