package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hszk-dev/ytproxy/internal/infrastructure/cache"
)

func TestCacheReporter_StatsAndClear(t *testing.T) {
	store := cache.New(cache.Config{Enabled: true, TTL: cache.DefaultTTL, MaxSize: 10})
	reporter := NewCacheReporter(store, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	a := cache.NewKey("aaaaaaaaaaa", nil)
	b := cache.NewKey("bbbbbbbbbbb", nil)
	store.Put(a, hiTranscript)
	store.Put(b, hiTranscript)
	store.Get(a)
	store.Get(cache.NewKey("ccccccccccc", nil))

	stats := reporter.Stats()
	if !stats.Enabled || stats.Size != 2 || stats.Capacity != 10 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	if removed := reporter.Clear(context.Background()); removed != 2 {
		t.Errorf("Clear() = %d, want 2", removed)
	}

	if _, ok := store.Get(a); ok {
		t.Error("entry survived Clear")
	}
	if _, ok := store.Get(b); ok {
		t.Error("entry survived Clear")
	}

	stats = reporter.Stats()
	if stats.Size != 0 {
		t.Errorf("Size = %d, want 0", stats.Size)
	}
	if stats.Hits != 1 || stats.Misses != 3 {
		t.Errorf("counters after Clear = %d hits, %d misses, want 1 and 3", stats.Hits, stats.Misses)
	}
}

func TestCacheReporter_Disabled(t *testing.T) {
	reporter := NewCacheReporter(cache.New(cache.Config{Enabled: false}), nil)

	stats := reporter.Stats()
	if stats.Enabled {
		t.Error("Enabled = true, want false")
	}
	if stats.Capacity != 0 || stats.Size != 0 || stats.TTL != 0 {
		t.Errorf("Stats() = %+v, want zero values", stats)
	}
	if removed := reporter.Clear(context.Background()); removed != 0 {
		t.Errorf("Clear() = %d, want 0", removed)
	}
}
