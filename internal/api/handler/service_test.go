package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/ytproxy/internal/infrastructure/cache"
)

// Mock CacheReporter

type mockCacheReporter struct {
	stats      cache.Stats
	removed    int
	clearCount atomic.Int32
}

func (m *mockCacheReporter) Stats() cache.Stats {
	return m.stats
}

func (m *mockCacheReporter) Clear(ctx context.Context) int {
	m.clearCount.Add(1)
	return m.removed
}

func newServiceRouter(reporter *mockCacheReporter, clk clock.Clock) *chi.Mux {
	h := NewServiceHandler(reporter, ServiceInfo{Name: "YouTube Tools API", Version: "1.2.0"}, clk)
	r := chi.NewRouter()
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Route("/service", func(r chi.Router) {
		r.Get("/info", h.Info)
		r.Get("/status", h.Status)
		r.Get("/cache", h.CacheStats)
		r.Delete("/cache", h.ClearCache)
	})
	return r
}

func serve(t *testing.T, r http.Handler, method, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return rec.Code
}

func TestServiceHandler_Health(t *testing.T) {
	r := newServiceRouter(&mockCacheReporter{}, clock.NewMock())

	var resp HealthResponse
	if code := serve(t, r, http.MethodGet, "/health", &resp); code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %s", resp.Status)
	}
}

func TestServiceHandler_Root(t *testing.T) {
	r := newServiceRouter(&mockCacheReporter{}, clock.NewMock())

	var resp RootResponse
	if code := serve(t, r, http.MethodGet, "/", &resp); code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if resp.Message != "Welcome to the YouTube Tools API" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Service != "/service/info" || resp.Health != "/health" || resp.Metrics != "/metrics" {
		t.Errorf("unexpected links %+v", resp)
	}
}

func TestServiceHandler_Info(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	r := newServiceRouter(&mockCacheReporter{}, clk)

	clk.Add(90 * time.Second)

	var resp InfoResponse
	if code := serve(t, r, http.MethodGet, "/service/info", &resp); code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if resp.Version != "1.2.0" {
		t.Errorf("version = %s", resp.Version)
	}
	if resp.StartedAt != "2025-01-02T03:04:05Z" {
		t.Errorf("started_at = %s", resp.StartedAt)
	}
	if resp.UptimeSeconds != 90 {
		t.Errorf("uptime_seconds = %d, want 90", resp.UptimeSeconds)
	}
}

func TestServiceHandler_CacheStats(t *testing.T) {
	reporter := &mockCacheReporter{
		stats: cache.Stats{
			Enabled:           true,
			Hits:              5,
			Misses:            2,
			EvictionsExpired:  1,
			EvictionsCapacity: 3,
			Size:              7,
			Capacity:          1000,
			TTL:               time.Hour,
		},
	}
	r := newServiceRouter(reporter, clock.NewMock())

	var raw map[string]any
	if code := serve(t, r, http.MethodGet, "/service/cache", &raw); code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}

	want := map[string]any{
		"enabled":            true,
		"hits":               float64(5),
		"misses":             float64(2),
		"evictions_expired":  float64(1),
		"evictions_capacity": float64(3),
		"size":               float64(7),
		"capacity":           float64(1000),
		"ttl_seconds":        float64(3600),
	}
	if len(raw) != len(want) {
		t.Errorf("response has %d fields, want %d: %v", len(raw), len(want), raw)
	}
	for k, v := range want {
		if raw[k] != v {
			t.Errorf("%s = %v, want %v", k, raw[k], v)
		}
	}

	var status StatusResponse
	if code := serve(t, r, http.MethodGet, "/service/status", &status); code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if status.Status != "operational" || status.Cache.Size != 7 || status.Cache.TTLSeconds != 3600 {
		t.Errorf("unexpected status response %+v", status)
	}
}

func TestServiceHandler_ClearCache(t *testing.T) {
	reporter := &mockCacheReporter{removed: 4}
	r := newServiceRouter(reporter, clock.NewMock())

	var resp ClearCacheResponse
	if code := serve(t, r, http.MethodDelete, "/service/cache", &resp); code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if resp.Removed != 4 {
		t.Errorf("removed = %d, want 4", resp.Removed)
	}
	if n := reporter.clearCount.Load(); n != 1 {
		t.Errorf("Clear called %d times, want 1", n)
	}
}
