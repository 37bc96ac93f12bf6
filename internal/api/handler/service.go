package handler

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hszk-dev/ytproxy/internal/infrastructure/cache"
	"github.com/hszk-dev/ytproxy/internal/usecase"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Service string `json:"service"`
	Status  string `json:"status"`
	Health  string `json:"health"`
	Metrics string `json:"metrics"`
}

type InfoResponse struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	StartedAt     string `json:"started_at"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type StatusResponse struct {
	Status string             `json:"status"`
	Cache  CacheStatsResponse `json:"cache"`
}

type CacheStatsResponse struct {
	Enabled           bool   `json:"enabled"`
	Hits              uint64 `json:"hits"`
	Misses            uint64 `json:"misses"`
	EvictionsExpired  uint64 `json:"evictions_expired"`
	EvictionsCapacity uint64 `json:"evictions_capacity"`
	Size              int    `json:"size"`
	Capacity          int    `json:"capacity"`
	TTLSeconds        int64  `json:"ttl_seconds"`
}

type ClearCacheResponse struct {
	Removed int `json:"removed"`
}

// ServiceInfo describes the running service.
type ServiceInfo struct {
	Name    string
	Version string
}

// ServiceHandler serves the root banner, health, service information and cache administration.
type ServiceHandler struct {
	reporter usecase.CacheReporter
	info     ServiceInfo
	clock    clock.Clock
	started  time.Time
}

// NewServiceHandler creates a new ServiceHandler. Uptime is measured from this call.
func NewServiceHandler(reporter usecase.CacheReporter, info ServiceInfo, clk clock.Clock) *ServiceHandler {
	if clk == nil {
		clk = clock.New()
	}
	return &ServiceHandler{
		reporter: reporter,
		info:     info,
		clock:    clk,
		started:  clk.Now(),
	}
}

// Root handles GET /
func (h *ServiceHandler) Root(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, RootResponse{
		Message: "Welcome to the " + h.info.Name,
		Version: h.info.Version,
		Service: "/service/info",
		Status:  "/service/status",
		Health:  "/health",
		Metrics: "/metrics",
	})
}

// Health handles GET /health
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Info handles GET /service/info
func (h *ServiceHandler) Info(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, InfoResponse{
		Name:          h.info.Name,
		Version:       h.info.Version,
		StartedAt:     h.started.UTC().Format(time.RFC3339),
		UptimeSeconds: int64(h.clock.Since(h.started).Seconds()),
	})
}

// Status handles GET /service/status
func (h *ServiceHandler) Status(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, StatusResponse{
		Status: "operational",
		Cache:  toCacheStatsResponse(h.reporter.Stats()),
	})
}

// CacheStats handles GET /service/cache
func (h *ServiceHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, toCacheStatsResponse(h.reporter.Stats()))
}

// ClearCache handles DELETE /service/cache
func (h *ServiceHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed := h.reporter.Clear(r.Context())
	JSON(w, http.StatusOK, ClearCacheResponse{Removed: removed})
}

func toCacheStatsResponse(s cache.Stats) CacheStatsResponse {
	return CacheStatsResponse{
		Enabled:           s.Enabled,
		Hits:              s.Hits,
		Misses:            s.Misses,
		EvictionsExpired:  s.EvictionsExpired,
		EvictionsCapacity: s.EvictionsCapacity,
		Size:              s.Size,
		Capacity:          s.Capacity,
		TTLSeconds:        int64(s.TTL / time.Second),
	}
}
