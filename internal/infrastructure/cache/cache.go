// Package cache provides the in-process transcript cache.
package cache

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
)

const (
	// DefaultTTL is how long a transcript stays valid after it was stored.
	DefaultTTL = time.Hour
	// DefaultMaxSize is the default maximum number of cached transcripts.
	DefaultMaxSize = 1000
)

// TranscriptCache defines the transcript store shared by all request paths.
// Every operation is total: there are no error returns.
type TranscriptCache interface {
	// Get returns a copy of the cached transcript if present and not older than the TTL.
	// A hit marks the entry as most recently used.
	Get(key Key) (model.Transcript, bool)

	// Put inserts or replaces the transcript for key and resets its age.
	// Inserting a new key into a full cache evicts exactly one entry first.
	Put(key Key, transcript model.Transcript)

	// Remove deletes the entry for key. Missing keys are ignored.
	Remove(key Key)

	// Clear removes every entry and returns how many were removed.
	// Cumulative hit, miss and eviction counters are kept.
	Clear() int

	// Sweep removes all expired entries and returns how many were removed.
	Sweep() int

	// Stats returns a snapshot of the cache counters.
	Stats() Stats

	// Close stops background maintenance.
	Close() error
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Enabled           bool
	Hits              uint64
	Misses            uint64
	EvictionsExpired  uint64
	EvictionsCapacity uint64
	Size              int
	Capacity          int
	TTL               time.Duration
}

// Config holds configuration for the transcript cache.
type Config struct {
	// Enabled selects between the LRU store and a pass-through no-op.
	Enabled bool
	// TTL is the maximum age of an entry, measured from its last Put.
	TTL time.Duration
	// MaxSize is the maximum number of entries.
	MaxSize int
	// SweepInterval enables periodic removal of expired entries when positive.
	// Expiry is enforced on read regardless.
	SweepInterval time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		TTL:     DefaultTTL,
		MaxSize: DefaultMaxSize,
	}
}

// Option customises cache construction.
type Option func(*options)

type options struct {
	clock  clock.Clock
	logger *slog.Logger
}

// WithClock sets the time source. Tests use clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger used by background maintenance.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New creates a transcript cache. When cfg.Enabled is false the returned
// cache never stores anything, so callers do not need to check the flag.
func New(cfg Config, opts ...Option) TranscriptCache {
	o := options{
		clock:  clock.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.Enabled {
		return noopCache{}
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}

	c := newLRUCache(cfg, o.clock, o.logger)
	if cfg.SweepInterval > 0 {
		c.startJanitor(cfg.SweepInterval)
	}
	return c
}
