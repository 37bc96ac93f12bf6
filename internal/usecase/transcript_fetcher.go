package usecase

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
	"github.com/hszk-dev/ytproxy/internal/domain/repository"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/cache"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/metrics"
)

const tracerName = "github.com/hszk-dev/ytproxy/internal/usecase"

// TranscriptFetcher returns transcripts from the cache, fetching them from
// the upstream source on a miss.
type TranscriptFetcher interface {
	// Fetch returns the transcript for videoID in the first available language
	// of languages. Concurrent misses for the same normalized key share a
	// single upstream call and all observe its result. Upstream errors are
	// returned unchanged and never cached.
	Fetch(ctx context.Context, videoID string, languages []string) (model.Transcript, error)
}

// TranscriptFetcherConfig holds configuration for TranscriptFetcher.
type TranscriptFetcherConfig struct {
	Tracer trace.Tracer
	Logger *slog.Logger
}

// DefaultTranscriptFetcherConfig returns the default configuration.
func DefaultTranscriptFetcherConfig() TranscriptFetcherConfig {
	return TranscriptFetcherConfig{
		Tracer: otel.Tracer(tracerName),
		Logger: slog.Default(),
	}
}

type transcriptFetcher struct {
	source  repository.TranscriptSource
	cache   cache.TranscriptCache
	sfGroup singleflight.Group

	tracer trace.Tracer
	logger *slog.Logger
}

// NewTranscriptFetcher creates a TranscriptFetcher in front of source.
func NewTranscriptFetcher(
	source repository.TranscriptSource,
	transcriptCache cache.TranscriptCache,
	cfg TranscriptFetcherConfig,
) TranscriptFetcher {
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &transcriptFetcher{
		source: source,
		cache:  transcriptCache,
		tracer: cfg.Tracer,
		logger: cfg.Logger,
	}
}

func (f *transcriptFetcher) Fetch(ctx context.Context, videoID string, languages []string) (model.Transcript, error) {
	key := cache.NewKey(videoID, languages)

	ctx, span := f.tracer.Start(ctx, "TranscriptFetcher.Fetch",
		trace.WithAttributes(
			attribute.String("video.id", key.VideoID()),
			attribute.StringSlice("video.languages", key.Languages()),
		),
	)
	defer span.End()

	if transcript, ok := f.cache.Get(key); ok {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit).Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return transcript, nil
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss).Inc()
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// The shared call must outlive any single caller, so it runs detached
	// from cancellation. The source's own timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	preferred := PreferredLanguages(languages)

	ch := f.sfGroup.DoChan(key.String(), func() (any, error) {
		transcript, err := f.source.FetchTranscript(flightCtx, key.VideoID(), preferred)
		if err != nil {
			return nil, err
		}
		f.cache.Put(key, transcript)
		return transcript, nil
	})

	select {
	case <-ctx.Done():
		err := ctx.Err()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err

	case res := <-ch:
		if res.Shared {
			metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
		} else {
			metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
		}
		span.SetAttributes(attribute.Bool("singleflight.shared", res.Shared))

		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			f.logger.Debug("transcript fetch failed",
				"key", key.String(),
				"shared", res.Shared,
				"error", res.Err,
			)
			return nil, res.Err
		}

		// Every caller gets its own copy of the shared result.
		return res.Val.(model.Transcript).Clone(), nil
	}
}

// PreferredLanguages cleans a caller's language list while keeping its
// priority order: codes are trimmed and lower-cased, blanks and repeats
// dropped. An empty result falls back to cache.DefaultLanguage.
func PreferredLanguages(languages []string) []string {
	out := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) == 0 {
		return []string{cache.DefaultLanguage}
	}
	return out
}

// Compile-time verification that transcriptFetcher implements TranscriptFetcher.
var _ TranscriptFetcher = (*transcriptFetcher)(nil)
