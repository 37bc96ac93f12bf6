package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
)

// mockTranscriptSource provides a configurable mock for TranscriptSource.
type mockTranscriptSource struct {
	fetchTranscriptFn func(ctx context.Context, videoID string, languages []string) (model.Transcript, error)
	fetchCount        atomic.Int32

	mu            sync.Mutex
	lastLanguages []string
}

func (m *mockTranscriptSource) FetchTranscript(ctx context.Context, videoID string, languages []string) (model.Transcript, error) {
	m.fetchCount.Add(1)
	m.mu.Lock()
	m.lastLanguages = languages
	m.mu.Unlock()
	if m.fetchTranscriptFn != nil {
		return m.fetchTranscriptFn(ctx, videoID, languages)
	}
	return model.Transcript{}, nil
}

func (m *mockTranscriptSource) languages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLanguages
}

// mockMetadataSource provides a configurable mock for MetadataSource.
type mockMetadataSource struct {
	fetchMetadataFn func(ctx context.Context, videoID string) (*model.VideoMetadata, error)
	fetchCount      atomic.Int32
}

func (m *mockMetadataSource) FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	m.fetchCount.Add(1)
	if m.fetchMetadataFn != nil {
		return m.fetchMetadataFn(ctx, videoID)
	}
	return &model.VideoMetadata{}, nil
}

// mockTranscriptFetcher provides a configurable mock for TranscriptFetcher.
type mockTranscriptFetcher struct {
	fetchFn    func(ctx context.Context, videoID string, languages []string) (model.Transcript, error)
	fetchCount atomic.Int32
}

func (m *mockTranscriptFetcher) Fetch(ctx context.Context, videoID string, languages []string) (model.Transcript, error) {
	m.fetchCount.Add(1)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, videoID, languages)
	}
	return model.Transcript{}, nil
}
