package repository

import (
	"context"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
)

// TranscriptSource defines the upstream transcript retrieval capability.
// Implementations should be provided by the infrastructure layer (e.g., YouTube).
type TranscriptSource interface {
	// FetchTranscript retrieves the transcript of a video in the first available
	// language of languages, in priority order.
	// Returns ErrTranscriptNotFound if none of the languages has a transcript,
	// ErrVideoNotFound if the video itself is unavailable, and
	// ErrUpstreamUnavailable on transport, proxy or blocking failures.
	FetchTranscript(ctx context.Context, videoID string, languages []string) (model.Transcript, error)
}

// MetadataSource defines the upstream video metadata lookup.
type MetadataSource interface {
	// FetchMetadata retrieves basic video information.
	// Returns ErrVideoNotFound if the video does not exist or is private.
	FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error)
}
