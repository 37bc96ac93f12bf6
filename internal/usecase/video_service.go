package usecase

import (
	"context"
	"fmt"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
	"github.com/hszk-dev/ytproxy/internal/domain/repository"
)

// NoCaptionsMessage is returned as the caption text when a video has an empty transcript.
const NoCaptionsMessage = "No captions found for video"

// CaptionsOutput contains the plain-text captions of a video.
type CaptionsOutput struct {
	VideoID  string
	Captions string
}

// TimestampsOutput contains caption lines prefixed with their start offset.
type TimestampsOutput struct {
	VideoID    string
	Timestamps []string
}

// VideoService defines the interface for video lookup operations.
// Every method accepts a raw video ID or any supported YouTube URL.
type VideoService interface {
	// GetCaptions returns all caption text joined by single spaces.
	GetCaptions(ctx context.Context, video string, languages []string) (*CaptionsOutput, error)

	// GetTimestamps returns one "m:ss - text" line per caption segment.
	GetTimestamps(ctx context.Context, video string, languages []string) (*TimestampsOutput, error)

	// GetMetadata returns the oEmbed metadata of a video. Metadata is not cached.
	GetMetadata(ctx context.Context, video string) (*model.VideoMetadata, error)
}

type videoService struct {
	fetcher  TranscriptFetcher
	metadata repository.MetadataSource
}

// NewVideoService creates a new VideoService instance.
func NewVideoService(
	fetcher TranscriptFetcher,
	metadata repository.MetadataSource,
) VideoService {
	return &videoService{
		fetcher:  fetcher,
		metadata: metadata,
	}
}

// GetCaptions fetches the transcript through the shared cache and joins its text.
func (s *videoService) GetCaptions(ctx context.Context, video string, languages []string) (*CaptionsOutput, error) {
	videoID, transcript, err := s.fetch(ctx, video, languages)
	if err != nil {
		return nil, err
	}

	captions := transcript.Text()
	if len(transcript) == 0 {
		captions = NoCaptionsMessage
	}

	return &CaptionsOutput{
		VideoID:  videoID,
		Captions: captions,
	}, nil
}

// GetTimestamps fetches the transcript through the shared cache and formats each segment.
func (s *videoService) GetTimestamps(ctx context.Context, video string, languages []string) (*TimestampsOutput, error) {
	videoID, transcript, err := s.fetch(ctx, video, languages)
	if err != nil {
		return nil, err
	}

	return &TimestampsOutput{
		VideoID:    videoID,
		Timestamps: transcript.Timestamps(),
	}, nil
}

func (s *videoService) GetMetadata(ctx context.Context, video string) (*model.VideoMetadata, error) {
	videoID, err := model.ParseVideoID(video)
	if err != nil {
		return nil, err
	}

	meta, err := s.metadata.FetchMetadata(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata for %s: %w", videoID, err)
	}
	return meta, nil
}

func (s *videoService) fetch(ctx context.Context, video string, languages []string) (string, model.Transcript, error) {
	videoID, err := model.ParseVideoID(video)
	if err != nil {
		return "", nil, err
	}

	transcript, err := s.fetcher.Fetch(ctx, videoID, languages)
	if err != nil {
		return "", nil, fmt.Errorf("fetch transcript for %s: %w", videoID, err)
	}
	return videoID, transcript, nil
}

// Compile-time verification that videoService implements VideoService.
var _ VideoService = (*videoService)(nil)
