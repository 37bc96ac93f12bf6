package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
	"github.com/hszk-dev/ytproxy/internal/domain/repository"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/metrics"
)

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	Type         string `json:"type"`
	Height       int    `json:"height"`
	Width        int    `json:"width"`
	Version      string `json:"version"`
	ProviderName string `json:"provider_name"`
	ProviderURL  string `json:"provider_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// FetchMetadata retrieves the oEmbed description of a video.
// YouTube answers 404 for unknown videos and 401 for private or
// non-embeddable ones; both are reported as repository.ErrVideoNotFound.
func (c *Client) FetchMetadata(ctx context.Context, videoID string) (meta *model.VideoMetadata, err error) {
	start := time.Now()
	defer func() { observe(metrics.UpstreamOpMetadata, start, err) }()

	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := url.Values{}
	query.Set("format", "json")
	query.Set("url", model.WatchURL(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/oembed?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build oembed request: %w", err)
	}

	status, body, err := c.do(req, http.StatusNotFound, http.StatusUnauthorized, http.StatusBadRequest)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: %s (oembed status %d)", repository.ErrVideoNotFound, videoID, status)
	}

	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode oembed response: %w", repository.ErrUpstreamUnavailable, err)
	}

	return &model.VideoMetadata{
		Title:        resp.Title,
		AuthorName:   resp.AuthorName,
		AuthorURL:    resp.AuthorURL,
		Type:         resp.Type,
		Height:       resp.Height,
		Width:        resp.Width,
		Version:      resp.Version,
		ProviderName: resp.ProviderName,
		ProviderURL:  resp.ProviderURL,
		ThumbnailURL: resp.ThumbnailURL,
	}, nil
}
