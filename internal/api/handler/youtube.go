package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hszk-dev/ytproxy/internal/api/middleware"
	"github.com/hszk-dev/ytproxy/internal/domain/model"
	"github.com/hszk-dev/ytproxy/internal/domain/repository"
	"github.com/hszk-dev/ytproxy/internal/usecase"
)

// Response types

type CaptionsResponse struct {
	VideoID  string `json:"video_id"`
	Captions string `json:"captions"`
}

type TimestampsResponse struct {
	VideoID    string   `json:"video_id"`
	Timestamps []string `json:"timestamps"`
}

type MetadataResponse struct {
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

// YouTubeHandler handles video lookup requests.
type YouTubeHandler struct {
	svc    usecase.VideoService
	logger *slog.Logger
}

// NewYouTubeHandler creates a new YouTubeHandler.
func NewYouTubeHandler(svc usecase.VideoService, logger *slog.Logger) *YouTubeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &YouTubeHandler{svc: svc, logger: logger}
}

// Metadata handles GET /youtube/metadata?video=
func (h *YouTubeHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	video, ok := requireVideo(w, r)
	if !ok {
		return
	}

	meta, err := h.svc.GetMetadata(r.Context(), video)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toMetadataResponse(meta))
}

// Captions handles GET /youtube/captions?video=&languages=
func (h *YouTubeHandler) Captions(w http.ResponseWriter, r *http.Request) {
	video, ok := requireVideo(w, r)
	if !ok {
		return
	}

	output, err := h.svc.GetCaptions(r.Context(), video, parseLanguages(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, CaptionsResponse{
		VideoID:  output.VideoID,
		Captions: output.Captions,
	})
}

// Timestamps handles GET /youtube/timestamps?video=&languages=
func (h *YouTubeHandler) Timestamps(w http.ResponseWriter, r *http.Request) {
	video, ok := requireVideo(w, r)
	if !ok {
		return
	}

	output, err := h.svc.GetTimestamps(r.Context(), video, parseLanguages(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, TimestampsResponse{
		VideoID:    output.VideoID,
		Timestamps: output.Timestamps,
	})
}

func (h *YouTubeHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	// Deadline first: upstream timeouts also carry ErrUpstreamUnavailable.
	switch {
	case errors.Is(err, model.ErrInvalidVideoID):
		Error(w, http.StatusBadRequest, "invalid_video", "Invalid YouTube URL or video ID")
	case errors.Is(err, context.DeadlineExceeded):
		Error(w, http.StatusGatewayTimeout, "upstream_timeout", "YouTube did not respond in time")
	case errors.Is(err, repository.ErrTranscriptNotFound):
		Error(w, http.StatusNotFound, "transcript_not_found", "No transcript available for the requested languages")
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "Video not found")
	case errors.Is(err, repository.ErrUpstreamUnavailable):
		Error(w, http.StatusBadGateway, "upstream_unavailable", "YouTube is currently unreachable")
	case errors.Is(err, context.Canceled):
		Error(w, http.StatusRequestTimeout, "request_canceled", "Request was canceled")
	default:
		h.logger.ErrorContext(r.Context(), "unexpected service error",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func requireVideo(w http.ResponseWriter, r *http.Request) (string, bool) {
	video := strings.TrimSpace(r.URL.Query().Get("video"))
	if video == "" {
		Error(w, http.StatusBadRequest, "missing_video", "Query parameter 'video' is required")
		return "", false
	}
	return video, true
}

// parseLanguages accepts both ?languages=en&languages=es and ?languages=en,es.
func parseLanguages(r *http.Request) []string {
	var languages []string
	for _, v := range r.URL.Query()["languages"] {
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				languages = append(languages, l)
			}
		}
	}
	return languages
}

func toMetadataResponse(m *model.VideoMetadata) MetadataResponse {
	return MetadataResponse{
		Title:        m.Title,
		AuthorName:   m.AuthorName,
		AuthorURL:    m.AuthorURL,
		Type:         m.Type,
		Height:       m.Height,
		Width:        m.Width,
		Version:      m.Version,
		ProviderName: m.ProviderName,
		ProviderURL:  m.ProviderURL,
		ThumbnailURL: m.ThumbnailURL,
	}
}
