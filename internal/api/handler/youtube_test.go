package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
	"github.com/hszk-dev/ytproxy/internal/domain/repository"
	"github.com/hszk-dev/ytproxy/internal/usecase"
)

// Mock VideoService

type mockVideoService struct {
	getCaptionsFn   func(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error)
	getTimestampsFn func(ctx context.Context, video string, languages []string) (*usecase.TimestampsOutput, error)
	getMetadataFn   func(ctx context.Context, video string) (*model.VideoMetadata, error)
}

func (m *mockVideoService) GetCaptions(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error) {
	if m.getCaptionsFn != nil {
		return m.getCaptionsFn(ctx, video, languages)
	}
	return &usecase.CaptionsOutput{}, nil
}

func (m *mockVideoService) GetTimestamps(ctx context.Context, video string, languages []string) (*usecase.TimestampsOutput, error) {
	if m.getTimestampsFn != nil {
		return m.getTimestampsFn(ctx, video, languages)
	}
	return &usecase.TimestampsOutput{}, nil
}

func (m *mockVideoService) GetMetadata(ctx context.Context, video string) (*model.VideoMetadata, error) {
	if m.getMetadataFn != nil {
		return m.getMetadataFn(ctx, video)
	}
	return &model.VideoMetadata{}, nil
}

func newYouTubeRouter(svc usecase.VideoService) *chi.Mux {
	h := NewYouTubeHandler(svc, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/youtube", func(r chi.Router) {
		r.Get("/metadata", h.Metadata)
		r.Get("/captions", h.Captions)
		r.Get("/timestamps", h.Timestamps)
	})
	return r
}

func TestYouTubeHandler_Captions(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(m *mockVideoService)
		wantStatusCode int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:  "successful retrieval",
			query: "?video=https://youtu.be/dQw4w9WgXcQ",
			setupMock: func(m *mockVideoService) {
				m.getCaptionsFn = func(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error) {
					if video != "https://youtu.be/dQw4w9WgXcQ" {
						t.Errorf("video = %q", video)
					}
					if languages != nil {
						t.Errorf("languages = %v, want nil", languages)
					}
					return &usecase.CaptionsOutput{VideoID: "dQw4w9WgXcQ", Captions: "rock & roll <3"}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var resp CaptionsResponse
				if err := json.Unmarshal(body, &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.VideoID != "dQw4w9WgXcQ" {
					t.Errorf("expected video_id dQw4w9WgXcQ, got %s", resp.VideoID)
				}
				if resp.Captions != "rock & roll <3" {
					t.Errorf("unexpected captions %q", resp.Captions)
				}
				if strings.Contains(string(body), `\u0026`) {
					t.Errorf("captions were HTML-escaped: %s", body)
				}
			},
		},
		{
			name:           "missing video",
			query:          "",
			setupMock:      func(m *mockVideoService) {},
			wantStatusCode: http.StatusBadRequest,
			checkResponse:  expectErrorCode("missing_video"),
		},
		{
			name:  "invalid video",
			query: "?video=nope",
			setupMock: func(m *mockVideoService) {
				m.getCaptionsFn = func(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error) {
					return nil, model.ErrInvalidVideoID
				}
			},
			wantStatusCode: http.StatusBadRequest,
			checkResponse:  expectErrorCode("invalid_video"),
		},
		{
			name:  "transcript not found",
			query: "?video=dQw4w9WgXcQ",
			setupMock: func(m *mockVideoService) {
				m.getCaptionsFn = func(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error) {
					return nil, fmt.Errorf("fetch transcript for dQw4w9WgXcQ: %w", repository.ErrTranscriptNotFound)
				}
			},
			wantStatusCode: http.StatusNotFound,
			checkResponse:  expectErrorCode("transcript_not_found"),
		},
		{
			name:  "video not found",
			query: "?video=dQw4w9WgXcQ",
			setupMock: func(m *mockVideoService) {
				m.getCaptionsFn = func(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error) {
					return nil, repository.ErrVideoNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
			checkResponse:  expectErrorCode("video_not_found"),
		},
		{
			name:  "upstream unavailable",
			query: "?video=dQw4w9WgXcQ",
			setupMock: func(m *mockVideoService) {
				m.getCaptionsFn = func(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error) {
					return nil, repository.ErrUpstreamUnavailable
				}
			},
			wantStatusCode: http.StatusBadGateway,
			checkResponse:  expectErrorCode("upstream_unavailable"),
		},
		{
			name:  "upstream timeout",
			query: "?video=dQw4w9WgXcQ",
			setupMock: func(m *mockVideoService) {
				m.getCaptionsFn = func(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error) {
					return nil, fmt.Errorf("%w: /watch: %w", repository.ErrUpstreamUnavailable, context.DeadlineExceeded)
				}
			},
			wantStatusCode: http.StatusGatewayTimeout,
			checkResponse:  expectErrorCode("upstream_timeout"),
		},
		{
			name:  "unexpected error",
			query: "?video=dQw4w9WgXcQ",
			setupMock: func(m *mockVideoService) {
				m.getCaptionsFn = func(ctx context.Context, video string, languages []string) (*usecase.CaptionsOutput, error) {
					return nil, errors.New("boom")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			checkResponse:  expectErrorCode("internal_error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockVideoService{}
			tt.setupMock(m)

			req := httptest.NewRequest(http.MethodGet, "/youtube/captions"+tt.query, nil)
			rec := httptest.NewRecorder()
			newYouTubeRouter(m).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatusCode, rec.Code, rec.Body.String())
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, rec.Body.Bytes())
			}
		})
	}
}

func TestYouTubeHandler_LanguagesParsing(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "absent", query: "", want: nil},
		{name: "single", query: "&languages=de", want: []string{"de"}},
		{name: "repeated", query: "&languages=de&languages=en", want: []string{"de", "en"}},
		{name: "comma separated", query: "&languages=de,%20en", want: []string{"de", "en"}},
		{name: "mixed with blanks", query: "&languages=de,&languages=&languages=fr", want: []string{"de", "fr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			m := &mockVideoService{
				getTimestampsFn: func(ctx context.Context, video string, languages []string) (*usecase.TimestampsOutput, error) {
					got = languages
					return &usecase.TimestampsOutput{VideoID: video, Timestamps: []string{}}, nil
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/youtube/timestamps?video=dQw4w9WgXcQ"+tt.query, nil)
			rec := httptest.NewRecorder()
			newYouTubeRouter(m).ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("languages = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYouTubeHandler_Timestamps(t *testing.T) {
	m := &mockVideoService{
		getTimestampsFn: func(ctx context.Context, video string, languages []string) (*usecase.TimestampsOutput, error) {
			return &usecase.TimestampsOutput{
				VideoID:    "dQw4w9WgXcQ",
				Timestamps: []string{"0:00 - hi", "1:05 - there"},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/youtube/timestamps?video=dQw4w9WgXcQ", nil)
	rec := httptest.NewRecorder()
	newYouTubeRouter(m).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp TimestampsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !slices.Equal(resp.Timestamps, []string{"0:00 - hi", "1:05 - there"}) {
		t.Errorf("unexpected timestamps %v", resp.Timestamps)
	}
}

func TestYouTubeHandler_Metadata(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(m *mockVideoService)
		wantStatusCode int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:  "successful retrieval",
			query: "?video=dQw4w9WgXcQ",
			setupMock: func(m *mockVideoService) {
				m.getMetadataFn = func(ctx context.Context, video string) (*model.VideoMetadata, error) {
					return &model.VideoMetadata{
						Title:        "Never Gonna Give You Up",
						AuthorName:   "Rick Astley",
						Type:         "video",
						Height:       113,
						Width:        200,
						ProviderName: "YouTube",
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var resp map[string]any
				if err := json.Unmarshal(body, &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				for _, key := range []string{
					"title", "author_name", "author_url", "type", "height", "width",
					"version", "provider_name", "provider_url", "thumbnail_url",
				} {
					if _, ok := resp[key]; !ok {
						t.Errorf("response missing %q", key)
					}
				}
				if resp["title"] != "Never Gonna Give You Up" {
					t.Errorf("title = %v", resp["title"])
				}
				if resp["width"] != float64(200) {
					t.Errorf("width = %v", resp["width"])
				}
			},
		},
		{
			name:  "video not found",
			query: "?video=dQw4w9WgXcQ",
			setupMock: func(m *mockVideoService) {
				m.getMetadataFn = func(ctx context.Context, video string) (*model.VideoMetadata, error) {
					return nil, repository.ErrVideoNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
			checkResponse:  expectErrorCode("video_not_found"),
		},
		{
			name:           "missing video",
			query:          "?video=%20",
			setupMock:      func(m *mockVideoService) {},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockVideoService{}
			tt.setupMock(m)

			req := httptest.NewRequest(http.MethodGet, "/youtube/metadata"+tt.query, nil)
			rec := httptest.NewRecorder()
			newYouTubeRouter(m).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("expected status %d, got %d", tt.wantStatusCode, rec.Code)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, rec.Body.Bytes())
			}
		})
	}
}

func expectErrorCode(code string) func(t *testing.T, body []byte) {
	return func(t *testing.T, body []byte) {
		t.Helper()
		var resp ErrorResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("failed to unmarshal error response: %v", err)
		}
		if resp.Error != code {
			t.Errorf("expected error %q, got %q", code, resp.Error)
		}
	}
}
