package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hszk-dev/ytproxy/internal/domain/model"
	"github.com/hszk-dev/ytproxy/internal/domain/repository"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/metrics"
)

// The player endpoint only returns usable caption URLs to a mobile client.
const (
	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"
)

const playabilityOK = "OK"

var (
	apiKeyPattern = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
)

type playerRequest struct {
	Context playerContext `json:"context"`
	VideoID string        `json:"videoId"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (t captionTrack) generated() bool {
	return t.Kind == "asr"
}

type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript retrieves the captions of videoID in the first language of
// languages that has a track, preferring manually created tracks over
// generated ones for each language.
func (c *Client) FetchTranscript(ctx context.Context, videoID string, languages []string) (transcript model.Transcript, err error) {
	start := time.Now()
	defer func() { observe(metrics.UpstreamOpTranscript, start, err) }()

	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	apiKey, err := c.fetchAPIKey(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tracks, err := c.fetchCaptionTracks(ctx, videoID, apiKey)
	if err != nil {
		return nil, err
	}

	track, ok := selectTrack(tracks, languages)
	if !ok {
		return nil, fmt.Errorf("%w: no track for languages %v", repository.ErrTranscriptNotFound, languages)
	}

	transcript, err = c.fetchTimedText(ctx, track)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched transcript",
		"video_id", videoID,
		"language", track.LanguageCode,
		"generated", track.generated(),
		"segments", len(transcript),
	)
	return transcript, nil
}

func (c *Client) fetchAPIKey(ctx context.Context, videoID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/watch?v="+url.QueryEscape(videoID), nil)
	if err != nil {
		return "", fmt.Errorf("build watch request: %w", err)
	}
	// Skips the EU consent interstitial.
	req.AddCookie(&http.Cookie{Name: "CONSENT", Value: "YES+cb"})

	_, body, err := c.do(req)
	if err != nil {
		return "", err
	}

	if bytes.Contains(body, []byte(`class="g-recaptcha"`)) {
		return "", fmt.Errorf("%w: request blocked by captcha", repository.ErrUpstreamUnavailable)
	}

	m := apiKeyPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("%w: watch page for %s has no innertube api key", repository.ErrUpstreamUnavailable, videoID)
	}
	return string(m[1]), nil
}

func (c *Client) fetchCaptionTracks(ctx context.Context, videoID, apiKey string) ([]captionTrack, error) {
	payload, err := json.Marshal(playerRequest{
		Context: playerContext{Client: playerClient{
			ClientName:    innertubeClientName,
			ClientVersion: innertubeClientVersion,
		}},
		VideoID: videoID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	endpoint := c.baseURL + "/youtubei/v1/player?key=" + url.QueryEscape(apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build player request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp playerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode player response: %w", repository.ErrUpstreamUnavailable, err)
	}

	if status := resp.PlayabilityStatus; status.Status != playabilityOK {
		return nil, playabilityError(videoID, status.Status, status.Reason)
	}

	if resp.Captions == nil || len(resp.Captions.Renderer.CaptionTracks) == 0 {
		return nil, fmt.Errorf("%w: transcripts are disabled for %s", repository.ErrTranscriptNotFound, videoID)
	}
	return resp.Captions.Renderer.CaptionTracks, nil
}

// playabilityError classifies a non-playable player response. Bot checks are
// an upstream availability problem; everything else means this video has no
// reachable transcript.
func playabilityError(videoID, status, reason string) error {
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "not a bot"), strings.Contains(lower, "unusual traffic"):
		return fmt.Errorf("%w: %s", repository.ErrUpstreamUnavailable, reason)
	case status == "ERROR" && strings.Contains(lower, "unavailable"):
		return fmt.Errorf("%w: %s: %s", repository.ErrVideoNotFound, videoID, reason)
	default:
		return fmt.Errorf("%w: %s is not playable (%s): %s", repository.ErrTranscriptNotFound, videoID, status, reason)
	}
}

// selectTrack walks languages in priority order and returns the first match,
// manual tracks first.
func selectTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, lang := range languages {
		lang = strings.ToLower(lang)
		var generated *captionTrack
		for i := range tracks {
			if strings.ToLower(tracks[i].LanguageCode) != lang {
				continue
			}
			if !tracks[i].generated() {
				return tracks[i], true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return captionTrack{}, false
}

func (c *Client) fetchTimedText(ctx context.Context, track captionTrack) (model.Transcript, error) {
	rawURL := strings.Replace(track.BaseURL, "&fmt=srv3", "", 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bad caption url: %w", repository.ErrUpstreamUnavailable, err)
	}

	_, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	return parseTimedText(body)
}

func parseTimedText(body []byte) (model.Transcript, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode timed text: %w", repository.ErrUpstreamUnavailable, err)
	}

	transcript := make(model.Transcript, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		if t.Body == "" {
			continue
		}
		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		transcript = append(transcript, model.Segment{
			Text:     tagPattern.ReplaceAllString(html.UnescapeString(t.Body), ""),
			Start:    start,
			Duration: dur,
		})
	}
	return transcript, nil
}
