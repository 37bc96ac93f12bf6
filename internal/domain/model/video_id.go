package model

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidVideoID is returned when input is neither a video ID nor a recognised YouTube URL.
var ErrInvalidVideoID = errors.New("invalid YouTube URL or video ID")

const videoIDLength = 11

// ParseVideoID extracts a video ID from a raw 11-character ID or a YouTube URL.
//
// Supported URL forms:
//   - https://www.youtube.com/watch?v={id}
//   - https://youtu.be/{id}
//   - https://www.youtube.com/embed/{id}
//   - https://www.youtube.com/v/{id}
func ParseVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrInvalidVideoID
	}

	if isVideoID(input) {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", ErrInvalidVideoID
	}
	// "youtu.be/xyz" without a scheme parses as a bare path.
	if u.Host == "" && !strings.Contains(input, "://") {
		if u, err = url.Parse("https://" + input); err != nil {
			return "", ErrInvalidVideoID
		}
	}

	var id string
	switch strings.ToLower(u.Hostname()) {
	case "youtu.be":
		id = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"), strings.HasPrefix(u.Path, "/v/"):
			parts := strings.Split(u.Path, "/")
			if len(parts) > 2 {
				id = parts[2]
			}
		}
	}

	if !isVideoID(id) {
		return "", ErrInvalidVideoID
	}
	return id, nil
}

func isVideoID(s string) bool {
	if len(s) != videoIDLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
