package repository

import "errors"

var (
	// ErrUpstreamUnavailable is returned when the transcript or metadata source
	// cannot be reached (network failure, proxy failure, rate limiting, IP block).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrTranscriptNotFound is returned when the upstream responded but no
	// transcript exists for the requested languages.
	ErrTranscriptNotFound = errors.New("transcript not found")

	// ErrVideoNotFound is returned when the upstream does not know the video.
	ErrVideoNotFound = errors.New("video not found")
)
