package model

import (
	"fmt"
	"strings"
)

// Segment is a single caption line of a transcript.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the ordered sequence of caption segments for a video.
type Transcript []Segment

// Clone returns a copy that shares no backing array with t.
// Segments hold only value fields, so a shallow slice copy is sufficient.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// Text joins all segment texts with single spaces.
func (t Transcript) Text() string {
	parts := make([]string, len(t))
	for i, s := range t {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

// Timestamps renders each segment as "m:ss - text" using its start offset.
func (t Transcript) Timestamps() []string {
	lines := make([]string, 0, len(t))
	for _, s := range t {
		lines = append(lines, fmt.Sprintf("%s - %s", FormatTimestamp(s.Start), s.Text))
	}
	return lines
}

// FormatTimestamp formats an offset in seconds as minutes and zero-padded seconds.
// Fractions of a second are truncated; minutes are not wrapped into hours.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
