package cache

import (
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// DefaultLanguage is used when a request names no languages.
const DefaultLanguage = "en"

// Key identifies a cached transcript by video and normalized language set.
// Requests that differ only in language order, case, whitespace or
// duplicates map to the same Key.
type Key struct {
	videoID   string
	languages []string
	canonical string
	hash      xxh3.Uint128
}

// NewKey builds the canonical key for a video and language preference list.
func NewKey(videoID string, languages []string) Key {
	videoID = strings.TrimSpace(videoID)
	langs := NormalizeLanguages(languages)
	canonical := videoID + "|" + strings.Join(langs, ",")

	return Key{
		videoID:   videoID,
		languages: langs,
		canonical: canonical,
		hash:      xxh3.HashString128(canonical),
	}
}

// NormalizeLanguages lower-cases, de-duplicates and sorts language codes.
// An empty result falls back to DefaultLanguage.
func NormalizeLanguages(languages []string) []string {
	out := make([]string, 0, len(languages))
	for _, l := range languages {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return []string{DefaultLanguage}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// VideoID returns the video identifier part of the key.
func (k Key) VideoID() string {
	return k.videoID
}

// Languages returns a copy of the normalized language list.
func (k Key) Languages() []string {
	return slices.Clone(k.languages)
}

// String returns the canonical form, suitable for logging and as a
// coalescing key for in-flight requests.
func (k Key) String() string {
	return k.canonical
}
