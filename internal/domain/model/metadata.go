package model

// VideoMetadata is the cleaned subset of a video's oEmbed document.
type VideoMetadata struct {
	Title        string
	AuthorName   string
	AuthorURL    string
	Type         string
	Height       int
	Width        int
	Version      string
	ProviderName string
	ProviderURL  string
	ThumbnailURL string
}
