package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article is a feed entry plus its extracted page text, the raw material the
// feed importer mines for quote candidates.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	PublishedAt     time.Time `json:"published_at"`
	FetchedAt       time.Time `json:"fetched_at"`
	Summary         string    `json:"summary"`
	Author          string    `json:"author,omitempty"`
	Categories      []string  `json:"categories,omitempty"`
	FullContent     string    `json:"full_content,omitempty"`
	FullContentText string    `json:"full_content_text,omitempty"`
	Excerpt         string    `json:"excerpt,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	ExtractionError string    `json:"extraction_error,omitempty"`
}

// ArticleID derives a short stable id from a URL, used when a feed entry
// carries no GUID.
func ArticleID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
