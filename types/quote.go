package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Philosopher holds display metadata for a quote author
type Philosopher struct {
	Name        string `json:"name"`
	Era         string `json:"era"`
	Title       string `json:"title"`
	Tradition   string `json:"tradition,omitempty"`
	NotableWork string `json:"notable_work,omitempty"`
}

// Quote is a raw record from the quote database
type Quote struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Author   string `json:"author"` // philosopher key, e.g. "marcus_aurelius"
	Source   string `json:"source,omitempty"`
	Category string `json:"category"`
}

// QuoteContent is a quote prepared for video generation: display fields plus
// the generated narration support text. Immutable once built.
type QuoteContent struct {
	QuoteID    int          `json:"quote_id"`
	Text       string       `json:"quote_text"`
	AuthorKey  string       `json:"author_key"`
	AuthorName string       `json:"author_name"`
	Source     string       `json:"source,omitempty"`
	Category   string       `json:"category"`
	WordCount  int          `json:"word_count"`
	HookIntro  string       `json:"hook_intro"`
	Reflection string       `json:"reflection"`
	Meta       *Philosopher `json:"philosopher_meta,omitempty"`
}

// Fingerprint returns a stable short ID for a quote text, used for
// deduplication and cache keys.
func Fingerprint(text string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(text), " "))
	hash := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(hash[:])[:16]
}
