// Package feeds imports quote candidates from philosophy blogs and journals.
// Feed entries are fetched with gofeed, expanded to full page text with
// readability, then mined for attributable quote lines. The output is a
// curation file for a human to review, never the quote database itself.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/renameio/v2"

	"wisdombot/logx"
)

// FeedConfig names a curated source.
type FeedConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Presets maps friendly keys to known philosophy feeds.
var Presets = map[string]FeedConfig{
	"dailystoic": {
		Name: "Daily Stoic",
		URL:  "https://dailystoic.com/feed/",
	},
	"stoicism": {
		Name: "Modern Stoicism",
		URL:  "https://modernstoicism.com/feed/",
	},
	"aeon": {
		Name: "Aeon",
		URL:  "https://aeon.co/feed.rss",
	},
	"marginalian": {
		Name: "The Marginalian",
		URL:  "https://www.themarginalian.org/feed/",
	},
}

// DefaultPreset is used when no feed is named.
const DefaultPreset = "dailystoic"

// ResolveURL maps a preset key to its URL; anything else is assumed to be a
// direct feed URL already.
func ResolveURL(feedInput string) string {
	if cfg, ok := Presets[feedInput]; ok {
		return cfg.URL
	}
	return feedInput
}

// ImportResult wraps one import run for the curation file.
type ImportResult struct {
	FeedURL        string      `json:"feed_url"`
	FetchedAt      time.Time   `json:"fetched_at"`
	ArticleCount   int         `json:"article_count"`
	ExtractedCount int         `json:"extracted_count"`
	Candidates     []Candidate `json:"candidates"`
}

// Import runs one fetch, extract and mine cycle against feedURL and writes
// the candidate file to outPath. authors are the display names recognized in
// attributions.
func Import(ctx context.Context, feedURL string, count int, authors []string, outPath string) (*ImportResult, error) {
	log := logx.WithComponent("feeds")

	articles, err := Fetch(ctx, feedURL, count)
	if err != nil {
		return nil, err
	}
	log.Info().Str("feed", feedURL).Int("articles", len(articles)).Msg("feed fetched")

	ExtractAll(articles)

	extracted := 0
	for _, a := range articles {
		if a.ExtractionError == "" {
			extracted++
		}
	}
	log.Info().Int("extracted", extracted).Int("total", len(articles)).Msg("content extraction done")

	result := &ImportResult{
		FeedURL:        feedURL,
		FetchedAt:      time.Now().UTC(),
		ArticleCount:   len(articles),
		ExtractedCount: extracted,
		Candidates:     Mine(articles, authors),
	}
	log.Info().Int("candidates", len(result.Candidates)).Msg("quote mining done")

	if err := WriteCandidates(outPath, result); err != nil {
		return nil, err
	}
	return result, nil
}

// WriteCandidates writes the curation file atomically.
func WriteCandidates(path string, result *ImportResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	return nil
}
