package dedup

import (
	"context"

	"github.com/rs/zerolog"

	"wisdombot/logx"
)

// SimilarityThreshold at or above which two quotes count as the same thought.
const SimilarityThreshold = 0.92

// ExactFilter is the exact-duplicate stage of the guard, satisfied by Bloom.
type ExactFilter interface {
	Seen(ctx context.Context, quoteText string) (bool, error)
	Remember(ctx context.Context, quoteText string) error
}

// Guard decides whether a candidate quote is too close to recent output.
// Either stage may be absent; a Guard with neither accepts everything.
type Guard struct {
	bloom     ExactFilter
	embed     EmbeddingsProvider
	threshold float64
	log       zerolog.Logger
}

func NewGuard(bloom ExactFilter, embed EmbeddingsProvider) *Guard {
	return &Guard{
		bloom:     bloom,
		embed:     embed,
		threshold: SimilarityThreshold,
		log:       logx.WithComponent("dedup"),
	}
}

// ShouldSkip reports whether the quote duplicates recent output: true when
// the bloom filter holds its fingerprint or an embedding lands within the
// similarity threshold of a recent quote. Stage failures log and accept, so
// a degraded Redis or embedding API never stalls generation.
func (g *Guard) ShouldSkip(ctx context.Context, quoteText string, recentTexts []string) bool {
	if g.bloom != nil {
		seen, err := g.bloom.Seen(ctx, quoteText)
		if err != nil {
			g.log.Warn().Err(err).Msg("bloom check failed, accepting quote")
		} else if seen {
			g.log.Info().Msg("quote fingerprint already generated, skipping")
			return true
		}
	}

	if g.embed == nil || len(recentTexts) == 0 {
		return false
	}
	texts := append([]string{quoteText}, recentTexts...)
	vecs, err := g.embed.EmbedTexts(ctx, texts)
	if err != nil || len(vecs) != len(texts) {
		g.log.Warn().Err(err).Msg("embedding check failed, accepting quote")
		return false
	}
	candidate := vecs[0]
	for i, other := range vecs[1:] {
		if sim := Cosine(candidate, other); sim >= g.threshold {
			g.log.Info().
				Float64("similarity", sim).
				Int("recent_index", i).
				Msg("near-duplicate quote, skipping")
			return true
		}
	}
	return false
}

// Accept records the quote as generated for future exact-duplicate checks.
func (g *Guard) Accept(ctx context.Context, quoteText string) {
	if g.bloom == nil {
		return
	}
	if err := g.bloom.Remember(ctx, quoteText); err != nil {
		g.log.Warn().Err(err).Msg("bloom insert failed")
	}
}
