// Package quotes loads the curated quote database with its philosopher
// metadata and prepares quotes for video generation.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"wisdombot/logx"
	"wisdombot/types"
)

type database struct {
	Quotes   []types.Quote `json:"quotes"`
	Metadata struct {
		Categories []string `json:"categories"`
	} `json:"metadata"`
}

type philosopherRecord struct {
	Key string `json:"key"`
	types.Philosopher
}

type philosopherFile struct {
	Philosophers []philosopherRecord `json:"philosophers"`
}

// Store holds the quote database in memory. Loaded once, read-only afterwards.
type Store struct {
	quotes       []types.Quote
	philosophers map[string]types.Philosopher
	categories   []string
	log          zerolog.Logger
}

// Open loads the quote database and, when present, the philosopher metadata
// file. A missing quotes file is fatal; missing philosopher metadata only
// degrades display names.
func Open(quotesPath, philosophersPath string) (*Store, error) {
	raw, err := os.ReadFile(quotesPath)
	if err != nil {
		return nil, fmt.Errorf("read quote database: %w", err)
	}
	var db database
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("parse quote database: %w", err)
	}

	s := &Store{
		quotes:       db.Quotes,
		philosophers: make(map[string]types.Philosopher),
		categories:   db.Metadata.Categories,
		log:          logx.WithComponent("quotes"),
	}

	if raw, err := os.ReadFile(philosophersPath); err == nil {
		var pf philosopherFile
		if err := json.Unmarshal(raw, &pf); err != nil {
			return nil, fmt.Errorf("parse philosopher metadata: %w", err)
		}
		for _, rec := range pf.Philosophers {
			s.philosophers[rec.Key] = rec.Philosopher
		}
	}

	s.log.Info().
		Int("quotes", len(s.quotes)).
		Int("philosophers", len(s.philosophers)).
		Msg("quote database loaded")
	return s, nil
}

// Len returns the number of quotes in the database.
func (s *Store) Len() int { return len(s.quotes) }

// ByIndex returns the quote at the zero-based position.
func (s *Store) ByIndex(i int) (types.Quote, bool) {
	if i < 0 || i >= len(s.quotes) {
		return types.Quote{}, false
	}
	return s.quotes[i], true
}

// ByID returns the quote with the given unique id.
func (s *Store) ByID(id int) (types.Quote, bool) {
	for _, q := range s.quotes {
		if q.ID == id {
			return q, true
		}
	}
	return types.Quote{}, false
}

// ByPhilosopher returns every quote from one philosopher key.
func (s *Store) ByPhilosopher(key string) []types.Quote {
	var out []types.Quote
	for _, q := range s.quotes {
		if q.Author == key {
			out = append(out, q)
		}
	}
	return out
}

// ByCategory returns every quote in one category.
func (s *Store) ByCategory(category string) []types.Quote {
	var out []types.Quote
	for _, q := range s.quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// Random returns a random quote, optionally filtered by philosopher key and
// category. Empty filters match everything; an empty pool is an error.
func (s *Store) Random(rnd *rand.Rand, philosopher, category string) (types.Quote, error) {
	pool := s.quotes
	if philosopher != "" || category != "" {
		pool = nil
		for _, q := range s.quotes {
			if philosopher != "" && q.Author != philosopher {
				continue
			}
			if category != "" && q.Category != category {
				continue
			}
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return types.Quote{}, fmt.Errorf("no quotes for philosopher=%q category=%q", philosopher, category)
	}
	return pool[rnd.Intn(len(pool))], nil
}

// Categories returns the category list from the database metadata.
func (s *Store) Categories() []string {
	return append([]string(nil), s.categories...)
}

// PhilosopherKeys returns every known philosopher key, sorted.
func (s *Store) PhilosopherKeys() []string {
	keys := make([]string, 0, len(s.philosophers))
	for k := range s.philosophers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Philosopher returns the metadata for a key.
func (s *Store) Philosopher(key string) (types.Philosopher, bool) {
	p, ok := s.philosophers[key]
	return p, ok
}

// PhilosopherName returns the display name for a key, falling back to the
// title-cased key when no metadata exists.
func (s *Store) PhilosopherName(key string) string {
	if p, ok := s.philosophers[key]; ok && p.Name != "" {
		return p.Name
	}
	return displayName(key)
}

func displayName(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Prepare assembles the full generation content for one quote: display fields
// plus the narrated hook intro and reflection.
func (s *Store) Prepare(ctx context.Context, q types.Quote, narrator Narrator) *types.QuoteContent {
	name := s.PhilosopherName(q.Author)
	category := q.Category
	if category == "" {
		category = "wisdom"
	}
	var meta *types.Philosopher
	if p, ok := s.philosophers[q.Author]; ok {
		meta = &p
	}
	return &types.QuoteContent{
		QuoteID:    q.ID,
		Text:       q.Text,
		AuthorKey:  q.Author,
		AuthorName: name,
		Source:     q.Source,
		Category:   category,
		WordCount:  len(strings.Fields(q.Text)),
		HookIntro:  narrator.Hook(ctx, name, meta),
		Reflection: narrator.Reflection(ctx, q.Text, category),
		Meta:       meta,
	}
}
