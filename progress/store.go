// Package progress tracks the sequential position in the quote database and
// the generation history, backed by Redis.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"wisdombot/logx"
)

const (
	positionKey = "wisdombot:position"
	historyKey  = "wisdombot:history"

	// historyMax bounds the history list; older records are trimmed away.
	historyMax = 200

	connectTimeout = 5 * time.Second

	// quoteTextMax truncates stored quote text.
	quoteTextMax = 200
)

// History record statuses.
const (
	StatusGenerated = "generated"
	StatusUploaded  = "uploaded"
)

// Record is one generation history entry, stored newest first.
type Record struct {
	QuoteID     int        `json:"quote_id"`
	Philosopher string     `json:"philosopher"`
	Category    string     `json:"category"`
	QuoteText   string     `json:"quote_text"`
	VideoPath   string     `json:"video_path"`
	Duration    float64    `json:"duration_seconds"`
	Status      string     `json:"status"`
	YouTubeID   string     `json:"youtube_id,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`
}

// Stats summarizes the run position and history counts.
type Stats struct {
	CurrentIndex    int            `json:"current_index"`
	TotalQuotes     int            `json:"total_quotes"`
	PercentComplete float64        `json:"percent_complete"`
	TotalGenerated  int            `json:"total_generated"`
	TotalUploaded   int            `json:"total_uploaded"`
	ByPhilosopher   map[string]int `json:"philosopher_breakdown"`
}

// Store persists position and history in Redis. total is the quote count used
// for wraparound and bounds checks.
type Store struct {
	client *redis.Client
	total  int
	log    zerolog.Logger
}

// Open connects to Redis and verifies connectivity.
func Open(addr, password string, db, total int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &Store{client: client, total: total, log: logx.WithComponent("progress")}, nil
}

func (s *Store) Close() error { return s.client.Close() }

// Position returns the current zero-based index. Unset, negative or
// out-of-range values all read as zero.
func (s *Store) Position(ctx context.Context) (int, error) {
	val, err := s.client.Get(ctx, positionKey).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read position: %w", err)
	}
	if val < 0 || (s.total > 0 && val >= s.total) {
		return 0, nil
	}
	return val, nil
}

// Advance moves to the next index, wrapping to zero past the end, and
// returns the new value.
func (s *Store) Advance(ctx context.Context) (int, error) {
	current, err := s.Position(ctx)
	if err != nil {
		return 0, err
	}
	next := current + 1
	if s.total > 0 && next >= s.total {
		next = 0
		s.log.Info().Msg("quote database complete, wrapping to beginning")
	}
	if err := s.client.Set(ctx, positionKey, next, 0).Err(); err != nil {
		return 0, fmt.Errorf("advance position: %w", err)
	}
	s.log.Debug().Int("index", next).Msg("position advanced")
	return next, nil
}

// SetPosition pins the current index. Out-of-range values are rejected.
func (s *Store) SetPosition(ctx context.Context, index int) error {
	if index < 0 || index >= s.total {
		return fmt.Errorf("index %d out of range [0, %d)", index, s.total)
	}
	if err := s.client.Set(ctx, positionKey, index, 0).Err(); err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	s.log.Info().Int("index", index).Msg("position set")
	return nil
}

// RecordRender appends a generation record. Missing status and timestamp are
// filled in; quote text is truncated for storage.
func (s *Store) RecordRender(ctx context.Context, r Record) error {
	if len(r.QuoteText) > quoteTextMax {
		r.QuoteText = r.QuoteText[:quoteTextMax]
	}
	if r.Status == "" {
		r.Status = StatusGenerated
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	if err := s.client.LPush(ctx, historyKey, raw).Err(); err != nil {
		return fmt.Errorf("push history record: %w", err)
	}
	if err := s.client.LTrim(ctx, historyKey, 0, historyMax-1).Err(); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	s.log.Info().Int("quote_id", r.QuoteID).Str("video", r.VideoPath).Msg("render recorded")
	return nil
}

// MarkUploaded stamps the most recent generated record for the quote with
// the YouTube id and flips its status.
func (s *Store) MarkUploaded(ctx context.Context, quoteID int, youtubeID string) error {
	entries, err := s.client.LRange(ctx, historyKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	for i, raw := range entries {
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			continue
		}
		if r.QuoteID != quoteID || r.Status == StatusUploaded {
			continue
		}
		now := time.Now().UTC()
		r.YouTubeID = youtubeID
		r.Status = StatusUploaded
		r.UploadedAt = &now
		updated, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode history record: %w", err)
		}
		if err := s.client.LSet(ctx, historyKey, int64(i), updated).Err(); err != nil {
			return fmt.Errorf("update history record: %w", err)
		}
		s.log.Info().Int("quote_id", quoteID).Str("youtube_id", youtubeID).Msg("upload recorded")
		return nil
	}
	return fmt.Errorf("no generated record for quote %d", quoteID)
}

// History returns the most recent records, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.client.LRange(ctx, historyKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	records := make([]Record, 0, len(entries))
	for _, raw := range entries {
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			s.log.Warn().Err(err).Msg("skipping malformed history record")
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// Stats summarizes progress and history.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	pos, err := s.Position(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.History(ctx, historyMax)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		CurrentIndex:  pos,
		TotalQuotes:   s.total,
		ByPhilosopher: make(map[string]int),
	}
	if s.total > 0 {
		percent := float64(pos) / float64(s.total) * 100
		st.PercentComplete = math.Round(percent*10) / 10
	}
	st.TotalGenerated = len(records)
	for _, r := range records {
		if r.Status == StatusUploaded {
			st.TotalUploaded++
		}
		st.ByPhilosopher[r.Philosopher]++
	}
	return st, nil
}
