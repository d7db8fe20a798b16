// Package dedup guards batch generation against re-rendering quotes that are
// identical or near-identical to recent output.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wisdombot/types"
)

// BloomConfig configures the RedisBloom-backed exact-duplicate filter.
type BloomConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
	// Capacity and ErrorRate size the BF.RESERVE call for a fresh filter.
	Capacity  int
	ErrorRate float64
}

// Bloom tracks fingerprints of generated quotes in a RedisBloom filter.
type Bloom struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewBloom connects to Redis, verifies connectivity and reserves the filter
// when it does not exist yet. Reservation failure is tolerated: BF.ADD can
// auto-create the filter depending on the RedisBloom configuration.
func NewBloom(cfg BloomConfig) (*Bloom, error) {
	if cfg.Key == "" {
		cfg.Key = "wisdombot:quotes:bloom"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10000
	}
	if cfg.ErrorRate <= 0 {
		cfg.ErrorRate = 0.001
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	b := &Bloom{client: client, key: cfg.Key, ttl: cfg.TTL}

	exists, err := client.Exists(ctx, cfg.Key).Result()
	if err == nil && exists == 0 {
		client.Do(ctx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity)
	}
	return b, nil
}

// Close closes the underlying Redis client.
func (b *Bloom) Close() error {
	return b.client.Close()
}

// Seen reports whether the quote's fingerprint is already in the filter.
func (b *Bloom) Seen(ctx context.Context, quoteText string) (bool, error) {
	res, err := b.client.Do(ctx, "BF.EXISTS", b.key, types.Fingerprint(quoteText)).Result()
	if err != nil {
		return false, err
	}
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Remember inserts the fingerprint and refreshes the key TTL, so the filter
// stays alive for the full window past the most recent insert.
func (b *Bloom) Remember(ctx context.Context, quoteText string) error {
	if err := b.client.Do(ctx, "BF.ADD", b.key, types.Fingerprint(quoteText)).Err(); err != nil {
		return err
	}
	return b.client.Expire(ctx, b.key, b.ttl).Err()
}
