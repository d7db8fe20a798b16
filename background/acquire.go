package background

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"wisdombot/config"
	"wisdombot/logx"
	"wisdombot/media"
	"wisdombot/types"
)

// ErrNoBackground means every tier of the fallback chain came up empty,
// including the static local pool. The run cannot continue without it.
var ErrNoBackground = errors.New("no background available")

// Acquirer walks the fallback chain: occasionally reuse a cached download,
// otherwise search remote stock with distinct queries, then rescan the whole
// cache, and finally take an unfiltered clip from the static local pool.
type Acquirer struct {
	provider  Provider
	cache     *ClipCache
	filter    *ClipFilter
	poolDir   string
	queries   []string
	cacheProb float64
	rand      *rand.Rand
	probe     func(path string) (float64, error)
	log       zerolog.Logger
}

// NewAcquirer wires the chain. poolDir is the read-only static asset pool
// used as the last resort. A nil provider disables remote search entirely,
// leaving the cache and the pool.
func NewAcquirer(provider Provider, cache *ClipCache, filter *ClipFilter, poolDir string) *Acquirer {
	return &Acquirer{
		provider:  provider,
		cache:     cache,
		filter:    filter,
		poolDir:   poolDir,
		queries:   config.StockSearchQueries,
		cacheProb: config.CacheHitProbability,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		probe:     media.Duration,
		log:       logx.WithComponent("acquire"),
	}
}

// Acquire returns one usable background clip. Remote attempts are capped at
// a fixed number of distinct queries; only the terminal empty-pool case is
// an error.
func (a *Acquirer) Acquire(ctx context.Context) (*types.BackgroundAsset, error) {
	cached := a.cache.List()

	// Occasionally reuse a cached download to save API calls.
	if len(cached) > 0 && a.rand.Float64() < a.cacheProb {
		shuffled := append([]string(nil), cached...)
		a.rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		limit := len(shuffled)
		if limit > 3 {
			limit = 3
		}
		for _, path := range shuffled[:limit] {
			if !a.filter.HasPeople(path) {
				a.log.Info().Str("clip", filepath.Base(path)).Msg("using cached background")
				return a.asset(path, types.SourceRemoteCache, true), nil
			}
		}
	}

	if asset := a.acquireRemote(ctx); asset != nil {
		return asset, nil
	}

	// Every remote attempt exhausted; rescan the whole cache.
	for _, path := range cached {
		if !a.filter.HasPeople(path) {
			a.log.Warn().Str("clip", filepath.Base(path)).Msg("remote attempts failed, using cached fallback")
			return a.asset(path, types.SourceRemoteCache, true), nil
		}
	}

	// Last resort: unfiltered random clip from the static pool.
	pool, err := filepath.Glob(filepath.Join(a.poolDir, "*.mp4"))
	if err != nil || len(pool) == 0 {
		return nil, fmt.Errorf("%w: static pool %s is empty", ErrNoBackground, a.poolDir)
	}
	path := pool[a.rand.Intn(len(pool))]
	a.log.Warn().Str("clip", filepath.Base(path)).Msg("using unfiltered static pool background")
	return a.asset(path, types.SourceLocalPool, false), nil
}

// acquireRemote runs up to the attempt budget of fresh searches, each with a
// query not yet tried in this call. Accepted downloads trigger a cache prune
// that spares the new clip.
func (a *Acquirer) acquireRemote(ctx context.Context) *types.BackgroundAsset {
	if a.provider == nil {
		return nil
	}
	tried := make(map[string]bool, config.MaxRemoteAttempts)

	for attempt := 0; attempt < config.MaxRemoteAttempts; attempt++ {
		query := a.pickQuery(tried)
		if query == "" {
			break
		}
		tried[query] = true
		a.log.Info().Str("query", query).Msg("searching stock footage")

		candidate, err := a.provider.Search(ctx, query)
		if err != nil {
			a.log.Warn().Err(err).Str("query", query).Msg("search failed")
			continue
		}
		if candidate == nil {
			continue
		}

		path, err := a.provider.Download(ctx, candidate, a.cache.Dir())
		if err != nil {
			a.log.Warn().Err(err).Int("candidate", candidate.ID).Msg("download failed")
			continue
		}

		if a.filter.HasPeople(path) {
			os.Remove(path)
			continue
		}

		a.cache.Prune(path)
		return a.asset(path, types.SourceRemoteFresh, true)
	}
	return nil
}

func (a *Acquirer) pickQuery(tried map[string]bool) string {
	available := make([]string, 0, len(a.queries))
	for _, q := range a.queries {
		if !tried[q] {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		return ""
	}
	return available[a.rand.Intn(len(available))]
}

func (a *Acquirer) asset(path string, source types.BackgroundSource, filtered bool) *types.BackgroundAsset {
	duration, err := a.probe(path)
	if err != nil {
		a.log.Debug().Err(err).Str("clip", filepath.Base(path)).Msg("could not probe clip duration")
	}
	return &types.BackgroundAsset{
		Path:         path,
		Source:       source,
		Duration:     duration,
		PassedFilter: filtered,
	}
}
