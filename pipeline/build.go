package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"wisdombot/archive"
	"wisdombot/background"
	"wisdombot/compose"
	"wisdombot/config"
	"wisdombot/dedup"
	"wisdombot/logx"
	"wisdombot/narration"
	"wisdombot/notify"
	"wisdombot/overlay"
	"wisdombot/progress"
	"wisdombot/quotes"
	"wisdombot/types"
	"wisdombot/uploader"
	"wisdombot/vision"
)

// App bundles a wired Generator with the stores callers talk to directly.
type App struct {
	Config    *config.Config
	Generator *Generator
	Library   *quotes.Store
	Progress  *progress.Store

	bloom *dedup.Bloom
}

// Build assembles the pipeline from configuration. The quote library and the
// progress store are required; every other service degrades with a warning
// instead of failing the boot. No Cohere key means template narration and
// exact-only dedup, no Pexels key means cache and local pool backgrounds
// only, no S3 bucket disables archiving, and missing YouTube credentials
// mean video-only runs. observe, when non-nil, receives every render state
// change.
func Build(ctx context.Context, cfg *config.Config, observe func(types.RenderState)) (*App, error) {
	log := logx.WithComponent("bootstrap")

	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}

	library, err := quotes.Open(cfg.QuotesPath, cfg.PhilosophersPath)
	if err != nil {
		return nil, fmt.Errorf("open quote library: %w", err)
	}

	store, err := progress.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, library.Len())
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}

	var narrator quotes.Narrator = quotes.NewTemplateNarrator(rand.New(rand.NewSource(time.Now().UnixNano())))
	if cfg.CohereAPIKey != "" {
		narrator = quotes.NewNarrator(cfg.CohereAPIKey, narrator)
	} else {
		log.Info().Msg("COHERE_API_KEY unset, narration uses templates only")
	}

	synth := narration.NewSpeechClient(cfg.TTSBaseURL, cfg.TTSAPIKey, narration.VoiceParams{
		Voice: cfg.TTSVoice,
		Rate:  cfg.TTSRate,
		Pitch: cfg.TTSPitch,
	})

	var provider background.Provider
	if cfg.PexelsAPIKey != "" {
		provider = background.NewPexelsClient(cfg.PexelsAPIKey)
	} else {
		log.Warn().Msg("PEXELS_API_KEY unset, remote stock search disabled")
	}
	acquirer := background.NewAcquirer(
		provider,
		background.NewClipCache(cfg.CacheDir, config.CacheMaxClips),
		background.NewClipFilter(vision.New(cfg.CascadePath)),
		cfg.BackgroundsDir,
	)

	style := config.DefaultStyle()
	composer := compose.NewCompositor(style, overlay.NewRenderer())

	var exact dedup.ExactFilter
	bloom, err := dedup.NewBloom(dedup.BloomConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("bloom filter unavailable, exact dedup disabled")
		bloom = nil
	} else {
		exact = bloom
	}
	var embed dedup.EmbeddingsProvider
	if cfg.CohereAPIKey != "" {
		embed = dedup.NewCohereEmbeddings(cfg.CohereAPIKey, "")
	}
	var guard *dedup.Guard
	if exact != nil || embed != nil {
		guard = dedup.NewGuard(exact, embed)
	}

	var archiver *archive.Client
	if cfg.S3Bucket != "" {
		archiver, err = archive.New(ctx, archive.Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			Prefix:       cfg.S3Prefix,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			log.Warn().Err(err).Msg("archive unavailable, continuing without S3")
			archiver = nil
		}
	}

	var yt *uploader.Client
	if cfg.SkipUpload {
		log.Info().Msg("uploads disabled by configuration")
	} else {
		yt, err = uploader.New(ctx, cfg.YouTubeCredentials, cfg.YouTubePrivacy)
		if err != nil {
			log.Warn().Err(err).Msg("YouTube uploader not initialized, running video-only")
			yt = nil
		}
	}

	tg := notify.New(cfg.TelegramBotToken, cfg.TelegramChatID)
	if !tg.Configured() {
		log.Info().Msg("TELEGRAM_BOT_TOKEN unset, upload notifications disabled")
	}

	gen := New(Deps{
		Config:   cfg,
		Style:    style,
		Library:  library,
		Progress: store,
		Narrator: narrator,
		Synth:    synth,
		Acquirer: acquirer,
		Composer: composer,
		Guard:    guard,
		Archive:  archiver,
		Uploader: yt,
		Notify:   tg,
		Observe:  observe,
	})

	log.Info().
		Int("quotes", library.Len()).
		Bool("remote_stock", provider != nil).
		Bool("dedup", guard != nil).
		Bool("archive", archiver != nil).
		Bool("upload", yt != nil).
		Bool("telegram", tg.Configured()).
		Msg("pipeline assembled")

	return &App{
		Config:    cfg,
		Generator: gen,
		Library:   library,
		Progress:  store,
		bloom:     bloom,
	}, nil
}

// Close releases the Redis connections held by the progress store and the
// bloom filter.
func (a *App) Close() error {
	var first error
	if a.bloom != nil {
		first = a.bloom.Close()
	}
	if err := a.Progress.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
