// Package pipeline runs the end-to-end generation flow: pick the next quote,
// narrate it, prepare a background, composite the video and persist the run.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wisdombot/archive"
	"wisdombot/background"
	"wisdombot/compose"
	"wisdombot/config"
	"wisdombot/dedup"
	"wisdombot/logx"
	"wisdombot/narration"
	"wisdombot/notify"
	"wisdombot/progress"
	"wisdombot/quotes"
	"wisdombot/types"
	"wisdombot/uploader"
)

// Deps carries the wired services a Generator needs. Guard, Archive and
// Uploader are optional; a nil value disables that stage.
type Deps struct {
	Config   *config.Config
	Style    config.Style
	Library  *quotes.Store
	Progress *progress.Store
	Narrator quotes.Narrator
	Synth    narration.Synthesizer
	Acquirer *background.Acquirer
	Composer *compose.Compositor
	Guard    *dedup.Guard
	Archive  *archive.Client
	Uploader *uploader.Client
	Notify   *notify.Notifier

	// Observe, when set, receives the lifecycle state as a run moves
	// through its stages. The render daemon feeds this to its status API.
	Observe func(types.RenderState)
}

// Generator owns one full render pipeline. Safe for sequential reuse; not
// for concurrent Runs, which would contend on the shared position counter.
type Generator struct {
	cfg      *config.Config
	style    config.Style
	library  *quotes.Store
	progress *progress.Store
	narrator quotes.Narrator
	synth    narration.Synthesizer
	acquirer *background.Acquirer
	composer *compose.Compositor
	guard    *dedup.Guard
	archiver *archive.Client
	yt       *uploader.Client
	tg       *notify.Notifier
	notify   func(types.RenderState)
	rnd      *rand.Rand
	log      zerolog.Logger
}

func New(d Deps) *Generator {
	return &Generator{
		cfg:      d.Config,
		style:    d.Style,
		library:  d.Library,
		progress: d.Progress,
		narrator: d.Narrator,
		synth:    d.Synth,
		acquirer: d.Acquirer,
		composer: d.Composer,
		guard:    d.Guard,
		archiver: d.Archive,
		yt:       d.Uploader,
		tg:       d.Notify,
		notify:   d.Observe,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      logx.WithComponent("pipeline"),
	}
}

func (g *Generator) observe(s types.RenderState) {
	if g.notify != nil {
		g.notify(s)
	}
}

// RunOptions control one generation run. Setting Philosopher or Category
// draws a random matching quote instead of the sequential next one, and the
// position counter is left untouched.
type RunOptions struct {
	Philosopher string
	Category    string
	Upload      bool
	PrivateTest bool
}

func (o RunOptions) sequential() bool {
	return o.Philosopher == "" && o.Category == ""
}

// Result summarizes one completed run. Skipped means the duplicate guard
// rejected the quote before any rendering happened.
type Result struct {
	QuoteID    int
	AuthorName string
	Category   string
	QuoteText  string
	VideoPath  string
	Thumbnail  string
	Duration   float64
	ArchiveKey string
	YouTubeID  string
	Skipped    bool
}

// Run executes one generation. On upload failure the returned Result still
// describes the rendered video; everything up to the upload has already been
// persisted.
func (g *Generator) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	g.observe(types.StateSelecting)
	quote, err := g.nextQuote(ctx, opts)
	if err != nil {
		return nil, err
	}

	if g.guard != nil && g.guard.ShouldSkip(ctx, quote.Text, g.recentTexts(ctx)) {
		g.log.Info().Int("quote_id", quote.ID).Msg("duplicate quote skipped")
		if opts.sequential() {
			// Move past the duplicate or the next run picks it again.
			if _, err := g.progress.Advance(ctx); err != nil {
				g.log.Warn().Err(err).Msg("position advance failed")
			}
		}
		return &Result{QuoteID: quote.ID, Category: quote.Category, QuoteText: quote.Text, Skipped: true}, nil
	}

	content := g.library.Prepare(ctx, quote, g.narrator)

	g.log.Info().
		Int("quote_id", content.QuoteID).
		Str("author", content.AuthorName).
		Str("category", content.Category).
		Int("words", content.WordCount).
		Msg("generating video")

	workDir, err := os.MkdirTemp(g.cfg.OutputDir, "run_")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	g.observe(types.StateNarrating)
	tl, err := narration.NewBuilder(g.synth, workDir).Build(ctx, content)
	if err != nil {
		return nil, err
	}
	total := compose.TotalDuration(tl.TotalDuration)

	g.observe(types.StateAcquiring)
	asset, err := g.acquirer.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	bg, err := background.Prepare(asset.Path, workDir, total, g.style, g.cfg.EnableKenBurns)
	if err != nil {
		return nil, err
	}

	ambient := compose.PickAmbient(g.cfg.AmbientDir, g.rnd)
	track := compose.BuildAudioTrack(tl.AudioPath, ambient, total, g.style, filepath.Join(workDir, "mixed.mp3"))

	g.observe(types.StateComposing)
	outPath := filepath.Join(g.cfg.VideosDir, compose.OutputName(content.QuoteID, content.AuthorKey))
	artifact, err := g.composer.Compose(compose.Request{
		Background: bg,
		AudioPath:  track,
		Timeline:   tl,
		Content:    content,
		Total:      total,
		WorkDir:    workDir,
		OutputPath: outPath,
	})
	if err != nil {
		return nil, err
	}

	thumbPath := g.writeThumbnail(artifact.Path, tl)
	g.keepNarration(tl, content.QuoteID)

	if err := g.progress.RecordRender(ctx, progress.Record{
		QuoteID:     content.QuoteID,
		Philosopher: content.AuthorKey,
		Category:    content.Category,
		QuoteText:   content.Text,
		VideoPath:   artifact.Path,
		Duration:    artifact.Duration,
	}); err != nil {
		g.log.Warn().Err(err).Msg("history record failed")
	}

	if g.guard != nil {
		g.guard.Accept(ctx, content.Text)
	}

	if opts.sequential() {
		if _, err := g.progress.Advance(ctx); err != nil {
			g.log.Warn().Err(err).Msg("position advance failed")
		}
	}

	res := &Result{
		QuoteID:    content.QuoteID,
		AuthorName: content.AuthorName,
		Category:   content.Category,
		QuoteText:  content.Text,
		VideoPath:  artifact.Path,
		Thumbnail:  thumbPath,
		Duration:   artifact.Duration,
	}

	if g.archiver != nil {
		key, err := g.archiver.ArchiveRender(ctx, artifact, content, tl)
		if err != nil {
			g.log.Warn().Err(err).Msg("archive upload failed")
		} else {
			res.ArchiveKey = key
		}
	}

	if opts.Upload && g.yt != nil {
		g.observe(types.StateUploading)
		meta := uploader.BuildMetadata(g.rnd, content)
		var videoID string
		if opts.PrivateTest {
			videoID, err = g.yt.UploadPrivate(ctx, artifact.Path, meta)
		} else {
			videoID, err = g.yt.Upload(ctx, artifact.Path, meta)
		}
		if err != nil {
			g.tg.UploadFailed(ctx, err.Error())
			return res, fmt.Errorf("upload: %w", err)
		}
		res.YouTubeID = videoID
		if err := g.progress.MarkUploaded(ctx, content.QuoteID, videoID); err != nil {
			g.log.Warn().Err(err).Msg("history upload mark failed")
		}
		g.tg.UploadSucceeded(ctx, "https://youtube.com/shorts/"+videoID)
	}

	g.log.Info().
		Str("video", filepath.Base(res.VideoPath)).
		Float64("duration", res.Duration).
		Msg("run complete")
	return res, nil
}

// Batch runs count generations back to back with a fixed pause between
// them. A failed run is logged and the batch continues; renders that
// completed before an upload failure are still collected.
func (g *Generator) Batch(ctx context.Context, count int, opts RunOptions) []*Result {
	results := make([]*Result, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				g.log.Warn().Int("completed", len(results)).Msg("batch interrupted")
				return results
			case <-time.After(config.BatchDelay):
			}
		}

		g.log.Info().Int("video", i+1).Int("of", count).Msg("batch item")
		res, err := g.Run(ctx, opts)
		if err != nil {
			g.log.Error().Err(err).Int("video", i+1).Msg("batch item failed")
			if res == nil {
				continue
			}
		}
		results = append(results, res)
	}
	return results
}

// nextQuote resolves which quote this run renders: a filtered random draw, or
// the sequential next at the stored position.
func (g *Generator) nextQuote(ctx context.Context, opts RunOptions) (types.Quote, error) {
	if !opts.sequential() {
		return g.library.Random(g.rnd, opts.Philosopher, opts.Category)
	}

	idx, err := g.progress.Position(ctx)
	if err != nil {
		return types.Quote{}, fmt.Errorf("read position: %w", err)
	}
	q, ok := g.library.ByIndex(idx)
	if !ok {
		return types.Quote{}, fmt.Errorf("position %d out of range", idx)
	}
	return q, nil
}

// recentTexts returns the quote texts from recent history for the semantic
// duplicate check. History trouble degrades to exact-match-only dedup.
func (g *Generator) recentTexts(ctx context.Context) []string {
	records, err := g.progress.History(ctx, 20)
	if err != nil {
		g.log.Warn().Err(err).Msg("history fetch for dedup failed")
		return nil
	}
	texts := make([]string, 0, len(records))
	for _, r := range records {
		if r.QuoteText != "" {
			texts = append(texts, r.QuoteText)
		}
	}
	return texts
}

// writeThumbnail extracts the poster frame next to the video. Failure is
// tolerated; the video stands on its own.
func (g *Generator) writeThumbnail(videoPath string, tl *types.NarrationTimeline) string {
	name := strings.TrimSuffix(filepath.Base(videoPath), ".mp4") + ".jpg"
	thumbPath := filepath.Join(g.cfg.ThumbnailsDir, name)
	if err := compose.Thumbnail(videoPath, tl, thumbPath); err != nil {
		g.log.Warn().Err(err).Msg("thumbnail extraction failed")
		return ""
	}
	return thumbPath
}

// keepNarration moves the assembled narration from the scratch dir into the
// audio output dir so the spoken track survives the run.
func (g *Generator) keepNarration(tl *types.NarrationTimeline, quoteID int) {
	kept := filepath.Join(g.cfg.AudioDir, fmt.Sprintf("quote_%d_tts.mp3", quoteID))
	if err := os.Rename(tl.AudioPath, kept); err != nil {
		g.log.Warn().Err(err).Msg("narration keep failed")
		return
	}
	tl.AudioPath = kept
}
