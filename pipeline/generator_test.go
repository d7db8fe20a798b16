package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"wisdombot/background"
	"wisdombot/compose"
	"wisdombot/config"
	"wisdombot/dedup"
	"wisdombot/narration"
	"wisdombot/overlay"
	"wisdombot/progress"
	"wisdombot/quotes"
	"wisdombot/types"
)

const quotesJSON = `{
  "quotes": [
    {"id": 1, "text": "You have power over your mind, not outside events.", "author": "marcus_aurelius", "category": "mindfulness"},
    {"id": 2, "text": "We suffer more often in imagination than in reality.", "author": "seneca", "category": "resilience"},
    {"id": 7, "text": "Man conquers the world by conquering himself.", "author": "zeno_of_citium", "category": "discipline"}
  ]
}`

type failingSynth struct{ err error }

func (s failingSynth) Synthesize(context.Context, string) ([]byte, error) {
	return nil, s.err
}

// seenAllFilter marks every quote as an exact duplicate.
type seenAllFilter struct{}

func (seenAllFilter) Seen(context.Context, string) (bool, error) { return true, nil }
func (seenAllFilter) Remember(context.Context, string) error     { return nil }

type testEnv struct {
	gen      *Generator
	progress *progress.Store
	cfg      *config.Config
}

func newTestEnv(t *testing.T, guard *dedup.Guard, synth narration.Synthesizer) *testEnv {
	t.Helper()

	dir := t.TempDir()
	quotesPath := filepath.Join(dir, "quotes_database.json")
	if err := os.WriteFile(quotesPath, []byte(quotesJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	library, err := quotes.Open(quotesPath, filepath.Join(dir, "philosophers.json"))
	if err != nil {
		t.Fatalf("open quotes: %v", err)
	}

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := progress.Open(mr.Addr(), "", 0, library.Len())
	if err != nil {
		t.Fatalf("open progress: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		AssetsDir:      filepath.Join(dir, "assets"),
		FontsDir:       filepath.Join(dir, "assets", "fonts"),
		BackgroundsDir: filepath.Join(dir, "assets", "backgrounds"),
		AmbientDir:     filepath.Join(dir, "assets", "ambient"),
		CacheDir:       filepath.Join(dir, "assets", "stock_cache"),
		OutputDir:      filepath.Join(dir, "outputs"),
		VideosDir:      filepath.Join(dir, "outputs", "videos"),
		AudioDir:       filepath.Join(dir, "outputs", "audio"),
		ThumbnailsDir:  filepath.Join(dir, "outputs", "thumbnails"),
	}
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	style := config.DefaultStyle()
	gen := New(Deps{
		Config:   cfg,
		Style:    style,
		Library:  library,
		Progress: store,
		Narrator: quotes.NewTemplateNarrator(rand.New(rand.NewSource(1))),
		Synth:    synth,
		Acquirer: background.NewAcquirer(nil, background.NewClipCache(cfg.CacheDir, 4), background.NewClipFilter(nil), cfg.BackgroundsDir),
		Composer: compose.NewCompositor(style, overlay.NewRenderer()),
		Guard:    guard,
	})

	return &testEnv{gen: gen, progress: store, cfg: cfg}
}

func TestRunSkipsDuplicateAndAdvances(t *testing.T) {
	env := newTestEnv(t, dedup.NewGuard(seenAllFilter{}, nil), failingSynth{err: narration.ErrSynthesisFailed})
	ctx := context.Background()

	res, err := env.gen.Run(ctx, RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Skipped {
		t.Fatal("expected duplicate skip")
	}
	if res.QuoteID != 1 {
		t.Fatalf("skipped quote id = %d, want 1", res.QuoteID)
	}

	pos, err := env.progress.Position(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 1 {
		t.Fatalf("position = %d, want 1 after sequential skip", pos)
	}
}

func TestRunFilteredSkipLeavesPosition(t *testing.T) {
	env := newTestEnv(t, dedup.NewGuard(seenAllFilter{}, nil), failingSynth{err: narration.ErrSynthesisFailed})
	ctx := context.Background()

	res, err := env.gen.Run(ctx, RunOptions{Category: "discipline"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Skipped {
		t.Fatal("expected duplicate skip")
	}

	pos, err := env.progress.Position(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 0 {
		t.Fatalf("position = %d, want 0 after filtered skip", pos)
	}
}

func TestRunSynthesisFailureStopsRun(t *testing.T) {
	env := newTestEnv(t, nil, failingSynth{err: narration.ErrSynthesisFailed})
	ctx := context.Background()

	res, err := env.gen.Run(ctx, RunOptions{})
	if err == nil {
		t.Fatal("expected synthesis failure to abort the run")
	}
	if !errors.Is(err, narration.ErrSynthesisFailed) {
		t.Fatalf("err = %v, want wrapped synthesis failure", err)
	}
	if res != nil {
		t.Fatalf("result = %+v, want nil on aborted run", res)
	}

	if pos, _ := env.progress.Position(ctx); pos != 0 {
		t.Fatalf("position = %d, failed run must not advance", pos)
	}
	history, err := env.progress.History(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Fatalf("history has %d records, failed run must not record", len(history))
	}

	scratch, err := filepath.Glob(filepath.Join(env.cfg.OutputDir, "run_*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(scratch) != 0 {
		t.Fatalf("work dirs left behind: %v", scratch)
	}
}

func TestNextQuoteSequentialFollowsPosition(t *testing.T) {
	env := newTestEnv(t, nil, failingSynth{err: narration.ErrSynthesisFailed})
	ctx := context.Background()

	if err := env.progress.SetPosition(ctx, 2); err != nil {
		t.Fatal(err)
	}
	q, err := env.gen.nextQuote(ctx, RunOptions{})
	if err != nil {
		t.Fatalf("nextQuote: %v", err)
	}
	if q.ID != 7 {
		t.Fatalf("quote id = %d, want 7 at position 2", q.ID)
	}
}

func TestNextQuoteFilteredDraw(t *testing.T) {
	env := newTestEnv(t, nil, failingSynth{err: narration.ErrSynthesisFailed})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		q, err := env.gen.nextQuote(ctx, RunOptions{Philosopher: "seneca"})
		if err != nil {
			t.Fatalf("nextQuote: %v", err)
		}
		if q.Author != "seneca" {
			t.Fatalf("draw %d returned author %q, want seneca", i, q.Author)
		}
	}
}

func TestRunObservesLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, failingSynth{err: narration.ErrSynthesisFailed})

	var seen []types.RenderState
	env.gen.notify = func(s types.RenderState) { seen = append(seen, s) }

	if _, err := env.gen.Run(context.Background(), RunOptions{}); err == nil {
		t.Fatal("expected run to fail at narration")
	}

	want := []types.RenderState{types.StateSelecting, types.StateNarrating}
	if len(seen) != len(want) {
		t.Fatalf("observed states %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("observed states %v, want %v", seen, want)
		}
	}
}

func TestRecentTextsSkipsEmpty(t *testing.T) {
	env := newTestEnv(t, nil, failingSynth{err: narration.ErrSynthesisFailed})
	ctx := context.Background()

	if err := env.progress.RecordRender(ctx, progress.Record{QuoteID: 1, QuoteText: "alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := env.progress.RecordRender(ctx, progress.Record{QuoteID: 2}); err != nil {
		t.Fatal(err)
	}

	texts := env.gen.recentTexts(ctx)
	if len(texts) != 1 || texts[0] != "alpha" {
		t.Fatalf("recentTexts = %v, want [alpha]", texts)
	}
}
