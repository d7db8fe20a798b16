package narration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wisdombot/logx"
	"wisdombot/types"
)

type fakeSynth struct {
	calls   []string
	failOn  string
	failErr error
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls = append(f.calls, text)
	if f.failOn != "" && text == f.failOn {
		return nil, f.failErr
	}
	return []byte("audio:" + text), nil
}

type fakeMix struct {
	placements []Placement
	totalMS    int
	called     bool
}

func (f *fakeMix) mix(placements []Placement, totalMS int, outPath string) error {
	f.called = true
	f.placements = placements
	f.totalMS = totalMS
	return os.WriteFile(outPath, []byte("narration"), 0o644)
}

// segmentDurations drives the fake prober: segment name -> seconds.
func fakeProber(durations map[string]float64) DurationProber {
	return func(path string) (float64, error) {
		for name, seconds := range durations {
			if strings.Contains(filepath.Base(path), name) {
				return seconds, nil
			}
		}
		return 0, fmt.Errorf("unexpected probe of %s", path)
	}
}

func newTestBuilder(t *testing.T, synth Synthesizer, durations map[string]float64) (*Builder, *fakeMix, string) {
	t.Helper()
	dir := t.TempDir()
	mix := &fakeMix{}
	b := &Builder{
		synth:    synth,
		prober:   fakeProber(durations),
		mixer:    mix.mix,
		audioDir: dir,
		log:      logx.WithComponent("narration"),
	}
	return b, mix, dir
}

func testContent() *types.QuoteContent {
	return &types.QuoteContent{
		QuoteID:    1,
		Text:       "The obstacle is the way.",
		AuthorName: "Marcus Aurelius",
		HookIntro:  "Listen to the timeless words of Marcus Aurelius.",
		Reflection: "What obstacle are you avoiding today?",
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildTimestampsFollowSilenceScheme(t *testing.T) {
	durations := map[string]float64{
		"hook":       2.0,
		"quote":      5.0,
		"author":     1.0,
		"reflection": 3.0,
	}
	b, mix, _ := newTestBuilder(t, &fakeSynth{}, durations)

	timeline, err := b.Build(context.Background(), testContent())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := []struct {
		name       string
		start, end float64
	}{
		{types.SegmentHook, 0.5, 2.5},
		{types.SegmentQuote, 3.7, 8.7},
		{types.SegmentAuthor, 9.5, 10.5},
		{types.SegmentReflection, 12.0, 15.0},
	}

	if len(timeline.Segments) != len(want) {
		t.Fatalf("timeline has %d segments; want %d", len(timeline.Segments), len(want))
	}
	for i, w := range want {
		got := timeline.Segments[i]
		if got.Name != w.name || !near(got.Start, w.start) || !near(got.End, w.end) {
			t.Fatalf("segment %d = %s [%.3f, %.3f]; want %s [%.3f, %.3f]",
				i, got.Name, got.Start, got.End, w.name, w.start, w.end)
		}
	}

	if !near(timeline.TotalDuration, 15.8) {
		t.Fatalf("total = %.3f; want 15.8", timeline.TotalDuration)
	}

	// Segments must be strictly ordered and non-overlapping.
	for i := 1; i < len(timeline.Segments); i++ {
		if timeline.Segments[i].Start < timeline.Segments[i-1].End {
			t.Fatalf("segment %d overlaps its predecessor", i)
		}
	}

	if mix.totalMS != 15800 {
		t.Fatalf("mixer total = %dms; want 15800", mix.totalMS)
	}
	if len(mix.placements) != 4 {
		t.Fatalf("mixer got %d placements; want 4", len(mix.placements))
	}
	if mix.placements[1].DelayMS != 3700 {
		t.Fatalf("quote delay = %dms; want 3700", mix.placements[1].DelayMS)
	}
}

func TestBuildEmptyReflectionKeepsTimelineConsistent(t *testing.T) {
	durations := map[string]float64{
		"hook":   2.0,
		"quote":  5.0,
		"author": 1.0,
	}
	synth := &fakeSynth{}
	b, mix, _ := newTestBuilder(t, synth, durations)

	content := testContent()
	content.Reflection = ""

	timeline, err := b.Build(context.Background(), content)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	reflection, ok := timeline.Segment(types.SegmentReflection)
	if !ok {
		t.Fatal("reflection segment missing from timeline")
	}
	if !near(reflection.Start, reflection.End) {
		t.Fatalf("empty reflection has width: [%.3f, %.3f]", reflection.Start, reflection.End)
	}
	if !near(reflection.Start, 12.0) {
		t.Fatalf("reflection anchor = %.3f; want 12.0", reflection.Start)
	}
	if timeline.Spoken(types.SegmentReflection) {
		t.Fatal("zero-width segment reported as spoken")
	}

	// Trailing silence still applies after the empty segment.
	if !near(timeline.TotalDuration, 12.8) {
		t.Fatalf("total = %.3f; want 12.8", timeline.TotalDuration)
	}

	if len(mix.placements) != 3 {
		t.Fatalf("mixer got %d placements; want 3 spoken segments", len(mix.placements))
	}
	for _, text := range synth.calls {
		if text == "" {
			t.Fatal("synthesizer called with empty text")
		}
	}
}

func TestBuildSynthesisFailureIsFatal(t *testing.T) {
	synth := &fakeSynth{
		failOn:  "The obstacle is the way.",
		failErr: fmt.Errorf("%w: backend offline", ErrSynthesisFailed),
	}
	b, mix, dir := newTestBuilder(t, synth, map[string]float64{"hook": 2.0})

	_, err := b.Build(context.Background(), testContent())
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("err = %v; want ErrSynthesisFailed", err)
	}
	if mix.called {
		t.Fatal("mixer ran despite synthesis failure")
	}

	// The already-written hook clip must be cleaned up on the failure path.
	leftovers, _ := filepath.Glob(filepath.Join(dir, "_tts_*.mp3"))
	if len(leftovers) != 0 {
		t.Fatalf("transient files left behind: %v", leftovers)
	}
}

func TestBuildRemovesTransientsOnSuccess(t *testing.T) {
	durations := map[string]float64{
		"hook":       2.0,
		"quote":      5.0,
		"author":     1.0,
		"reflection": 3.0,
	}
	b, _, dir := newTestBuilder(t, &fakeSynth{}, durations)

	timeline, err := b.Build(context.Background(), testContent())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read audio dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "narration.mp3" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("audio dir holds %v; want only narration.mp3", names)
	}
	if timeline.AudioPath != filepath.Join(dir, "narration.mp3") {
		t.Fatalf("audio path = %s", timeline.AudioPath)
	}
}
