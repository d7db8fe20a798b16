package compose

import (
	"math"
	"testing"

	"wisdombot/config"
	"wisdombot/types"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func timelineWith(hook, quote, author, reflection [2]float64) *types.NarrationTimeline {
	return &types.NarrationTimeline{
		TotalDuration: reflection[1] + 0.8,
		Segments: []types.Segment{
			{Name: types.SegmentHook, Start: hook[0], End: hook[1]},
			{Name: types.SegmentQuote, Start: quote[0], End: quote[1]},
			{Name: types.SegmentAuthor, Start: author[0], End: author[1]},
			{Name: types.SegmentReflection, Start: reflection[0], End: reflection[1]},
		},
	}
}

func windowFor(t *testing.T, windows []Window, kind LayerKind) Window {
	t.Helper()
	for _, w := range windows {
		if w.Kind == kind {
			return w
		}
	}
	t.Fatalf("no %s window in %v", kind, windows)
	return Window{}
}

func hasWindow(windows []Window, kind LayerKind) bool {
	for _, w := range windows {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func TestTotalDuration(t *testing.T) {
	tests := []struct {
		name      string
		narration float64
		want      float64
	}{
		{"short narration padded to floor", 20.0, 30.0},
		{"tail lands exactly on floor", 26.0, 30.0},
		{"mid-range keeps full tail", 40.0, 44.0},
		{"tail clipped at ceiling", 55.0, 58.0},
		{"long narration capped", 90.0, 58.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalDuration(tt.narration); !near(got, tt.want) {
				t.Fatalf("TotalDuration(%v) = %v, want %v", tt.narration, got, tt.want)
			}
		})
	}
}

func TestOverlayWindowsSchedule(t *testing.T) {
	style := config.DefaultStyle()
	tl := timelineWith(
		[2]float64{0.5, 2.5},
		[2]float64{3.7, 8.7},
		[2]float64{9.5, 10.5},
		[2]float64{12.0, 15.0},
	)
	total := TotalDuration(15.8)
	if !near(total, 30.0) {
		t.Fatalf("total = %v, want 30", total)
	}

	windows := OverlayWindows(tl, total, style)

	wantOrder := []LayerKind{LayerHook, LayerQuote, LayerDivider, LayerAuthor, LayerReflection, LayerCTA, LayerBranding}
	if len(windows) != len(wantOrder) {
		t.Fatalf("got %d windows, want %d: %v", len(windows), len(wantOrder), windows)
	}
	for i, kind := range wantOrder {
		if windows[i].Kind != kind {
			t.Fatalf("window %d = %s, want %s", i, windows[i].Kind, kind)
		}
	}

	tests := []struct {
		kind            LayerKind
		start, end      float64
		fadeIn, fadeOut float64
	}{
		{LayerHook, 0.2, 3.5, 0.8, 0.5},
		{LayerQuote, 3.5, 12.0, 0.8, 0.8},
		{LayerDivider, 3.5, 12.0, 1.1, 0.8},
		{LayerAuthor, 9.4, 12.0, 1.0, 0.8},
		{LayerReflection, 11.7, 16.5, 0.8, 0.8},
		{LayerCTA, 26.0, 30.0, 0.8, 0},
		{LayerBranding, 0, 30.0, 1.3, 0},
	}
	for _, tt := range tests {
		w := windowFor(t, windows, tt.kind)
		if !near(w.Start, tt.start) || !near(w.End, tt.end) {
			t.Fatalf("%s window [%v, %v], want [%v, %v]", tt.kind, w.Start, w.End, tt.start, tt.end)
		}
		if !near(w.FadeIn, tt.fadeIn) || !near(w.FadeOut, tt.fadeOut) {
			t.Fatalf("%s fades in %v out %v, want in %v out %v", tt.kind, w.FadeIn, w.FadeOut, tt.fadeIn, tt.fadeOut)
		}
	}
}

func TestOverlayWindowsClampToFrame(t *testing.T) {
	style := config.DefaultStyle()
	tl := timelineWith(
		[2]float64{0.1, 1.0},
		[2]float64{2.0, 20.0},
		[2]float64{21.0, 22.0},
		[2]float64{24.0, 29.5},
	)

	windows := OverlayWindows(tl, 30.0, style)

	if w := windowFor(t, windows, LayerHook); !near(w.Start, 0) {
		t.Fatalf("hook start = %v, want clamped to 0", w.Start)
	}
	if w := windowFor(t, windows, LayerReflection); !near(w.End, 30.0) {
		t.Fatalf("reflection end = %v, want clamped to 30", w.End)
	}
}

func TestOverlayWindowsCTASuppression(t *testing.T) {
	style := config.DefaultStyle()

	t.Run("late reflection squeezes it out", func(t *testing.T) {
		tl := timelineWith(
			[2]float64{0.5, 2.5},
			[2]float64{3.7, 8.7},
			[2]float64{9.5, 10.5},
			[2]float64{12.0, 29.5},
		)
		windows := OverlayWindows(tl, 30.0, style)
		if hasWindow(windows, LayerCTA) {
			t.Fatalf("CTA window survived with no room: %v", windows)
		}
	})

	t.Run("exactly one second is kept", func(t *testing.T) {
		tl := timelineWith(
			[2]float64{0.5, 2.5},
			[2]float64{3.7, 8.7},
			[2]float64{9.5, 10.5},
			[2]float64{12.0, 28.5},
		)
		windows := OverlayWindows(tl, 30.0, style)
		w := windowFor(t, windows, LayerCTA)
		if !near(w.Start, 29.0) || !near(w.End, 30.0) {
			t.Fatalf("CTA window [%v, %v], want [29, 30]", w.Start, w.End)
		}
		if w.FadeOut != 0 {
			t.Fatalf("CTA fade-out = %v, want none", w.FadeOut)
		}
	})
}

func TestOverlayWindowsSkipUnspokenSegments(t *testing.T) {
	style := config.DefaultStyle()

	t.Run("empty reflection", func(t *testing.T) {
		tl := timelineWith(
			[2]float64{0.5, 2.5},
			[2]float64{3.7, 8.7},
			[2]float64{9.5, 10.5},
			[2]float64{12.0, 12.0},
		)
		windows := OverlayWindows(tl, 30.0, style)
		if hasWindow(windows, LayerReflection) {
			t.Fatalf("reflection window for empty segment: %v", windows)
		}
		// CTA anchors on the raw reflection end, which falls before the tail.
		if w := windowFor(t, windows, LayerCTA); !near(w.Start, 26.0) {
			t.Fatalf("CTA start = %v, want 26", w.Start)
		}
	})

	t.Run("empty hook", func(t *testing.T) {
		tl := timelineWith(
			[2]float64{0.5, 0.5},
			[2]float64{1.7, 6.7},
			[2]float64{7.5, 8.5},
			[2]float64{10.0, 13.0},
		)
		windows := OverlayWindows(tl, 30.0, style)
		if hasWindow(windows, LayerHook) {
			t.Fatalf("hook window for empty segment: %v", windows)
		}
		if windows[0].Kind != LayerQuote {
			t.Fatalf("first window = %s, want quote", windows[0].Kind)
		}
	})
}

func TestOverlayWindowsAuthorEndAdjustment(t *testing.T) {
	style := config.DefaultStyle()
	// Author segment stuck before the quote start cannot anchor the shared
	// window end; it is parked three seconds past the quote start instead.
	tl := &types.NarrationTimeline{
		TotalDuration: 10.0,
		Segments: []types.Segment{
			{Name: types.SegmentHook, Start: 0.5, End: 0.5},
			{Name: types.SegmentQuote, Start: 3.0, End: 6.0},
			{Name: types.SegmentAuthor, Start: 2.0, End: 2.5},
			{Name: types.SegmentReflection, Start: 8.0, End: 8.0},
		},
	}

	windows := OverlayWindows(tl, 30.0, style)

	quote := windowFor(t, windows, LayerQuote)
	author := windowFor(t, windows, LayerAuthor)
	if !near(quote.End, 7.5) {
		t.Fatalf("quote end = %v, want 7.5 (quote start + 3 + linger)", quote.End)
	}
	if !near(author.End, 7.5) {
		t.Fatalf("author end = %v, want 7.5", author.End)
	}
	if !near(author.Start, 1.9) {
		t.Fatalf("author start = %v, want 1.9", author.Start)
	}
}
