package dedup

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeFilter struct {
	seen       bool
	seenErr    error
	remembered []string
}

func (f *fakeFilter) Seen(_ context.Context, _ string) (bool, error) {
	return f.seen, f.seenErr
}

func (f *fakeFilter) Remember(_ context.Context, text string) error {
	f.remembered = append(f.remembered, text)
	return nil
}

type fakeEmbedder struct {
	vecs  map[string][]float32
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vecs[text]
	}
	return out, nil
}

func TestShouldSkipExactDuplicate(t *testing.T) {
	embed := &fakeEmbedder{}
	g := NewGuard(&fakeFilter{seen: true}, embed)

	if !g.ShouldSkip(context.Background(), "some quote", []string{"other"}) {
		t.Fatal("exact duplicate not skipped")
	}
	if embed.calls != 0 {
		t.Fatalf("embedder called %d times for an exact duplicate", embed.calls)
	}
}

func TestShouldSkipNearDuplicate(t *testing.T) {
	embed := &fakeEmbedder{vecs: map[string][]float32{
		"candidate": {1, 0},
		"close":     {0.95, 0.312},
		"far":       {0.6, 0.8},
	}}
	g := NewGuard(&fakeFilter{}, embed)
	ctx := context.Background()

	if !g.ShouldSkip(ctx, "candidate", []string{"far", "close"}) {
		t.Fatal("near duplicate not skipped")
	}
	if g.ShouldSkip(ctx, "candidate", []string{"far"}) {
		t.Fatal("distinct quote skipped")
	}
}

func TestShouldSkipWithoutRecentHistory(t *testing.T) {
	embed := &fakeEmbedder{}
	g := NewGuard(&fakeFilter{}, embed)

	if g.ShouldSkip(context.Background(), "candidate", nil) {
		t.Fatal("skipped with no history")
	}
	if embed.calls != 0 {
		t.Fatal("embedder called with no history")
	}
}

func TestShouldSkipToleratesStageFailures(t *testing.T) {
	t.Run("bloom failure falls through", func(t *testing.T) {
		embed := &fakeEmbedder{vecs: map[string][]float32{
			"candidate": {1, 0},
			"recent":    {0.6, 0.8},
		}}
		g := NewGuard(&fakeFilter{seenErr: errors.New("redis down")}, embed)
		if g.ShouldSkip(context.Background(), "candidate", []string{"recent"}) {
			t.Fatal("skipped despite distinct embedding")
		}
		if embed.calls != 1 {
			t.Fatal("embedding stage not reached after bloom failure")
		}
	})

	t.Run("embedding failure accepts", func(t *testing.T) {
		g := NewGuard(&fakeFilter{}, &fakeEmbedder{err: errors.New("api down")})
		if g.ShouldSkip(context.Background(), "candidate", []string{"recent"}) {
			t.Fatal("skipped despite failed embedding check")
		}
	})

	t.Run("no stages accepts", func(t *testing.T) {
		g := NewGuard(nil, nil)
		if g.ShouldSkip(context.Background(), "candidate", []string{"recent"}) {
			t.Fatal("bare guard skipped a quote")
		}
	})
}

func TestAcceptRemembersFingerprint(t *testing.T) {
	filter := &fakeFilter{}
	g := NewGuard(filter, nil)

	g.Accept(context.Background(), "some quote")
	if len(filter.remembered) != 1 || filter.remembered[0] != "some quote" {
		t.Fatalf("remembered = %v", filter.remembered)
	}

	// A guard without a filter must not panic.
	NewGuard(nil, nil).Accept(context.Background(), "other")
}
