package narration

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"wisdombot/config"
	"wisdombot/logx"
	"wisdombot/media"
	"wisdombot/types"
)

// DurationProber returns the playable length of an audio file in seconds.
type DurationProber func(path string) (float64, error)

// Placement positions one spoken clip within the assembled track.
type Placement struct {
	Path    string
	DelayMS int
}

// Mixer lays the placed clips over a silent base of totalMS milliseconds and
// encodes the result to outPath.
type Mixer func(placements []Placement, totalMS int, outPath string) error

// Builder synthesizes each narration segment, spaces them with the fixed
// silence scheme and records the resulting timestamps:
//
//	silence 500ms, hook, 1200ms, quote, 800ms, author, 1500ms, reflection, 800ms
//
// A segment with empty text occupies zero width; its surrounding silences
// still apply so the timeline stays internally consistent.
type Builder struct {
	synth    Synthesizer
	prober   DurationProber
	mixer    Mixer
	audioDir string
	log      zerolog.Logger
}

// NewBuilder wires a Builder that writes its artifact into audioDir.
func NewBuilder(synth Synthesizer, audioDir string) *Builder {
	return &Builder{
		synth:    synth,
		prober:   media.Duration,
		mixer:    mixdown,
		audioDir: audioDir,
		log:      logx.WithComponent("narration"),
	}
}

type spokenPart struct {
	name string
	text string
}

// Build synthesizes and assembles the narration for the given content. Any
// synthesis failure aborts with no partial timeline; transient per-segment
// files are removed on every path.
func (b *Builder) Build(ctx context.Context, content *types.QuoteContent) (*types.NarrationTimeline, error) {
	if err := os.MkdirAll(b.audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	parts := []spokenPart{
		{name: types.SegmentHook, text: content.HookIntro},
		{name: types.SegmentQuote, text: content.Text},
		{name: types.SegmentAuthor, text: content.AuthorName},
		{name: types.SegmentReflection, text: content.Reflection},
	}
	silences := map[string]int{
		types.SegmentHook:       config.AfterHookSilenceMS,
		types.SegmentQuote:      config.AfterQuoteSilenceMS,
		types.SegmentAuthor:     config.AfterAuthorSilenceMS,
		types.SegmentReflection: config.TrailSilenceMS,
	}

	var transient []string
	defer func() {
		for _, path := range transient {
			os.Remove(path)
		}
	}()

	cursor := config.LeadSilenceMS
	segments := make([]types.Segment, 0, len(parts))
	placements := make([]Placement, 0, len(parts))

	for _, part := range parts {
		start := cursor

		if part.text != "" {
			path := filepath.Join(b.audioDir, fmt.Sprintf("_tts_%s.mp3", part.name))
			widthMS, err := b.synthesizeToFile(ctx, part.text, path)
			if err != nil {
				return nil, fmt.Errorf("segment %s: %w", part.name, err)
			}
			transient = append(transient, path)
			placements = append(placements, Placement{Path: path, DelayMS: start})
			cursor += widthMS
		}

		segments = append(segments, types.Segment{
			Name:  part.name,
			Start: float64(start) / 1000,
			End:   float64(cursor) / 1000,
		})
		cursor += silences[part.name]
	}

	outPath := filepath.Join(b.audioDir, "narration.mp3")
	if err := b.mixer(placements, cursor, outPath); err != nil {
		return nil, fmt.Errorf("assemble narration: %w", err)
	}

	timeline := &types.NarrationTimeline{
		AudioPath:     outPath,
		TotalDuration: float64(cursor) / 1000,
		Segments:      segments,
	}

	b.log.Info().
		Float64("total", timeline.TotalDuration).
		Str("audio", filepath.Base(outPath)).
		Msg("assembled narration")
	return timeline, nil
}

// synthesizeToFile renders one segment to disk and returns its width in
// milliseconds.
func (b *Builder) synthesizeToFile(ctx context.Context, text, path string) (int, error) {
	audio, err := b.synth.Synthesize(ctx, text)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return 0, fmt.Errorf("write segment audio: %w", err)
	}

	seconds, err := b.prober(path)
	if err != nil {
		return 0, fmt.Errorf("probe segment audio: %w", err)
	}
	return int(math.Round(seconds * 1000)), nil
}
