package types

// Segment names within a narration timeline, in playback order.
const (
	SegmentHook       = "hook"
	SegmentQuote      = "quote"
	SegmentAuthor     = "author"
	SegmentReflection = "reflection"
)

// Segment is one spoken part of the narration with its offsets inside the
// composed audio. A segment whose source text was empty has Start == End.
type Segment struct {
	Name  string  `json:"name"`
	Start float64 `json:"start_seconds"`
	End   float64 `json:"end_seconds"`
}

// NarrationTimeline is the composed narration artifact plus the exact offsets
// of every spoken segment. Built once per run, immutable afterwards.
type NarrationTimeline struct {
	AudioPath     string    `json:"audio_path"`
	TotalDuration float64   `json:"total_duration_seconds"`
	Segments      []Segment `json:"segments"`
}

// Segment returns the named segment and whether it exists.
func (t *NarrationTimeline) Segment(name string) (Segment, bool) {
	for _, s := range t.Segments {
		if s.Name == name {
			return s, true
		}
	}
	return Segment{}, false
}

// Spoken reports whether the named segment has non-zero width, i.e. its text
// was actually narrated.
func (t *NarrationTimeline) Spoken(name string) bool {
	s, ok := t.Segment(name)
	return ok && s.End > s.Start
}

// BackgroundSource identifies which acquisition tier produced a clip.
type BackgroundSource string

const (
	SourceLocalPool   BackgroundSource = "local-pool"
	SourceRemoteCache BackgroundSource = "remote-cache"
	SourceRemoteFresh BackgroundSource = "remote-fresh"
)

// BackgroundAsset is a usable background clip. PassedFilter is false only for
// the last-resort local pool tier, which skips the person check.
type BackgroundAsset struct {
	Path         string           `json:"path"`
	Source       BackgroundSource `json:"source"`
	Duration     float64          `json:"duration_seconds"`
	PassedFilter bool             `json:"passed_content_filter"`
}

// VideoArtifact is the terminal output of a composition run.
type VideoArtifact struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration_seconds"`
}
