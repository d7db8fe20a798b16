// Package compose turns a narration timeline, a prepared background clip and
// rendered overlay rasters into the final vertical video artifact.
package compose

import (
	"math"

	"wisdombot/config"
	"wisdombot/types"
)

// LayerKind identifies one overlay layer of the composite.
type LayerKind string

// Overlay layers in z-order, background lowest.
const (
	LayerHook       LayerKind = "hook"
	LayerQuote      LayerKind = "quote"
	LayerDivider    LayerKind = "divider"
	LayerAuthor     LayerKind = "author"
	LayerReflection LayerKind = "reflection"
	LayerCTA        LayerKind = "cta"
	LayerBranding   LayerKind = "branding"
)

// Window schedules one overlay layer: visible from Start to End with a fade-in
// of FadeIn seconds at the start and, when FadeOut > 0, a fade-out ending at
// End. Times are absolute video seconds.
type Window struct {
	Kind    LayerKind
	Start   float64
	End     float64
	FadeIn  float64
	FadeOut float64
}

// Width returns the visible span in seconds.
func (w Window) Width() float64 {
	return w.End - w.Start
}

// TotalDuration computes the video length for a given narration length:
// narration plus the CTA tail, clamped into the Shorts-safe range.
func TotalDuration(narration float64) float64 {
	total := narration + config.CTATailSeconds
	total = math.Min(total, config.MaxDurationSeconds)
	return math.Max(total, config.MinDurationSeconds)
}

// OverlayWindows derives the full overlay schedule from the timeline. Layers
// whose narration segment was empty are omitted; the CTA is dropped when its
// window would run shorter than one second. Windows are returned in z-order.
//
// Text layers lead their narration slightly and linger after it so the viewer
// reads ahead of the voice and is never cut off mid-line.
func OverlayWindows(tl *types.NarrationTimeline, total float64, style config.Style) []Window {
	var windows []Window

	hook, _ := tl.Segment(types.SegmentHook)
	quote, _ := tl.Segment(types.SegmentQuote)
	author, _ := tl.Segment(types.SegmentAuthor)
	reflection, _ := tl.Segment(types.SegmentReflection)

	// An author segment that never advances past the quote start cannot anchor
	// the shared quote/author window end; park it three seconds in.
	authorEnd := author.End
	if authorEnd <= quote.Start {
		authorEnd = quote.Start + 3.0
	}

	if tl.Spoken(types.SegmentHook) {
		windows = append(windows, clamp(Window{
			Kind:    LayerHook,
			Start:   hook.Start - 0.3,
			End:     hook.End + 1.0,
			FadeIn:  style.TextFadeIn,
			FadeOut: 0.5,
		}, total))
	}

	if tl.Spoken(types.SegmentQuote) {
		// The divider shares the quote's window so they read as one unit.
		windows = append(windows,
			clamp(Window{
				Kind:    LayerQuote,
				Start:   quote.Start - 0.2,
				End:     authorEnd + 1.5,
				FadeIn:  style.TextFadeIn,
				FadeOut: 0.8,
			}, total),
			clamp(Window{
				Kind:    LayerDivider,
				Start:   quote.Start - 0.2,
				End:     authorEnd + 1.5,
				FadeIn:  style.TextFadeIn + 0.3,
				FadeOut: 0.8,
			}, total))
	}

	if tl.Spoken(types.SegmentAuthor) {
		windows = append(windows, clamp(Window{
			Kind:    LayerAuthor,
			Start:   author.Start - 0.1,
			End:     authorEnd + 1.5,
			FadeIn:  style.TextFadeIn + 0.2,
			FadeOut: 0.8,
		}, total))
	}

	if tl.Spoken(types.SegmentReflection) {
		windows = append(windows, clamp(Window{
			Kind:    LayerReflection,
			Start:   reflection.Start - 0.3,
			End:     reflection.End + 1.5,
			FadeIn:  style.TextFadeIn,
			FadeOut: 0.8,
		}, total))
	}

	// CTA sits in the tail after the reflection; no fade-out, the video-level
	// fade carries it to black.
	cta := clamp(Window{
		Kind:   LayerCTA,
		Start:  math.Max(reflection.End+0.5, total-config.CTATailSeconds),
		End:    total,
		FadeIn: style.TextFadeIn,
	}, total)
	if cta.Width() >= 1.0 {
		windows = append(windows, cta)
	}

	windows = append(windows, Window{
		Kind:   LayerBranding,
		Start:  0,
		End:    total,
		FadeIn: style.TextFadeIn + 0.5,
	})

	return windows
}

// clamp confines a window to [0, total].
func clamp(w Window, total float64) Window {
	w.Start = math.Max(w.Start, 0)
	w.End = math.Min(w.End, total)
	return w
}
