package background

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"wisdombot/config"
	"wisdombot/logx"
	"wisdombot/media"
)

// PersonDetector reports whether a frame image shows a person. The zero
// value of the vision detector satisfies this with Available() == false.
type PersonDetector interface {
	Available() bool
	HasPersonInFile(path string) (bool, error)
}

// FrameSampler extracts evenly spaced frames from a clip into dir.
type FrameSampler interface {
	Sample(clipPath string, count int, spanStart, spanEnd float64, dir string) ([]string, error)
}

// mediaSampler probes the clip duration and extracts frames with ffmpeg.
type mediaSampler struct{}

func (mediaSampler) Sample(clipPath string, count int, spanStart, spanEnd float64, dir string) ([]string, error) {
	duration, err := media.Duration(clipPath)
	if err != nil {
		return nil, err
	}
	return media.SampleFrames(clipPath, duration, count, spanStart, spanEnd, dir)
}

// ClipFilter screens candidate clips for people across sampled frames.
// Detector or sampling failures report "no people" so that a missing
// capability degrades acquisition precision instead of blocking it.
type ClipFilter struct {
	detector PersonDetector
	sampler  FrameSampler
	log      zerolog.Logger
}

// NewClipFilter builds a filter over the given detector.
func NewClipFilter(detector PersonDetector) *ClipFilter {
	return &ClipFilter{
		detector: detector,
		sampler:  mediaSampler{},
		log:      logx.WithComponent("clipfilter"),
	}
}

// HasPeople samples frames across the clip and reports whether any shows a
// person above the detection threshold.
func (f *ClipFilter) HasPeople(clipPath string) bool {
	if !f.detector.Available() {
		return false
	}

	dir, err := os.MkdirTemp("", "wisdombot-frames-")
	if err != nil {
		f.log.Warn().Err(err).Msg("cannot stage frame samples, accepting clip")
		return false
	}
	defer os.RemoveAll(dir)

	frames, err := f.sampler.Sample(clipPath, config.FilterSampleFrames, config.FilterSampleSpanStart, config.FilterSampleSpanEnd, dir)
	if err != nil {
		f.log.Warn().Err(err).Str("clip", filepath.Base(clipPath)).Msg("frame sampling failed, accepting clip")
		return false
	}

	for _, frame := range frames {
		found, err := f.detector.HasPersonInFile(frame)
		if err != nil {
			f.log.Warn().Err(err).Msg("detection failed on frame, skipping it")
			continue
		}
		if found {
			f.log.Info().Str("clip", filepath.Base(clipPath)).Msg("rejected clip, person detected")
			return true
		}
	}
	return false
}
