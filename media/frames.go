package media

import (
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ExtractFrame writes the frame at the given offset (seconds) as a PNG.
func ExtractFrame(clipPath string, at float64, outPath string) error {
	err := ffmpeg.Input(clipPath, ffmpeg.KwArgs{"ss": fmt.Sprintf("%.3f", at)}).
		Output(outPath, ffmpeg.KwArgs{
			"vframes": 1,
			"f":       "image2",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("extract frame at %.3fs from %s: %w", at, clipPath, err)
	}
	return nil
}

// SampleFrames extracts count frames evenly spaced across the span
// [spanStart, spanEnd] (fractions of the clip duration) into dir. It returns
// the written paths; frames that fail to extract are skipped rather than
// failing the whole sample.
func SampleFrames(clipPath string, duration float64, count int, spanStart, spanEnd float64, dir string) ([]string, error) {
	if count < 1 || duration <= 0 {
		return nil, fmt.Errorf("cannot sample %d frames over %.2fs", count, duration)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, count)
	for i := 0; i < count; i++ {
		frac := spanStart
		if count > 1 {
			frac = spanStart + (spanEnd-spanStart)*float64(i)/float64(count-1)
		}
		at := duration * frac
		out := filepath.Join(dir, fmt.Sprintf("frame_%02d.png", i))
		if err := ExtractFrame(clipPath, at, out); err != nil {
			continue
		}
		paths = append(paths, out)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames extracted from %s", clipPath)
	}
	return paths, nil
}
