package background

import (
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"wisdombot/config"
)

// CropWindow returns the visible source rectangle of the zoom animation at
// time t. The window shrinks linearly from the full frame at t=0 to 1/zoom
// of it at t=duration, always centered. Pure; callers invoke it once per
// frame they need (the encoder path expresses the same curve in-filter).
func CropWindow(t, duration, zoom float64, frameW, frameH int) (x0, y0, x1, y1 int) {
	progress := 0.0
	if duration > 0 {
		progress = t / duration
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	current := 1 + (zoom-1)*progress
	w := int(float64(frameW) / current)
	h := int(float64(frameH) / current)

	x0 = (frameW - w) / 2
	y0 = (frameH - h) / 2
	return x0, y0, x0 + w, y0 + h
}

// Animate re-encodes a graded clip with the continuous zoom-in applied,
// matching the CropWindow curve frame for frame.
func Animate(src, dst string, duration float64, style config.Style) error {
	frames := int(duration * float64(style.FPS))
	if frames <= 0 {
		return fmt.Errorf("cannot animate %.3fs at %d fps", duration, style.FPS)
	}

	zoomExpr := fmt.Sprintf("min(1+%.4f*on/%d,%.4f)", style.KenBurnsZoom-1, frames, style.KenBurnsZoom)

	err := ffmpeg.Input(src).
		Video().
		Filter("zoompan", ffmpeg.Args{}, ffmpeg.KwArgs{
			"z":   zoomExpr,
			"x":   "iw/2-(iw/zoom/2)",
			"y":   "ih/2-(ih/zoom/2)",
			"d":   1,
			"s":   fmt.Sprintf("%dx%d", style.Width, style.Height),
			"fps": style.FPS,
		}).
		Output(dst, ffmpeg.KwArgs{
			"t":       fmt.Sprintf("%.3f", duration),
			"c:v":     config.VideoCodec,
			"b:v":     config.VideoBitrate,
			"pix_fmt": "yuv420p",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("zoom animation: %w", err)
	}
	return nil
}
