package background

import (
	"fmt"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"wisdombot/config"
	"wisdombot/logx"
)

// Grade renders src into a clip of exactly the requested duration: looped by
// repetition if it runs short, trimmed, scaled to fill the frame with the
// excess center-cropped, darkened and tinted. The source file is never
// modified and the output carries no audio stream.
func Grade(src, dst string, duration float64, style config.Style) error {
	size := fmt.Sprintf("%d:%d", style.Width, style.Height)

	video := ffmpeg.Input(src, ffmpeg.KwArgs{"stream_loop": -1}).
		Video().
		Filter("scale", ffmpeg.Args{size}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{size}).
		Filter("colorchannelmixer", ffmpeg.Args{}, ffmpeg.KwArgs{
			"rr": style.BackgroundBrightness,
			"gg": style.BackgroundBrightness,
			"bb": style.BackgroundBrightness,
		})

	if style.BackgroundTintOpacity > 0 {
		tintSource := fmt.Sprintf("color=c=0x%02X%02X%02X@%.2f:s=%dx%d:r=%d",
			style.BackgroundTint[0], style.BackgroundTint[1], style.BackgroundTint[2],
			style.BackgroundTintOpacity, style.Width, style.Height, style.FPS)
		tint := ffmpeg.Input(tintSource, ffmpeg.KwArgs{
			"f": "lavfi",
			"t": fmt.Sprintf("%.3f", duration),
		}).Filter("format", ffmpeg.Args{"rgba"})

		video = ffmpeg.Filter([]*ffmpeg.Stream{video, tint}, "overlay", ffmpeg.Args{"0:0"})
	}

	err := video.
		Output(dst, ffmpeg.KwArgs{
			"t":       fmt.Sprintf("%.3f", duration),
			"r":       style.FPS,
			"c:v":     config.VideoCodec,
			"b:v":     config.VideoBitrate,
			"pix_fmt": "yuv420p",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("grade %s: %w", filepath.Base(src), err)
	}
	return nil
}

// Prepare grades the source clip into workDir and, when enabled, applies the
// zoom animation. Animation failure degrades to the static graded clip.
func Prepare(src, workDir string, duration float64, style config.Style, kenBurns bool) (string, error) {
	graded := filepath.Join(workDir, "background_graded.mp4")
	if err := Grade(src, graded, duration, style); err != nil {
		return "", err
	}
	if !kenBurns {
		return graded, nil
	}

	animated := filepath.Join(workDir, "background_zoom.mp4")
	if err := Animate(graded, animated, duration, style); err != nil {
		log := logx.WithComponent("background")
		log.Warn().Err(err).Msg("zoom animation failed, using static background")
		return graded, nil
	}
	return animated, nil
}
