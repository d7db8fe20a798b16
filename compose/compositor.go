package compose

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"wisdombot/config"
	"wisdombot/logx"
	"wisdombot/overlay"
	"wisdombot/types"
)

// Compositor renders overlay rasters and assembles the final video from a
// prepared background, the overlay schedule and the mixed audio track.
type Compositor struct {
	style  config.Style
	frames *overlay.Frames
	log    zerolog.Logger
}

func NewCompositor(style config.Style, renderer *overlay.Renderer) *Compositor {
	return &Compositor{
		style:  style,
		frames: overlay.NewFrames(style, renderer),
		log:    logx.WithComponent("compose"),
	}
}

// Request carries one composite job. WorkDir receives scratch rasters and
// must already exist; OutputPath is written only on success.
type Request struct {
	Background string
	AudioPath  string
	Timeline   *types.NarrationTimeline
	Content    *types.QuoteContent
	Total      float64
	WorkDir    string
	OutputPath string
}

// Compose builds the overlay schedule, rasterizes every scheduled layer,
// stacks them over the background with their fades, attaches the audio and
// encodes the artifact. The output appears atomically; a failed encode
// leaves nothing at OutputPath.
func (c *Compositor) Compose(req Request) (*types.VideoArtifact, error) {
	windows := OverlayWindows(req.Timeline, req.Total, c.style)

	rasters, cleanup, err := c.renderRasters(windows, req.Content, req.WorkDir)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	video := ffmpeg.Input(req.Background).Video()
	for _, w := range windows {
		video = overlayLayer(video, rasters[w.Kind], w, req.Total, c.style.FPS)
	}

	fade := c.style.VideoFade
	video = video.
		Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "in", "st": 0, "d": fade}).
		Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "out", "st": fmt.Sprintf("%.3f", req.Total-fade), "d": fade}).
		Filter("format", ffmpeg.Args{"yuv420p"})

	audio := ffmpeg.Input(req.AudioPath).Audio()

	scratch := req.OutputPath + ".partial.mp4"
	err = ffmpeg.Output([]*ffmpeg.Stream{video, audio}, scratch, ffmpeg.KwArgs{
		"c:v":    config.VideoCodec,
		"b:v":    config.VideoBitrate,
		"c:a":    config.AudioCodec,
		"b:a":    config.AudioBitrate,
		"r":      c.style.FPS,
		"t":      fmt.Sprintf("%.3f", req.Total),
		"preset": "medium",
	}).
		OverWriteOutput().
		Run()
	if err != nil {
		os.Remove(scratch)
		return nil, fmt.Errorf("encode composite: %w", err)
	}
	if err := os.Rename(scratch, req.OutputPath); err != nil {
		return nil, fmt.Errorf("finalize composite: %w", err)
	}

	c.log.Info().
		Str("output", filepath.Base(req.OutputPath)).
		Float64("duration", req.Total).
		Int("overlays", len(windows)).
		Msg("composite rendered")
	return &types.VideoArtifact{Path: req.OutputPath, Duration: req.Total}, nil
}

// OutputName builds the artifact filename for a quote.
func OutputName(quoteID int, authorKey string) string {
	safe := strings.ReplaceAll(authorKey, " ", "_")
	return fmt.Sprintf("stoic_%d_%s.mp4", quoteID, safe)
}

// renderRasters writes one PNG per scheduled layer into dir and returns the
// paths keyed by layer plus a cleanup that removes them all.
func (c *Compositor) renderRasters(windows []Window, content *types.QuoteContent, dir string) (map[LayerKind]string, func(), error) {
	paths := make(map[LayerKind]string, len(windows))
	cleanup := func() {
		for _, p := range paths {
			os.Remove(p)
		}
	}
	for _, w := range windows {
		img, err := c.raster(w.Kind, content)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("render %s overlay: %w", w.Kind, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("overlay_%s.png", w.Kind))
		if err := overlay.WritePNG(path, img); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("write %s overlay: %w", w.Kind, err)
		}
		paths[w.Kind] = path
	}
	return paths, cleanup, nil
}

func (c *Compositor) raster(kind LayerKind, content *types.QuoteContent) (*image.NRGBA, error) {
	switch kind {
	case LayerHook:
		return c.frames.Hook(content.AuthorName, content.Meta)
	case LayerQuote:
		return c.frames.Quote(content.Text)
	case LayerDivider:
		return c.frames.Divider(), nil
	case LayerAuthor:
		return c.frames.Author(content.AuthorName)
	case LayerReflection:
		return c.frames.Reflection(content.Reflection)
	case LayerCTA:
		return c.frames.CTA()
	case LayerBranding:
		return c.frames.Branding()
	}
	return nil, fmt.Errorf("unknown overlay layer %q", kind)
}

// overlayLayer stacks one raster over the video, faded inside its window and
// disabled entirely outside it. The raster input is looped for the full video
// length so fade timestamps line up with video time.
func overlayLayer(video *ffmpeg.Stream, pngPath string, w Window, total float64, fps int) *ffmpeg.Stream {
	img := ffmpeg.Input(pngPath, ffmpeg.KwArgs{
		"loop":      1,
		"t":         fmt.Sprintf("%.3f", total),
		"framerate": fps,
	}).
		Filter("format", ffmpeg.Args{"rgba"}).
		Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{
			"t":     "in",
			"st":    fmt.Sprintf("%.3f", w.Start),
			"d":     fmt.Sprintf("%.3f", w.FadeIn),
			"alpha": 1,
		})
	if w.FadeOut > 0 {
		img = img.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{
			"t":     "out",
			"st":    fmt.Sprintf("%.3f", w.End-w.FadeOut),
			"d":     fmt.Sprintf("%.3f", w.FadeOut),
			"alpha": 1,
		})
	}
	return ffmpeg.Filter([]*ffmpeg.Stream{video, img}, "overlay", ffmpeg.Args{"0:0"}, ffmpeg.KwArgs{
		"enable": fmt.Sprintf("between(t,%.3f,%.3f)", w.Start, w.End),
	})
}
