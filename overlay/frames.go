package overlay

import (
	"image"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"

	"wisdombot/config"
	"wisdombot/types"
)

const (
	// hookGap separates the philosopher name from the era/title subtitle
	hookGap = 15

	dividerWidth     = 200
	dividerThickness = 2
	dividerAlpha     = 180

	// maxFrameWidthRatio caps a text block at 90% of the frame width
	maxFrameWidthRatio = 0.9
)

// Frames composes full-size transparent canvases for every overlay element.
// Each method returns a Width×Height RGBA image ready to be fed to the
// compositor as one timed layer.
type Frames struct {
	style config.Style
	r     *Renderer
}

// NewFrames wires a composer to a style and a shared text renderer.
func NewFrames(style config.Style, r *Renderer) *Frames {
	return &Frames{style: style, r: r}
}

// Quote renders the quote text at its anchor. Font size and wrap width come
// from the word-count tier; the quote is the only element with a glow halo.
func (f *Frames) Quote(text string) (*image.NRGBA, error) {
	tier := config.FontSettings(len(strings.Fields(text)))

	img, err := f.r.RenderText(TextSpec{
		Text:          text,
		FontPath:      f.style.QuoteFontPath,
		FontSize:      tier.FontSize,
		Color:         f.style.QuoteColor,
		WordsPerLine:  tier.WordsPerLine,
		Align:         "center",
		StrokeColor:   f.style.StrokeColor,
		StrokeWidth:   f.style.StrokeWidth,
		ShadowColor:   f.style.ShadowColor,
		ShadowOffset:  f.style.ShadowOffset,
		ShadowOpacity: f.style.ShadowOpacity,
		Glow:          true,
		GlowRadius:    f.style.GlowRadius,
		GlowOpacity:   f.style.GlowOpacity,
	})
	if err != nil {
		return nil, err
	}
	return f.placeCentered(img, f.yAt(f.style.QuoteYRatio)), nil
}

// Author renders the attribution line, e.g. "— Marcus Aurelius".
func (f *Frames) Author(name string) (*image.NRGBA, error) {
	img, err := f.r.RenderText(TextSpec{
		Text:          "— " + name,
		FontPath:      f.style.AuthorFontPath,
		FontSize:      f.style.AuthorFontSize,
		Color:         f.style.AuthorColor,
		WordsPerLine:  20, // keep on one line
		Align:         "center",
		StrokeColor:   f.style.StrokeColor,
		StrokeWidth:   1,
		ShadowColor:   f.style.ShadowColor,
		ShadowOffset:  [2]int{1, 1},
		ShadowOpacity: 0.5,
	})
	if err != nil {
		return nil, err
	}
	return f.placeCentered(img, f.yAt(f.style.AuthorYRatio)), nil
}

// Hook renders the intro identity block: the philosopher's name upper-cased
// with an "Era • Title" subtitle beneath when metadata is available.
func (f *Frames) Hook(name string, meta *types.Philosopher) (*image.NRGBA, error) {
	nameImg, err := f.r.RenderText(TextSpec{
		Text:          strings.ToUpper(name),
		FontPath:      f.style.QuoteFontPath,
		FontSize:      42,
		Color:         f.style.QuoteColor,
		WordsPerLine:  10,
		Align:         "center",
		StrokeColor:   f.style.StrokeColor,
		StrokeWidth:   2,
		ShadowColor:   f.style.ShadowColor,
		ShadowOffset:  [2]int{2, 2},
		ShadowOpacity: 0.6,
	})
	if err != nil {
		return nil, err
	}

	var parts []string
	if meta != nil && meta.Era != "" {
		parts = append(parts, meta.Era)
	}
	if meta != nil && meta.Title != "" {
		parts = append(parts, meta.Title)
	}

	block := nameImg
	if len(parts) > 0 {
		subImg, err := f.r.RenderText(TextSpec{
			Text:          strings.Join(parts, " • "),
			FontPath:      f.style.AuthorFontPath,
			FontSize:      28,
			Color:         f.style.AuthorColor,
			WordsPerLine:  20,
			Align:         "center",
			StrokeColor:   f.style.StrokeColor,
			StrokeWidth:   1,
			ShadowColor:   f.style.ShadowColor,
			ShadowOffset:  [2]int{1, 1},
			ShadowOpacity: 0.4,
		})
		if err != nil {
			return nil, err
		}
		block = stackVertically(nameImg, subImg, hookGap)
	}
	return f.placeCentered(block, f.yAt(f.style.HookYRatio)), nil
}

// Reflection renders the closing thought in the muted italic treatment.
func (f *Frames) Reflection(text string) (*image.NRGBA, error) {
	img, err := f.r.RenderText(TextSpec{
		Text:          text,
		FontPath:      f.style.AuthorFontPath,
		FontSize:      36,
		Color:         f.style.ReflectionColor,
		WordsPerLine:  6,
		Align:         "center",
		StrokeColor:   f.style.StrokeColor,
		StrokeWidth:   1,
		ShadowColor:   f.style.ShadowColor,
		ShadowOffset:  [2]int{1, 1},
		ShadowOpacity: 0.5,
	})
	if err != nil {
		return nil, err
	}
	return f.placeCentered(img, f.yAt(f.style.ReflectionYRatio)), nil
}

// CTA renders the call-to-action line near the bottom.
func (f *Frames) CTA() (*image.NRGBA, error) {
	img, err := f.r.RenderText(TextSpec{
		Text:          f.style.CTAText,
		FontPath:      f.style.BrandingFontPath,
		FontSize:      32,
		Color:         f.style.AccentColor,
		WordsPerLine:  20,
		Align:         "center",
		StrokeColor:   f.style.StrokeColor,
		StrokeWidth:   1,
		ShadowColor:   f.style.ShadowColor,
		ShadowOffset:  [2]int{1, 1},
		ShadowOpacity: 0.4,
	})
	if err != nil {
		return nil, err
	}
	return f.placeCentered(img, f.yAt(f.style.CTAYRatio)), nil
}

// Branding renders the channel watermark at the very bottom.
func (f *Frames) Branding() (*image.NRGBA, error) {
	img, err := f.r.RenderText(TextSpec{
		Text:          f.style.BrandingText,
		FontPath:      f.style.BrandingFontPath,
		FontSize:      f.style.BrandingFontSize,
		Color:         f.style.BrandingColor,
		WordsPerLine:  20,
		Align:         "center",
		StrokeColor:   f.style.StrokeColor,
		StrokeWidth:   1,
		ShadowColor:   f.style.ShadowColor,
		ShadowOffset:  [2]int{1, 1},
		ShadowOpacity: 0.4,
	})
	if err != nil {
		return nil, err
	}
	return f.placeCentered(img, f.yAt(f.style.BrandingYRatio)), nil
}

// Divider renders the thin horizontal separator between quote and author.
func (f *Frames) Divider() *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, f.style.Width, f.style.Height))

	line := withAlpha(mustHex(f.style.AccentColor), float64(dividerAlpha)/255)
	yCenter := int(float64(f.style.Height) * (f.style.QuoteYRatio + f.style.AuthorYRatio) / 2)
	x0 := (f.style.Width - dividerWidth) / 2

	rect := image.Rect(x0, yCenter-dividerThickness/2, x0+dividerWidth, yCenter+dividerThickness/2)
	draw.Draw(canvas, rect, image.NewUniform(line), image.Point{}, draw.Src)
	return canvas
}

func (f *Frames) yAt(ratio float64) int {
	return int(float64(f.style.Height) * ratio)
}

// placeCentered puts a raster on a transparent full-frame canvas, downscaled
// if wider than 90% of the frame, horizontally centered and vertically
// anchored so the block's center sits at yCenter, clamped inside the frame.
func (f *Frames) placeCentered(img *image.NRGBA, yCenter int) *image.NRGBA {
	maxW := int(float64(f.style.Width) * maxFrameWidthRatio)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w > maxW {
		h = h * maxW / w
		w = maxW
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, f.style.Width, f.style.Height))
	x := (f.style.Width - w) / 2
	y := yCenter - h/2
	if y > f.style.Height-h {
		y = f.style.Height - h
	}
	if y < 0 {
		y = 0
	}
	draw.Draw(canvas, image.Rect(x, y, x+w, y+h), img, img.Bounds().Min, draw.Over)
	return canvas
}

// stackVertically joins two rasters top-to-bottom with a gap, each centered
// on the combined width.
func stackVertically(top, bottom *image.NRGBA, gap int) *image.NRGBA {
	tw, th := top.Bounds().Dx(), top.Bounds().Dy()
	bw, bh := bottom.Bounds().Dx(), bottom.Bounds().Dy()

	w := tw
	if bw > w {
		w = bw
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, th+gap+bh))

	tx := (w - tw) / 2
	draw.Draw(out, image.Rect(tx, 0, tx+tw, th), top, top.Bounds().Min, draw.Over)
	bx := (w - bw) / 2
	draw.Draw(out, image.Rect(bx, th+gap, bx+bw, th+gap+bh), bottom, bottom.Bounds().Min, draw.Over)
	return out
}
