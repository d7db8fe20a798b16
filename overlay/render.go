// Package overlay renders quote, attribution and branding text to RGBA
// rasters with stroke, drop shadow and an optional glow halo. Rendering is a
// pure function of the spec; identical specs yield pixel-identical images.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	// canvasPad keeps glyph edges, stroke and shadow inside the raster
	canvasPad = 10

	// lineSpacing is the extra gap between wrapped lines in pixels
	lineSpacing = 4

	// cacheCapacity bounds the render cache; author/branding/CTA strings
	// recur across a run, quotes do not
	cacheCapacity = 64
)

// TextSpec fully describes one rendered text block.
type TextSpec struct {
	Text         string
	FontPath     string
	FontSize     int
	Color        string
	WordsPerLine int
	Align        string

	StrokeColor string
	StrokeWidth int

	ShadowColor   string
	ShadowOffset  [2]int
	ShadowOpacity float64

	Glow        bool
	GlowRadius  int
	GlowOpacity float64
}

// cacheKey identifies a render result. Stroke and shadow parameters are fixed
// per call site and excluded, matching the layout-relevant tuple.
type cacheKey struct {
	text         string
	fontPath     string
	fontSize     int
	color        string
	wordsPerLine int
	align        string
	glow         bool
}

// Renderer turns TextSpecs into rasters, caching results by spec. The cache
// is owned by the renderer and FIFO-bounded; callers receive copies.
type Renderer struct {
	fonts *fontSet

	mu    sync.Mutex
	cache map[cacheKey]*image.NRGBA
	order []cacheKey
}

// NewRenderer returns a Renderer with an empty cache.
func NewRenderer() *Renderer {
	return &Renderer{
		fonts: newFontSet(),
		cache: make(map[cacheKey]*image.NRGBA),
	}
}

// RenderText rasterizes the spec onto a transparent canvas sized to the
// wrapped text plus effect bleed.
func (r *Renderer) RenderText(spec TextSpec) (*image.NRGBA, error) {
	key := cacheKey{
		text:         spec.Text,
		fontPath:     spec.FontPath,
		fontSize:     spec.FontSize,
		color:        spec.Color,
		wordsPerLine: spec.WordsPerLine,
		align:        spec.Align,
		glow:         spec.Glow,
	}

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cloneNRGBA(cached), nil
	}
	r.mu.Unlock()

	face, err := r.fonts.Face(spec.FontPath, spec.FontSize)
	if err != nil {
		return nil, err
	}

	lines := WrapLines(spec.Text, spec.WordsPerLine)
	if len(lines) == 0 {
		lines = []string{""}
	}

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = spec.FontSize + 6
	}

	blockW := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > blockW {
			blockW = w
		}
	}
	blockH := len(lines)*lineHeight + (len(lines)-1)*lineSpacing

	pad := canvasPad
	if spec.Glow {
		pad += spec.GlowRadius * 2
	}
	width := blockW + 2*spec.StrokeWidth + spec.ShadowOffset[0] + 2*pad
	height := blockH + 2*spec.StrokeWidth + spec.ShadowOffset[1] + 2*pad

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	origin := image.Pt(pad+spec.StrokeWidth, pad+spec.StrokeWidth)

	fillColor := mustHex(spec.Color)
	strokeColor := mustHex(spec.StrokeColor)

	// Glow: blur an opaque text+stroke copy and composite it beneath
	// everything else at reduced opacity.
	if spec.Glow && spec.GlowRadius > 0 && spec.GlowOpacity > 0 {
		glowLayer := image.NewNRGBA(canvas.Bounds())
		drawLines(glowLayer, face, lines, blockW, origin, ascent, lineHeight, fillColor, strokeColor, spec.StrokeWidth)
		blurred := imaging.Blur(glowLayer, float64(spec.GlowRadius)/2)
		mask := image.NewUniform(color.Alpha{A: uint8(spec.GlowOpacity * 255)})
		draw.DrawMask(canvas, canvas.Bounds(), blurred, image.Point{}, mask, image.Point{}, draw.Over)
	}

	// Drop shadow: offset duplicate without stroke.
	if spec.ShadowOpacity > 0 {
		shadowColor := withAlpha(mustHex(spec.ShadowColor), spec.ShadowOpacity)
		shadowOrigin := origin.Add(image.Pt(spec.ShadowOffset[0], spec.ShadowOffset[1]))
		drawLines(canvas, face, lines, blockW, shadowOrigin, ascent, lineHeight, shadowColor, color.NRGBA{}, 0)
	}

	// Main pass: stroke ring then fill.
	drawLines(canvas, face, lines, blockW, origin, ascent, lineHeight, fillColor, strokeColor, spec.StrokeWidth)

	r.mu.Lock()
	r.cache[key] = cloneNRGBA(canvas)
	r.order = append(r.order, key)
	if len(r.order) > cacheCapacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.cache, oldest)
	}
	r.mu.Unlock()

	return canvas, nil
}

// ClearCache drops every cached raster.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[cacheKey]*image.NRGBA)
	r.order = nil
}

// drawLines paints wrapped lines centered within blockW at origin. A non-zero
// strokeWidth draws the outline ring before the fill.
func drawLines(dst draw.Image, face font.Face, lines []string, blockW int, origin image.Point, ascent, lineHeight int, fill color.NRGBA, stroke color.NRGBA, strokeWidth int) {
	for i, line := range lines {
		if line == "" {
			continue
		}
		lineW := font.MeasureString(face, line).Ceil()
		x := origin.X + (blockW-lineW)/2
		y := origin.Y + ascent + i*(lineHeight+lineSpacing)

		if strokeWidth > 0 {
			d := &font.Drawer{Dst: dst, Src: image.NewUniform(stroke), Face: face}
			for dy := -strokeWidth; dy <= strokeWidth; dy++ {
				for dx := -strokeWidth; dx <= strokeWidth; dx++ {
					if dx*dx+dy*dy > strokeWidth*strokeWidth {
						continue
					}
					d.Dot = fixed.P(x+dx, y+dy)
					d.DrawString(line)
				}
			}
		}

		d := &font.Drawer{Dst: dst, Src: image.NewUniform(fill), Face: face}
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
