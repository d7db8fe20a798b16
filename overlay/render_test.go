package overlay

import (
	"bytes"
	"fmt"
	"testing"

	"wisdombot/config"
	"wisdombot/types"
)

// missing font path exercises the bundled-font fallback so tests never
// depend on asset files being present.
const testFont = "testdata/nonexistent.ttf"

func quoteSpec(text string) TextSpec {
	return TextSpec{
		Text:          text,
		FontPath:      testFont,
		FontSize:      48,
		Color:         "#FFFFFF",
		WordsPerLine:  5,
		Align:         "center",
		StrokeColor:   "#000000",
		StrokeWidth:   3,
		ShadowColor:   "#000000",
		ShadowOffset:  [2]int{3, 3},
		ShadowOpacity: 0.85,
	}
}

func TestRenderTextDeterministic(t *testing.T) {
	r := NewRenderer()
	spec := quoteSpec("we suffer more often in imagination than in reality")
	spec.Glow = true
	spec.GlowRadius = 12
	spec.GlowOpacity = 0.35

	first, err := r.RenderText(spec)
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := r.RenderText(spec)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}

	if first.Bounds() != second.Bounds() {
		t.Fatalf("bounds differ: %v vs %v", first.Bounds(), second.Bounds())
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("identical specs produced different pixels")
	}
}

func TestRenderTextCachedResultIsACopy(t *testing.T) {
	r := NewRenderer()
	spec := quoteSpec("know thyself")

	first, err := r.RenderText(spec)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	reference := make([]byte, len(first.Pix))
	copy(reference, first.Pix)

	// A caller scribbling on its copy must not poison subsequent renders.
	for i := range first.Pix {
		first.Pix[i] = 0xAB
	}

	second, err := r.RenderText(spec)
	if err != nil {
		t.Fatalf("render after mutation failed: %v", err)
	}
	if !bytes.Equal(second.Pix, reference) {
		t.Fatal("cache returned pixels affected by caller mutation")
	}
}

func TestRenderTextGlowWidensCanvas(t *testing.T) {
	r := NewRenderer()

	plain := quoteSpec("discipline equals freedom")
	glowing := plain
	glowing.Glow = true
	glowing.GlowRadius = 12
	glowing.GlowOpacity = 0.35

	plainImg, err := r.RenderText(plain)
	if err != nil {
		t.Fatalf("plain render failed: %v", err)
	}
	glowImg, err := r.RenderText(glowing)
	if err != nil {
		t.Fatalf("glow render failed: %v", err)
	}

	if glowImg.Bounds().Dx() <= plainImg.Bounds().Dx() {
		t.Fatalf("glow canvas width %d not wider than plain %d",
			glowImg.Bounds().Dx(), plainImg.Bounds().Dx())
	}
	if glowImg.Bounds().Dy() <= plainImg.Bounds().Dy() {
		t.Fatalf("glow canvas height %d not taller than plain %d",
			glowImg.Bounds().Dy(), plainImg.Bounds().Dy())
	}
}

func TestRenderTextCacheEviction(t *testing.T) {
	r := NewRenderer()

	for i := 0; i < cacheCapacity+10; i++ {
		spec := quoteSpec(fmt.Sprintf("quote number %d", i))
		if _, err := r.RenderText(spec); err != nil {
			t.Fatalf("render %d failed: %v", i, err)
		}
	}

	r.mu.Lock()
	size := len(r.cache)
	order := len(r.order)
	r.mu.Unlock()

	if size != cacheCapacity {
		t.Fatalf("cache holds %d entries; want %d", size, cacheCapacity)
	}
	if order != cacheCapacity {
		t.Fatalf("order list holds %d entries; want %d", order, cacheCapacity)
	}
}

func testStyle() config.Style {
	style := config.DefaultStyle()
	style.QuoteFontPath = testFont
	style.AuthorFontPath = testFont
	style.BrandingFontPath = testFont
	return style
}

func TestFramesAreFullSize(t *testing.T) {
	style := testStyle()
	frames := NewFrames(style, NewRenderer())

	meta := &types.Philosopher{Name: "Marcus Aurelius", Era: "Ancient Rome", Title: "Roman Emperor"}

	checks := []struct {
		name   string
		render func() error
	}{
		{"quote", func() error { _, err := frames.Quote("the obstacle is the way"); return err }},
		{"author", func() error { _, err := frames.Author("Marcus Aurelius"); return err }},
		{"hook with meta", func() error { _, err := frames.Hook("Marcus Aurelius", meta); return err }},
		{"hook without meta", func() error { _, err := frames.Hook("Seneca", nil); return err }},
		{"reflection", func() error { _, err := frames.Reflection("What trial is shaping you right now?"); return err }},
		{"cta", func() error { _, err := frames.CTA(); return err }},
		{"branding", func() error { _, err := frames.Branding(); return err }},
	}

	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if err := c.render(); err != nil {
				t.Fatalf("%s frame failed: %v", c.name, err)
			}
		})
	}

	img, err := frames.Quote("the obstacle is the way")
	if err != nil {
		t.Fatalf("quote frame failed: %v", err)
	}
	if img.Bounds().Dx() != style.Width || img.Bounds().Dy() != style.Height {
		t.Fatalf("frame size %dx%d; want %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), style.Width, style.Height)
	}
}

func TestDividerPlacement(t *testing.T) {
	style := testStyle()
	frames := NewFrames(style, NewRenderer())

	img := frames.Divider()
	if img.Bounds().Dx() != style.Width || img.Bounds().Dy() != style.Height {
		t.Fatalf("divider frame size %dx%d; want %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), style.Width, style.Height)
	}

	yCenter := int(float64(style.Height) * (style.QuoteYRatio + style.AuthorYRatio) / 2)
	center := img.NRGBAAt(style.Width/2, yCenter)
	if center.A != dividerAlpha {
		t.Fatalf("divider alpha at center = %d; want %d", center.A, dividerAlpha)
	}

	outside := img.NRGBAAt(style.Width/2, yCenter-50)
	if outside.A != 0 {
		t.Fatalf("pixel above divider not transparent, alpha = %d", outside.A)
	}

	left := img.NRGBAAt((style.Width-dividerWidth)/2-5, yCenter)
	if left.A != 0 {
		t.Fatalf("pixel left of divider not transparent, alpha = %d", left.A)
	}
}
