package overlay

import (
	"fmt"
	"image/color"
	"strings"
)

// WrapLines splits text into lines of at most wordsPerLine words.
func WrapLines(text string, wordsPerLine int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if wordsPerLine < 1 {
		wordsPerLine = 1
	}

	lines := make([]string, 0, (len(words)+wordsPerLine-1)/wordsPerLine)
	for i := 0; i < len(words); i += wordsPerLine {
		end := i + wordsPerLine
		if end > len(words) {
			end = len(words)
		}
		lines = append(lines, strings.Join(words[i:end], " "))
	}
	return lines
}

// ParseHex converts "#RRGGBB" to an opaque NRGBA color.
func ParseHex(hex string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("bad hex color %q", hex)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("bad hex color %q: %w", hex, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// mustHex is ParseHex for trusted style constants; bad input yields white.
func mustHex(hex string) color.NRGBA {
	c, err := ParseHex(hex)
	if err != nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return c
}

// withAlpha returns the color with its alpha scaled by opacity (0..1).
func withAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(opacity * 255)
	return c
}
