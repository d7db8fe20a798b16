package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"wisdombot/media"
	"wisdombot/types"
)

// Thumbnail captures the frame at the quote's midpoint from a finished video
// and writes it as a JPEG poster. Without a spoken quote the frame is taken
// one second in.
func Thumbnail(videoPath string, tl *types.NarrationTimeline, outPath string) error {
	at := 1.0
	if quote, ok := tl.Segment(types.SegmentQuote); ok && quote.End > quote.Start {
		at = (quote.Start + quote.End) / 2
	}

	framePath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + "_frame.png"
	if err := media.ExtractFrame(videoPath, at, framePath); err != nil {
		return fmt.Errorf("extract poster frame: %w", err)
	}
	defer os.Remove(framePath)

	img, err := imaging.Open(framePath)
	if err != nil {
		return fmt.Errorf("decode poster frame: %w", err)
	}
	return imaging.Save(img, outPath, imaging.JPEGQuality(90))
}
