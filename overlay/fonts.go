package overlay

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontSet loads and caches opentype faces by (path, size). Missing or broken
// font files fall back to the bundled Go fonts so rendering never fails on a
// bare checkout.
type fontSet struct {
	mu    sync.Mutex
	data  map[string][]byte
	faces map[faceKey]font.Face
}

type faceKey struct {
	path string
	size int
}

func newFontSet() *fontSet {
	return &fontSet{
		data:  make(map[string][]byte),
		faces: make(map[faceKey]font.Face),
	}
}

// Face returns a hinted face for the font file at path in the given pixel size.
func (fs *fontSet) Face(path string, size int) (font.Face, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := faceKey{path: path, size: size}
	if face, ok := fs.faces[key]; ok {
		return face, nil
	}

	data, ok := fs.data[path]
	if !ok {
		b, err := os.ReadFile(path)
		if err != nil {
			b = fallbackTTF(path)
		}
		data = b
		fs.data[path] = data
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		// Corrupt custom font; retry with the bundled fallback.
		parsed, err = opentype.Parse(fallbackTTF(path))
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		fs.data[path] = fallbackTTF(path)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build face %s@%d: %w", path, size, err)
	}

	fs.faces[key] = face
	return face, nil
}

// fallbackTTF picks a bundled Go font that roughly matches the requested
// file's role, judged from its name.
func fallbackTTF(path string) []byte {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "italic"):
		return goitalic.TTF
	case strings.Contains(lower, "bold"):
		return gobold.TTF
	default:
		return goregular.TTF
	}
}
