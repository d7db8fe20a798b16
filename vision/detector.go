// Package vision screens background footage for people. Clips with visible
// faces break the contemplative look, so sampled frames are run through a
// pure-Go face cascade before a clip is accepted.
package vision

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"

	"wisdombot/logx"
)

const (
	// minFaceSize in pixels; stock footage faces smaller than this are
	// too far away to matter
	minFaceSize = 60
	maxFaceSize = 1000

	shiftFactor = 0.1
	scaleFactor = 1.1

	// clusterOverlap merges overlapping raw detections
	clusterOverlap = 0.2

	// minQuality is the cascade confidence below which a detection is noise
	minQuality float32 = 5.0
)

// Detector wraps an unpacked face cascade. A zero Detector is valid and
// reports nothing, so a missing cascade asset degrades to accepting clips
// instead of failing the run.
type Detector struct {
	classifier *pigo.Pigo
}

// New loads and unpacks the cascade at path. A missing or corrupt cascade
// is logged and yields an unavailable detector rather than an error.
func New(cascadePath string) *Detector {
	log := logx.WithComponent("vision")

	data, err := os.ReadFile(cascadePath)
	if err != nil {
		log.Warn().Err(err).Str("cascade", cascadePath).Msg("face cascade unavailable, clip screening disabled")
		return &Detector{}
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		log.Warn().Err(err).Str("cascade", cascadePath).Msg("face cascade unreadable, clip screening disabled")
		return &Detector{}
	}

	return &Detector{classifier: classifier}
}

// Available reports whether the cascade loaded and detection can run.
func (d *Detector) Available() bool {
	return d.classifier != nil
}

// HasPerson reports whether the image contains at least one face above the
// quality threshold. Always false when the detector is unavailable.
func (d *Detector) HasPerson(img image.Image) bool {
	if d.classifier == nil {
		return false
	}

	bounds := img.Bounds()
	params := pigo.CascadeParams{
		MinSize:     minFaceSize,
		MaxSize:     maxFaceSize,
		ShiftFactor: shiftFactor,
		ScaleFactor: scaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   bounds.Dy(),
			Cols:   bounds.Dx(),
			Dim:    bounds.Dx(),
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, clusterOverlap)

	for _, det := range dets {
		if det.Q >= minQuality {
			return true
		}
	}
	return false
}

// HasPersonInFile decodes the image at path and runs detection on it.
func (d *Detector) HasPersonInFile(path string) (bool, error) {
	if d.classifier == nil {
		return false, nil
	}

	img, err := pigo.GetImage(path)
	if err != nil {
		return false, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return d.HasPerson(img), nil
}
