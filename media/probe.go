// Package media wraps the ffmpeg probe/extract primitives shared by the
// narration, background and compose packages.
package media

import (
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeData struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func probe(path string) (*probeData, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var data probeData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parse probe output for %s: %w", path, err)
	}
	return &data, nil
}

// Duration returns the container duration of a media file in seconds.
func Duration(path string) (float64, error) {
	data, err := probe(path)
	if err != nil {
		return 0, err
	}
	if data.Format.Duration == "" {
		return 0, fmt.Errorf("no duration reported for %s", path)
	}
	secs, err := strconv.ParseFloat(data.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("bad duration %q for %s: %w", data.Format.Duration, path, err)
	}
	return secs, nil
}

// Resolution returns the width and height of the first video stream.
func Resolution(path string) (int, int, error) {
	data, err := probe(path)
	if err != nil {
		return 0, 0, err
	}
	for _, s := range data.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			return s.Width, s.Height, nil
		}
	}
	return 0, 0, fmt.Errorf("no video stream in %s", path)
}
