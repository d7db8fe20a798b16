package compose

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"wisdombot/config"
	"wisdombot/logx"
)

// ambientExtensions lists the playable bed formats, matched case-insensitively.
var ambientExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".ogg": true,
	".m4a": true,
}

// PickAmbient returns a random ambient file from dir, or "" when the
// directory is missing or holds nothing playable.
func PickAmbient(dir string, rnd *rand.Rand) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ambientExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return ""
	}
	return files[rnd.Intn(len(files))]
}

// BuildAudioTrack produces the final audio: narration laid over a looped,
// attenuated ambient bed faded at both ends. With no ambient file, or when
// the mix fails, the narration path is returned unchanged; a broken bed never
// blocks a render.
func BuildAudioTrack(narrationPath, ambientPath string, total float64, style config.Style, outPath string) string {
	if ambientPath == "" {
		return narrationPath
	}
	if err := mixAmbient(narrationPath, ambientPath, total, style, outPath); err != nil {
		log := logx.WithComponent("compose")
		log.Warn().Err(err).
			Str("ambient", filepath.Base(ambientPath)).
			Msg("ambient mix failed, using narration only")
		return narrationPath
	}
	return outPath
}

// mixAmbient loops the bed to the exact video length, drops it to the bed
// volume, fades it at both ends and mixes the narration on top at full level.
// The bed stream comes first so the mix length follows the bed, which already
// matches the video; an over-long narration is truncated with it.
func mixAmbient(narrationPath, ambientPath string, total float64, style config.Style, outPath string) error {
	fadeIn := float64(style.AmbientFadeInMS) / 1000
	fadeOut := float64(style.AmbientFadeOutMS) / 1000

	bed := ffmpeg.Input(ambientPath, ffmpeg.KwArgs{"stream_loop": -1}).
		Audio().
		Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": fmt.Sprintf("%.3f", total)}).
		Filter("volume", ffmpeg.Args{fmt.Sprintf("%.3f", style.AmbientVolumeRatio)}).
		Filter("afade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "in", "st": 0, "d": fadeIn}).
		Filter("afade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "out", "st": total - fadeOut, "d": fadeOut})

	narration := ffmpeg.Input(narrationPath).Audio()

	scratch := outPath + ".partial.mp3"
	err := ffmpeg.Filter([]*ffmpeg.Stream{bed, narration}, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
		"inputs":             2,
		"duration":           "first",
		"dropout_transition": 0,
		"normalize":          0,
	}).
		Output(scratch, ffmpeg.KwArgs{
			"c:a": "libmp3lame",
			"b:a": config.AudioBitrate,
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		os.Remove(scratch)
		return fmt.Errorf("mix ambient bed: %w", err)
	}
	return os.Rename(scratch, outPath)
}
