package narration

import (
	"fmt"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"wisdombot/config"
)

// mixdown lays each placed clip over a silent stereo base at its delay and
// mixes without normalization so narration loudness does not depend on the
// input count. The artifact is encoded to a scratch path and renamed into
// place, so outPath never holds a truncated file.
func mixdown(placements []Placement, totalMS int, outPath string) error {
	base := ffmpeg.Input(
		fmt.Sprintf("anullsrc=r=44100:cl=stereo:d=%.3f", float64(totalMS)/1000),
		ffmpeg.KwArgs{"f": "lavfi"},
	)

	streams := []*ffmpeg.Stream{base}
	for _, p := range placements {
		delayed := ffmpeg.Input(p.Path).
			Audio().
			Filter("adelay", ffmpeg.Args{fmt.Sprintf("%d|%d", p.DelayMS, p.DelayMS)})
		streams = append(streams, delayed)
	}

	scratch := outPath + ".partial.mp3"
	err := ffmpeg.Filter(streams, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
		"inputs":             len(streams),
		"duration":           "longest",
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
		return fmt.Errorf("mix narration: %w", err)
	}
	return os.Rename(scratch, outPath)
}
