package config

import "time"

// Video output constants
const (
	// VideoWidth and VideoHeight define the 9:16 portrait frame
	VideoWidth  = 1080
	VideoHeight = 1920

	// VideoFPS is the output frame rate
	VideoFPS = 30

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoBitrate is the video quality bitrate
	VideoBitrate = "4000k"
)

// Duration constraints (YouTube Shorts must stay under 60 seconds)
const (
	MinDurationSeconds = 30.0
	MaxDurationSeconds = 58.0

	// CTATailSeconds is the breathing room appended after narration ends
	CTATailSeconds = 4.0
)

// Narration assembly: fixed silences around each spoken segment, in order
const (
	LeadSilenceMS        = 500
	AfterHookSilenceMS   = 1200
	AfterQuoteSilenceMS  = 800
	AfterAuthorSilenceMS = 1500
	TrailSilenceMS       = 800
)

// Stock footage acquisition
const (
	// CacheHitProbability is the chance of trying cached clips before remote search
	CacheHitProbability = 0.20

	// MaxRemoteAttempts caps distinct search queries per acquisition call
	MaxRemoteAttempts = 3

	// CacheMaxClips bounds the on-disk clip cache; oldest-modified evicted first
	CacheMaxClips = 20

	// Minimum portrait resolution for a downloaded clip
	MinClipWidth  = 720
	MinClipHeight = 1280

	// Remote search parameters
	SearchPerPage     = 10
	SearchMinDuration = 15
	SearchMaxDuration = 90
	SearchOrientation = "portrait"
)

// Content filter
const (
	// FilterSampleFrames is how many evenly spaced frames are checked per clip
	FilterSampleFrames = 5

	// FilterSampleSpanStart/End bound the sampled region of the clip
	FilterSampleSpanStart = 0.1
	FilterSampleSpanEnd   = 0.9
)

// StockSearchQueries are the dark/cinematic search terms for the house aesthetic
var StockSearchQueries = []string{
	"dark clouds dramatic vertical",
	"ocean storm vertical",
	"ancient ruins vertical",
	"marble statue vertical",
	"rainy window vertical",
	"fog forest dark vertical",
	"fire flames dark vertical",
	"night sky stars vertical",
	"lightning storm vertical",
	"candle flame dark vertical",
	"mountain peak clouds vertical",
	"dark water reflection vertical",
}

// Batch processing
const (
	// BatchDelay is the pause between sequential batch renders
	BatchDelay = 5 * time.Second
)
