package config

// Style is the immutable bag of visual constants consumed by the rendering
// components. Callers copy the default and tweak fields per run if needed;
// a Style is never mutated after construction.
type Style struct {
	// Frame geometry
	Width  int
	Height int
	FPS    int

	// Font files; missing files fall back to the bundled Go fonts
	QuoteFontPath    string
	AuthorFontPath   string
	BrandingFontPath string

	// Colors (hex strings)
	QuoteColor      string
	AuthorColor     string
	BrandingColor   string
	ReflectionColor string
	AccentColor     string

	// Background grading
	BackgroundBrightness  float64
	BackgroundTint        [3]uint8
	BackgroundTintOpacity float64
	VignetteStrength      float64

	// Text effects
	StrokeColor   string
	StrokeWidth   int
	ShadowColor   string
	ShadowOffset  [2]int
	ShadowOpacity float64
	GlowRadius    int
	GlowOpacity   float64

	// Decorative quotation mark above the quote
	QuoteMarkSize    int
	QuoteMarkOpacity float64

	// Layout
	TextMaxWidth     int
	AuthorFontSize   int
	BrandingFontSize int
	BrandingText     string
	CTAText          string

	// Vertical anchor points as ratios of frame height
	HookYRatio       float64
	QuoteYRatio      float64
	ReflectionYRatio float64
	AuthorYRatio     float64
	CTAYRatio        float64
	BrandingYRatio   float64

	// Timing (seconds)
	TextFadeIn  float64
	TextFadeOut float64
	VideoFade   float64

	// Ken Burns zoom target
	KenBurnsZoom float64

	// Ambient bed mix
	AmbientVolumeRatio float64
	AmbientFadeInMS    int
	AmbientFadeOutMS   int
}

// DefaultStyle returns the house style: dark, premium, cinematic.
func DefaultStyle() Style {
	return Style{
		Width:  VideoWidth,
		Height: VideoHeight,
		FPS:    VideoFPS,

		QuoteFontPath:    "assets/fonts/PlayfairDisplay-Bold.ttf",
		AuthorFontPath:   "assets/fonts/Lato-Italic.ttf",
		BrandingFontPath: "assets/fonts/Lato-Regular.ttf",

		QuoteColor:      "#FFFFFF",
		AuthorColor:     "#E8C547",
		BrandingColor:   "#8899AA",
		ReflectionColor: "#C8C8D0",
		AccentColor:     "#D4AF37",

		BackgroundBrightness:  0.45,
		BackgroundTint:        [3]uint8{8, 6, 18},
		BackgroundTintOpacity: 0.30,
		VignetteStrength:      0.6,

		StrokeColor:   "#000000",
		StrokeWidth:   3,
		ShadowColor:   "#000000",
		ShadowOffset:  [2]int{3, 3},
		ShadowOpacity: 0.85,
		GlowRadius:    12,
		GlowOpacity:   0.35,

		QuoteMarkSize:    100,
		QuoteMarkOpacity: 0.20,

		TextMaxWidth:     VideoWidth * 82 / 100,
		AuthorFontSize:   36,
		BrandingFontSize: 28,
		BrandingText:     "Stoic Wisdom",
		CTAText:          "Follow for daily wisdom",

		HookYRatio:       0.35,
		QuoteYRatio:      0.38,
		ReflectionYRatio: 0.45,
		AuthorYRatio:     0.62,
		CTAYRatio:        0.88,
		BrandingYRatio:   0.92,

		TextFadeIn:  0.8,
		TextFadeOut: 0.6,
		VideoFade:   0.8,

		KenBurnsZoom: 1.10,

		AmbientVolumeRatio: 0.08,
		AmbientFadeInMS:    2000,
		AmbientFadeOutMS:   2000,
	}
}

// FontTier maps a quote word count to font size and wrap width. Longer quotes
// get progressively smaller glyphs and more words per line.
type FontTier struct {
	MaxWords     int
	FontSize     int
	WordsPerLine int
}

// FontTiers in ascending word-count order. Upper bounds are inclusive:
// a 12-word quote renders with the short tier, a 13-word quote with medium.
var FontTiers = []FontTier{
	{MaxWords: 12, FontSize: 72, WordsPerLine: 4},
	{MaxWords: 25, FontSize: 58, WordsPerLine: 5},
	{MaxWords: 45, FontSize: 48, WordsPerLine: 6},
	{MaxWords: 999, FontSize: 40, WordsPerLine: 7},
}

// FontSettings returns the tier for the given word count, falling back to the
// last tier for anything beyond the table.
func FontSettings(wordCount int) FontTier {
	for _, tier := range FontTiers {
		if wordCount <= tier.MaxWords {
			return tier
		}
	}
	return FontTiers[len(FontTiers)-1]
}
