package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds runtime settings resolved from the environment. Call Load once
// after godotenv has run; visual constants live in Style, not here.
type Config struct {
	// Asset directories
	AssetsDir      string
	FontsDir       string
	BackgroundsDir string // static local pool (last-resort backgrounds)
	AmbientDir     string
	CacheDir       string // downloaded stock clips
	CascadePath    string // pigo face cascade; a missing file disables clip screening

	// Output directories
	OutputDir     string
	VideosDir     string
	AudioDir      string
	ThumbnailsDir string

	// Quote database
	QuotesPath       string
	PhilosophersPath string

	// Stock footage provider
	PexelsAPIKey string

	// TTS backend
	TTSBaseURL string
	TTSAPIKey  string
	TTSVoice   string
	TTSRate    string
	TTSPitch   string

	// Progress store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional LLM narration + embeddings
	CohereAPIKey string

	// Artifact archive
	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	// Upload
	YouTubeCredentials string
	YouTubePrivacy     string

	// Upload notifications
	TelegramBotToken string
	TelegramChatID   string

	// Render daemon
	ListenAddr   string
	RenderdURL   string // where the TUI finds the daemon
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	CronSpec     string

	// Feature toggles
	EnableKenBurns bool
	SkipUpload     bool
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
	assets := getEnv("ASSETS_DIR", "assets")
	output := getEnv("OUTPUT_DIR", "outputs")

	return &Config{
		AssetsDir:      assets,
		FontsDir:       getEnv("FONTS_DIR", filepath.Join(assets, "fonts")),
		BackgroundsDir: getEnv("BACKGROUNDS_DIR", filepath.Join(assets, "backgrounds")),
		AmbientDir:     getEnv("AMBIENT_DIR", filepath.Join(assets, "ambient")),
		CacheDir:       getEnv("STOCK_CACHE_DIR", filepath.Join(assets, "stock_cache")),
		CascadePath:    getEnv("FACE_CASCADE_PATH", filepath.Join(assets, "facefinder")),

		OutputDir:     output,
		VideosDir:     getEnv("VIDEOS_DIR", filepath.Join(output, "videos")),
		AudioDir:      getEnv("AUDIO_DIR", filepath.Join(output, "audio")),
		ThumbnailsDir: getEnv("THUMBNAILS_DIR", filepath.Join(output, "thumbnails")),

		QuotesPath:       getEnv("QUOTES_PATH", "database/quotes_database.json"),
		PhilosophersPath: getEnv("PHILOSOPHERS_PATH", "database/philosophers.json"),

		PexelsAPIKey: os.Getenv("PEXELS_API_KEY"),

		TTSBaseURL: getEnv("TTS_BASE_URL", "http://localhost:5002/api/tts"),
		TTSAPIKey:  os.Getenv("TTS_API_KEY"),
		TTSVoice:   getEnv("TTS_VOICE", "en-US-GuyNeural"),
		TTSRate:    getEnv("TTS_RATE", "-5%"),
		TTSPitch:   getEnv("TTS_PITCH", "-2Hz"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CohereAPIKey: os.Getenv("COHERE_API_KEY"),

		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:       normalizePrefix(os.Getenv("S3_PREFIX")),
		S3UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),

		YouTubeCredentials: getEnv("YOUTUBE_CREDENTIALS", "service-account.json"),
		YouTubePrivacy:     getEnv("YOUTUBE_PRIVACY", "public"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		ListenAddr:   getEnv("RENDERD_ADDR", ":8090"),
		RenderdURL:   getEnv("RENDERD_URL", "http://localhost:8090"),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"), ","),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "render-requests"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "wisdombot-renderd"),
		CronSpec:     getEnv("RENDER_CRON", "0 9 * * *"),

		EnableKenBurns: getEnvBool("ENABLE_KEN_BURNS", true),
		SkipUpload:     getEnvBool("SKIP_UPLOAD", false),
	}
}

// EnsureDirs creates every output/asset directory that must exist before a run.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.FontsDir, c.BackgroundsDir, c.AmbientDir, c.CacheDir,
		c.OutputDir, c.VideosDir, c.AudioDir, c.ThumbnailsDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return strings.Trim(p, "/") + "/"
}
