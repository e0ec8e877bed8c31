package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Semantic scorer; keyword ranking is used when EmbedEndpoint is empty.
	EmbedEndpoint  string
	EmbedModel     string
	EmbedBatchSize int
	EmbedTimeout   time.Duration

	// Layout heuristics
	LineTolerance      float64
	TitleSizeTolerance float64
	HeadingMinFontSize float64

	// Persona analysis
	TopSections      int
	TopSubsections   int
	PersonaVocabFile string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentOutline int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Files
	UploadDir string
	OutputDir string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCOUTLINE_API_KEY"),

		EmbedEndpoint:  os.Getenv("EMBED_ENDPOINT"),
		EmbedModel:     envOr("EMBED_MODEL", "all-MiniLM-L6-v2"),
		EmbedBatchSize: envInt("EMBED_BATCH_SIZE", 32),
		EmbedTimeout:   envDuration("EMBED_TIMEOUT", 30*time.Second),

		LineTolerance:      envFloat("LINE_TOLERANCE", 2),
		TitleSizeTolerance: envFloat("TITLE_SIZE_TOLERANCE", 1),
		HeadingMinFontSize: envFloat("HEADING_MIN_FONT_SIZE", 12),

		TopSections:      envInt("TOP_SECTIONS", 15),
		TopSubsections:   envInt("TOP_SUBSECTIONS", 5),
		PersonaVocabFile: os.Getenv("PERSONA_VOCAB_FILE"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentOutline: envInt("MAX_CONCURRENT_OUTLINE", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		UploadDir: envOr("UPLOAD_DIR", "uploads"),
		OutputDir: envOr("OUTPUT_DIR", "output"),
	}

	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 32
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 30 * time.Second
	}
	if cfg.LineTolerance < 0 {
		cfg.LineTolerance = 2
	}
	if cfg.TitleSizeTolerance < 0 {
		cfg.TitleSizeTolerance = 1
	}
	if cfg.HeadingMinFontSize <= 0 {
		cfg.HeadingMinFontSize = 12
	}
	if cfg.TopSections <= 0 {
		cfg.TopSections = 15
	}
	if cfg.TopSubsections <= 0 {
		cfg.TopSubsections = 5
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentOutline <= 0 {
		cfg.MaxConcurrentOutline = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	if c.PersonaVocabFile != "" {
		if _, err := os.Stat(c.PersonaVocabFile); err != nil {
			return fmt.Errorf("PERSONA_VOCAB_FILE: %w", err)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
