package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// Entitlement ledger.
	FreeLimit     int
	FloodInterval time.Duration
	ResetWindow   time.Duration

	// Synthesis queue.
	MaxConcurrentSynth int
	MaxTextLength      int
	SampleRate         int

	// Synthesis backend.
	TTSBaseURL string
	TTSAPIKey  string
	TTSModel   string
	TTSTimeout time.Duration

	DefaultLocale string
	GeoIPDBPath   string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FreeLimit:          getEnvInt("FREE_LIMIT", 30),
		FloodInterval:      time.Second * time.Duration(getEnvInt("FLOOD_SECONDS", 5)),
		ResetWindow:        24 * time.Hour * time.Duration(getEnvInt("FREE_RESET_DAYS", 7)),
		MaxConcurrentSynth: getEnvInt("MAX_CONCURRENT_SYNTH", 3),
		MaxTextLength:      getEnvInt("MAX_TEXT_LENGTH", 1000),
		SampleRate:         getEnvInt("SAMPLE_RATE", 48000),
		TTSBaseURL:         getEnv("TTS_BASE_URL", "http://localhost:5002"),
		TTSAPIKey:          os.Getenv("TTS_API_KEY"),
		TTSModel:           getEnv("TTS_MODEL", "silero_v3"),
		TTSTimeout:         time.Second * time.Duration(getEnvInt("TTS_TIMEOUT_SECONDS", 60)),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "ru"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.FreeLimit < 0 {
		return nil, fmt.Errorf("FREE_LIMIT must not be negative")
	}
	if cfg.MaxConcurrentSynth <= 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_SYNTH must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
