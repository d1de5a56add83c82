package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the chat service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string
	LogLevel                 string

	// AllowedOrigins lists the marketplace origins allowed to embed the
	// widget. Empty means same-host only; AllowAnyOrigin disables the check.
	AllowedOrigins []string
	AllowAnyOrigin bool

	DatabaseURL    string
	LeadStore      string
	LeadSQLitePath string

	ListingSearchURL   string
	ListingCatalogPath string
	SearchTimeout      time.Duration
	SearchLimit        int

	AIFallbackMode    string
	AIFallbackHTTPURL string
	AIFallbackStrict  bool
	AITimeout         time.Duration
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string

	LeadTimeout    time.Duration
	StorageTimeout time.Duration

	TTSMode    string
	TTSHTTPURL string
	TTSVoiceID string
	TTSTimeout time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "realtybot"),
		LogLevel:                 envOrDefault("LOG_LEVEL", "info"),
		AllowedOrigins:           listFromEnv("APP_ALLOWED_ORIGINS"),
		DatabaseURL:              stringsTrimSpace("DATABASE_URL"),
		LeadStore:                envOrDefault("LEAD_STORE", "auto"),
		LeadSQLitePath:           stringsTrimSpace("LEAD_SQLITE_PATH"),
		ListingSearchURL:         stringsTrimSpace("LISTING_SEARCH_URL"),
		ListingCatalogPath:       stringsTrimSpace("LISTING_CATALOG_PATH"),
		AIFallbackMode:           envOrDefault("AI_FALLBACK_MODE", "auto"),
		AIFallbackHTTPURL:        stringsTrimSpace("AI_FALLBACK_HTTP_URL"),
		OpenAIAPIKey:             stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIModel:              envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:            stringsTrimSpace("OPENAI_BASE_URL"),
		TTSMode:                  envOrDefault("TTS_MODE", "auto"),
		TTSHTTPURL:               stringsTrimSpace("TTS_HTTP_URL"),
		TTSVoiceID:               stringsTrimSpace("TTS_VOICE_ID"),
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
		SearchTimeout:            5 * time.Second,
		SearchLimit:              10,
		AITimeout:                8 * time.Second,
		LeadTimeout:              5 * time.Second,
		StorageTimeout:           2 * time.Second,
		TTSTimeout:               10 * time.Second,
	}
	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"APP_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
		{"APP_SESSION_INACTIVITY_TIMEOUT", &cfg.SessionInactivityTimeout},
		{"LISTING_SEARCH_TIMEOUT", &cfg.SearchTimeout},
		{"AI_FALLBACK_TIMEOUT", &cfg.AITimeout},
		{"LEAD_SAVE_TIMEOUT", &cfg.LeadTimeout},
		{"STORAGE_WRITE_TIMEOUT", &cfg.StorageTimeout},
		{"TTS_TIMEOUT", &cfg.TTSTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = durationFromEnv(d.key, *d.dst); err != nil {
			return Config{}, err
		}
		if *d.dst <= 0 {
			return Config{}, fmt.Errorf("%s must be positive", d.key)
		}
	}
	cfg.SearchLimit, err = intFromEnv("LISTING_SEARCH_LIMIT", cfg.SearchLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.AIFallbackStrict, err = boolFromEnv("AI_FALLBACK_HTTP_STRICT", cfg.AIFallbackStrict)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.SearchLimit <= 0 || cfg.SearchLimit > 50 {
		return Config{}, fmt.Errorf("LISTING_SEARCH_LIMIT must be between 1 and 50")
	}
	switch strings.ToLower(cfg.LeadStore) {
	case "auto", "memory", "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("LEAD_STORE must be auto, memory, postgres or sqlite")
	}
	if strings.EqualFold(cfg.LeadStore, "sqlite") && cfg.LeadSQLitePath == "" {
		cfg.LeadSQLitePath = "realtybot-leads.db"
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return trimSpace(os.Getenv(key))
}

func trimSpace(v string) string {
	for len(v) > 0 && (v[0] == ' ' || v[0] == '\n' || v[0] == '\t' || v[0] == '\r') {
		v = v[1:]
	}
	for len(v) > 0 {
		c := v[len(v)-1]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			v = v[:len(v)-1]
			continue
		}
		break
	}
	return v
}

func listFromEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if v := trimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
