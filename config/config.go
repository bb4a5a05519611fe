package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the process configuration, sourced from the environment.
type Config struct {
	// Port the HTTP server listens on.
	Port int
	// TMDBAPIKey authenticates upstream provider calls. When blank every
	// miss-path fetch fails upstream; the service still serves local data.
	TMDBAPIKey string
	// TMDBBaseURL overrides the provider base URL (used by tests).
	TMDBBaseURL string
	// EmbedBaseURL is the base of constructed stream URLs.
	EmbedBaseURL string
	// DataDir holds favorites persistence. Blank keeps favorites in memory.
	DataDir string
	// DatabasePath selects the sqlite catalog store. Blank keeps the
	// catalog in memory.
	DatabasePath string
	// LogFile enables rotating file logging when set.
	LogFile string
}

const defaultEmbedBaseURL = "https://vidsrc.to/embed"

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:         envInt("PORT", 8080),
		TMDBAPIKey:   env("TMDB_API_KEY", ""),
		TMDBBaseURL:  env("TMDB_BASE_URL", ""),
		EmbedBaseURL: env("EMBED_BASE_URL", defaultEmbedBaseURL),
		DataDir:      env("DATA_DIR", ""),
		DatabasePath: env("DATABASE_PATH", ""),
		LogFile:      env("LOG_FILE", ""),
	}
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
