package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	GitHubClientID     string
	GitHubClientSecret string
	GitHubToken        string
	GitHubBaseURL      string

	// LLMProvider forces "groq" or "gemini". Empty means pick by credential.
	LLMProvider string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	SurrealURL  string
	SurrealNS   string
	SurrealDB   string
	SurrealUser string
	SurrealPass string

	LanguageConcurrency int
	LogLevel            string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubToken:        os.Getenv("GITHUB_TOKEN"),
		GitHubBaseURL:      os.Getenv("GITHUB_BASE_URL"),

		LLMProvider: strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SurrealURL:  os.Getenv("SURREAL_URL"),
		SurrealNS:   getEnv("SURREAL_NS", "repofit"),
		SurrealDB:   getEnv("SURREAL_DB", "repofit"),
		SurrealUser: os.Getenv("SURREAL_USER"),
		SurrealPass: os.Getenv("SURREAL_PASS"),

		LanguageConcurrency: getEnvAsInt("LANGUAGE_CONCURRENCY", 1),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	// The SDK appends /rpc automatically
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/rpc")
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/")

	if cfg.LanguageConcurrency < 1 {
		cfg.LanguageConcurrency = 1
	}

	return cfg
}

// HistoryEnabled reports whether a SurrealDB endpoint is configured.
func (c *Config) HistoryEnabled() bool {
	return c.SurrealURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
