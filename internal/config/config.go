// Package config reads the server's environment. A .env file in the
// working directory is merged in first, so local development does not need
// exported variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Config carries every knob the server reads at startup. Model names are
// left empty here when unset; the llm package applies its own defaults.
type Config struct {
	Port     string
	LogLevel string

	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	SessionStore string
	RedisAddr    string
	SessionTTL   time.Duration

	DatabaseURL   string
	NotifyChannel string
}

// Load builds the configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),

		SessionStore: strings.ToLower(getEnv("SESSION_STORE", "memory")),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		SessionTTL:   getDurationEnv("SESSION_TTL", 30*time.Minute),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		NotifyChannel: getEnv("ARCHIVE_NOTIFY_CHANNEL", "report_events"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
