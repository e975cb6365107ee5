package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

type Config struct {
	// Server
	Port                string
	Env                 string
	WriteTimeoutSeconds int

	// Language model
	LLMProvider       string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	GeminiAPIKey      string
	GeminiModel       string

	// Pexels
	PexelsAPIKey           string
	PexelsBaseURL          string
	ImageLookupConcurrency int

	// Redis (optional, backs the rate limiter when set)
	RedisURL string

	// Rate limiting
	GenerateRateLimit int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                   getEnvOrDefault("PORT", "8000"),
		Env:                    getEnvOrDefault("ENV", "development"),
		WriteTimeoutSeconds:    getEnvAsIntOrDefault("WRITE_TIMEOUT_SECONDS", 300),
		LLMProvider:            getEnvOrDefault("LLM_PROVIDER", ProviderOpenRouter),
		OpenRouterModel:        getEnvOrDefault("OPENROUTER_MODEL", "google/gemini-2.0-flash-exp:free"),
		OpenRouterBaseURL:      getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		GeminiModel:            getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		PexelsAPIKey:           getEnvOrDefault("PEXELS_API_KEY", ""),
		PexelsBaseURL:          getEnvOrDefault("PEXELS_BASE_URL", "https://api.pexels.com/v1"),
		ImageLookupConcurrency: getEnvAsIntOrDefault("IMAGE_LOOKUP_CONCURRENCY", 3),
		RedisURL:               getEnvOrDefault("REDIS_URL", ""),
		GenerateRateLimit:      getEnvAsIntOrDefault("GENERATE_RATE_LIMIT", 20),
	}

	// Only the credential of the selected provider is required
	switch cfg.LLMProvider {
	case ProviderOpenRouter:
		cfg.OpenRouterAPIKey = mustGetEnv("OPENROUTER_API_KEY")
	case ProviderGemini:
		cfg.GeminiAPIKey = mustGetEnv("GEMINI_API_KEY")
	default:
		panic(fmt.Sprintf("unsupported LLM_PROVIDER %q", cfg.LLMProvider))
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
