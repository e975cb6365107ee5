package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_OpenRouterRequiresKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when OPENROUTER_API_KEY is missing")
		}
	}()

	Load()
}

func TestLoad_GeminiDoesNotNeedOpenRouterKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("PEXELS_API_KEY", "")

	cfg := Load()
	if cfg.GeminiAPIKey != "gem-key" {
		t.Errorf("Expected GeminiAPIKey 'gem-key', got %q", cfg.GeminiAPIKey)
	}
	if cfg.OpenRouterAPIKey != "" {
		t.Errorf("Expected empty OpenRouterAPIKey, got %q", cfg.OpenRouterAPIKey)
	}
	if cfg.PexelsAPIKey != "" {
		t.Errorf("Expected missing Pexels key to stay empty, got %q", cfg.PexelsAPIKey)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("PORT", "")
	t.Setenv("OPENROUTER_MODEL", "")
	t.Setenv("IMAGE_LOOKUP_CONCURRENCY", "")

	cfg := Load()
	if cfg.LLMProvider != ProviderOpenRouter {
		t.Errorf("Expected provider %q, got %q", ProviderOpenRouter, cfg.LLMProvider)
	}
	if cfg.Port != "8000" {
		t.Errorf("Expected port '8000', got %q", cfg.Port)
	}
	if cfg.OpenRouterModel != "google/gemini-2.0-flash-exp:free" {
		t.Errorf("Unexpected default model %q", cfg.OpenRouterModel)
	}
	if cfg.ImageLookupConcurrency != 3 {
		t.Errorf("Expected concurrency 3, got %d", cfg.ImageLookupConcurrency)
	}
}

func TestLoad_UnknownProviderPanics(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "llama")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for unsupported provider")
		}
	}()

	Load()
}
