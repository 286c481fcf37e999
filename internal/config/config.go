package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	DiscordToken string
	BotPrefix    string
	OwnerID      string

	// Gemini (cloud tier)
	GeminiModel   string
	GeminiBaseURL string
	GeminiKeys    []string // rotation pool, loaded from GEMINI_API_KEY + GEMINI_API_KEY_1..N

	// Ollama (remote and local fallback tiers)
	OllamaRemoteURL   string
	OllamaRemoteModel string
	OllamaLocalURL    string
	OllamaLocalModel  string
	EmbedModel        string

	// Cognition tuning
	PassiveEngageChance float64 // chance of jumping into persona-bound channels unprompted
	HistoryLimit        int

	// Storage
	DataDir string

	// Observability
	MetricsPort string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		DiscordToken: getEnv("DISCORD_TOKEN", ""),
		BotPrefix:    getEnv("BOT_PREFIX", "+"),
		OwnerID:      getEnv("OWNER_ID", ""),

		GeminiModel:   getEnv("GEMINI_MODEL_NAME", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		GeminiKeys:    loadGeminiKeys(),

		OllamaRemoteURL:   getEnv("OLLAMA_REMOTE_URL", ""),
		OllamaRemoteModel: getEnv("MODEL_SMART_REMOTE", ""),
		OllamaLocalURL:    getEnv("OLLAMA_LOCAL_URL", "http://localhost:11434"),
		OllamaLocalModel:  getEnv("MODEL_FAST_LOCAL", "qwen2.5:1.5b"),
		EmbedModel:        getEnv("MODEL_EMBED_LOCAL", "nomic-embed-text"),

		PassiveEngageChance: getFloatEnv("PASSIVE_ENGAGE_CHANCE", 0.05),
		HistoryLimit:        getIntEnv("HISTORY_LIMIT", 10),

		DataDir: getEnv("DATA_DIR", "./Data"),

		MetricsPort: getEnv("METRICS_PORT", ""),
	}
}

// loadGeminiKeys collects the sequential key pool (GEMINI_API_KEY_1...) plus the
// default single key, deduplicated, preserving order.
func loadGeminiKeys() []string {
	var keys []string
	seen := make(map[string]bool)

	appendKey := func(raw string) {
		key := strings.TrimSpace(raw)
		if key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		appendKey(k)
	} else if k := os.Getenv("GOOGLE_API_KEY"); k != "" {
		appendKey(k)
	}

	for i := 1; ; i++ {
		k := os.Getenv("GEMINI_API_KEY_" + strconv.Itoa(i))
		if k == "" {
			break
		}
		appendKey(k)
	}

	return keys
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
