package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.BotPrefix != "+" {
		t.Errorf("expected default prefix '+', got %q", cfg.BotPrefix)
	}
	if cfg.PassiveEngageChance != 0.05 {
		t.Errorf("expected default passive chance 0.05, got %f", cfg.PassiveEngageChance)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("expected default history limit 10, got %d", cfg.HistoryLimit)
	}
	if cfg.OllamaLocalURL != "http://localhost:11434" {
		t.Errorf("unexpected local ollama URL: %q", cfg.OllamaLocalURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_PREFIX", "!")
	t.Setenv("PASSIVE_ENGAGE_CHANCE", "0.2")
	t.Setenv("HISTORY_LIMIT", "25")

	cfg := Load()
	if cfg.BotPrefix != "!" {
		t.Errorf("prefix override failed: %q", cfg.BotPrefix)
	}
	if cfg.PassiveEngageChance != 0.2 {
		t.Errorf("passive chance override failed: %f", cfg.PassiveEngageChance)
	}
	if cfg.HistoryLimit != 25 {
		t.Errorf("history limit override failed: %d", cfg.HistoryLimit)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PASSIVE_ENGAGE_CHANCE", "muito")
	t.Setenv("HISTORY_LIMIT", "dez")

	cfg := Load()
	if cfg.PassiveEngageChance != 0.05 || cfg.HistoryLimit != 10 {
		t.Errorf("invalid values must fall back to defaults, got %f/%d",
			cfg.PassiveEngageChance, cfg.HistoryLimit)
	}
}

func TestLoadGeminiKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "base")
	t.Setenv("GEMINI_API_KEY_1", "extra1")
	t.Setenv("GEMINI_API_KEY_2", "base")
	t.Setenv("GEMINI_API_KEY_3", "extra3")

	keys := loadGeminiKeys()
	expected := []string{"base", "extra1", "extra3"}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %v", len(expected), keys)
	}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Errorf("key %d: expected %q, got %q", i, expected[i], keys[i])
		}
	}
}

func TestLoadGeminiKeysStopAtGap(t *testing.T) {
	t.Setenv("GEMINI_API_KEY_1", "k1")
	t.Setenv("GEMINI_API_KEY_3", "k3")

	keys := loadGeminiKeys()
	for _, k := range keys {
		if k == "k3" {
			t.Error("sequential loading must stop at the first gap")
		}
	}
}
