package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.DefaultModel != "gpt-4o" {
		t.Fatalf("unexpected default model: %q", cfg.DefaultModel)
	}
	if cfg.EnableWebSearch {
		t.Fatal("web search must default to disabled")
	}
	if cfg.LocalK != 4 || cfg.HybridLocalK != 3 || cfg.HybridWebResults != 3 {
		t.Fatalf("unexpected retrieval defaults: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DEFAULT_MODEL", "gpt-4o-mini")
	t.Setenv("ENABLE_WEB_SEARCH", "true")
	t.Setenv("LLM_TIMEOUT_MS", "1500")

	cfg := Load()
	if cfg.HTTPPort != 9090 {
		t.Fatalf("HTTP_PORT override not applied: %d", cfg.HTTPPort)
	}
	if cfg.DefaultModel != "gpt-4o-mini" {
		t.Fatalf("DEFAULT_MODEL override not applied: %q", cfg.DefaultModel)
	}
	if !cfg.EnableWebSearch {
		t.Fatal("ENABLE_WEB_SEARCH override not applied")
	}
	if cfg.LLMTimeout != 1500*time.Millisecond {
		t.Fatalf("LLM_TIMEOUT_MS override not applied: %v", cfg.LLMTimeout)
	}
}

func TestInvalidEnvValuesIgnored(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("invalid value must fall back to default, got %d", cfg.HTTPPort)
	}
}
