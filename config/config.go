// Package config provides configuration for the QA backend.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Storage
	SessionsDir string `yaml:"sessions_dir"`
	IndexPath   string `yaml:"index_path"`

	// Completion settings
	DefaultModel       string        `yaml:"default_model"`
	DefaultTemperature float64       `yaml:"default_temperature"`
	OpenAIAPIKey       string        `yaml:"openai_api_key"`
	OpenAIBaseURL      string        `yaml:"openai_base_url"`
	LLMTimeout         time.Duration `yaml:"-"`

	// Web search settings
	EnableWebSearch bool          `yaml:"enable_web_search"`
	TavilyAPIKey    string        `yaml:"tavily_api_key"`
	WebCapableModel string        `yaml:"web_capable_model"`
	WebMaxResults   int           `yaml:"web_max_results"`
	SearchTimeout   time.Duration `yaml:"-"`

	// Local retrieval settings
	LocalK           int `yaml:"local_k"`
	HybridLocalK     int `yaml:"hybrid_local_k"`
	HybridWebResults int `yaml:"hybrid_web_results"`

	// Document processing settings
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// Prompt settings
	HistoryTokenBudget int `yaml:"history_token_budget"`

	// Tour guide tools
	AmapAPIKey string `yaml:"amap_api_key"`
}

// Load loads configuration. Precedence, lowest to highest: built-in defaults,
// the optional YAML file named by DOCQA_CONFIG, environment variables. A .env
// file in the working directory is read into the environment first.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: failed to load .env: %v", err)
	}

	cfg := defaults()

	if path := os.Getenv("DOCQA_CONFIG"); path != "" {
		if err := applyYAML(cfg, path); err != nil {
			log.Printf("WARN: failed to load config file %s: %v", path, err)
		}
	}

	applyEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		HTTPPort:           8080,
		SessionsDir:        "sessions",
		IndexPath:          "index.db",
		DefaultModel:       "gpt-4o",
		DefaultTemperature: 0.7,
		LLMTimeout:         120 * time.Second,
		EnableWebSearch:    false,
		WebCapableModel:    "gpt-4o",
		WebMaxResults:      5,
		SearchTimeout:      30 * time.Second,
		LocalK:             4,
		HybridLocalK:       3,
		HybridWebResults:   3,
		ChunkSize:          1000,
		ChunkOverlap:       200,
		HistoryTokenBudget: 3000,
	}
}

func applyYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.SessionsDir = getEnv("SESSIONS_DIR", cfg.SessionsDir)
	cfg.IndexPath = getEnv("INDEX_PATH", cfg.IndexPath)
	cfg.DefaultModel = getEnv("DEFAULT_MODEL", cfg.DefaultModel)
	cfg.DefaultTemperature = getEnvFloat("DEFAULT_TEMPERATURE", cfg.DefaultTemperature)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.LLMTimeout = time.Duration(getEnvInt("LLM_TIMEOUT_MS", int(cfg.LLMTimeout/time.Millisecond))) * time.Millisecond
	cfg.EnableWebSearch = getEnvBool("ENABLE_WEB_SEARCH", cfg.EnableWebSearch)
	cfg.TavilyAPIKey = getEnv("TAVILY_API_KEY", cfg.TavilyAPIKey)
	cfg.WebCapableModel = getEnv("WEB_CAPABLE_MODEL", cfg.WebCapableModel)
	cfg.WebMaxResults = getEnvInt("WEB_MAX_RESULTS", cfg.WebMaxResults)
	cfg.SearchTimeout = time.Duration(getEnvInt("SEARCH_TIMEOUT_MS", int(cfg.SearchTimeout/time.Millisecond))) * time.Millisecond
	cfg.LocalK = getEnvInt("LOCAL_K", cfg.LocalK)
	cfg.HybridLocalK = getEnvInt("HYBRID_LOCAL_K", cfg.HybridLocalK)
	cfg.HybridWebResults = getEnvInt("HYBRID_WEB_RESULTS", cfg.HybridWebResults)
	cfg.ChunkSize = getEnvInt("CHUNK_SIZE", cfg.ChunkSize)
	cfg.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", cfg.ChunkOverlap)
	cfg.HistoryTokenBudget = getEnvInt("HISTORY_TOKEN_BUDGET", cfg.HistoryTokenBudget)
	cfg.AmapAPIKey = getEnv("AMAP_API_KEY", cfg.AmapAPIKey)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
