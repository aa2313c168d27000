// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the application configuration, loadable from a JSON file
// with environment variables layered on top. All fields are optional;
// missing values use defaults or must be provided via CLI flags.
type Config struct {
	// API credentials
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`
	SearchAPIKey   string `json:"search_api_key,omitempty"`   // Google Custom Search
	SearchEngineID string `json:"search_engine_id,omitempty"` // Custom Search engine (cx)
	YouTubeAPIKey  string `json:"youtube_api_key,omitempty"`

	// Source endpoints
	TimelineBaseURL string `json:"timeline_base_url,omitempty" validate:"omitempty,url"`
	RedditBaseURL   string `json:"reddit_base_url,omitempty" validate:"omitempty,url"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `json:"redis_url,omitempty"`    // Redis cache; empty falls back to in-memory

	// Server
	Port int `json:"port,omitempty" validate:"gte=0,lte=65535"`

	// Run tuning
	CacheTTL                string `json:"cache_ttl,omitempty"`      // Go duration string, e.g. "1h"
	FetchTimeout            string `json:"fetch_timeout,omitempty"`  // stage deadline for source fetching
	AgentTimeout            string `json:"agent_timeout,omitempty"`  // per-agent deadline
	MaxConnectorConcurrency int    `json:"max_connector_concurrency,omitempty" validate:"gte=0,lte=64"`
	MaxAgentConcurrency     int    `json:"max_agent_concurrency,omitempty" validate:"gte=0,lte=64"`
	SignalLimit             int    `json:"signal_limit,omitempty" validate:"gte=0,lte=500"`
	MinCorpusSize           int    `json:"min_corpus_size,omitempty" validate:"gte=0"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // headless browser fallback for JS-heavy profiles
	Verbose    bool `json:"verbose,omitempty"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overlays environment variables onto the config. Environment
// values win over file values so deployments can override secrets
// without editing the file.
func (c *Config) ApplyEnv() {
	overlay := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	overlay(&c.GeminiAPIKey, "GEMINI_API_KEY")
	overlay(&c.SearchAPIKey, "GOOGLE_SEARCH_API_KEY")
	overlay(&c.SearchEngineID, "GOOGLE_SEARCH_ENGINE_ID")
	overlay(&c.YouTubeAPIKey, "YOUTUBE_API_KEY")
	overlay(&c.TimelineBaseURL, "TIMELINE_BASE_URL")
	overlay(&c.RedditBaseURL, "REDDIT_BASE_URL")
	overlay(&c.DatabaseURL, "DATABASE_URL")
	overlay(&c.RedisURL, "REDIS_URL")
}

// Validate checks field constraints and duration syntax. Required
// fields are not checked here; the commands decide what they need.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for name, value := range map[string]string{
		"cache_ttl":     c.CacheTTL,
		"fetch_timeout": c.FetchTimeout,
		"agent_timeout": c.AgentTimeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("config error: %q is not a valid duration for %s", value, name)
		}
	}
	return nil
}

// Duration parses a duration field, returning fallback when the field
// is empty. Call Validate first; a malformed value also yields the
// fallback here.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. Used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	fill(&result.SearchAPIKey, defaults.SearchAPIKey)
	fill(&result.SearchEngineID, defaults.SearchEngineID)
	fill(&result.YouTubeAPIKey, defaults.YouTubeAPIKey)
	fill(&result.TimelineBaseURL, defaults.TimelineBaseURL)
	fill(&result.RedditBaseURL, defaults.RedditBaseURL)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.RedisURL, defaults.RedisURL)
	fill(&result.CacheTTL, defaults.CacheTTL)
	fill(&result.FetchTimeout, defaults.FetchTimeout)
	fill(&result.AgentTimeout, defaults.AgentTimeout)

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxConnectorConcurrency == 0 {
		result.MaxConnectorConcurrency = defaults.MaxConnectorConcurrency
	}
	if result.MaxAgentConcurrency == 0 {
		result.MaxAgentConcurrency = defaults.MaxAgentConcurrency
	}
	if result.SignalLimit == 0 {
		result.SignalLimit = defaults.SignalLimit
	}
	if result.MinCorpusSize == 0 {
		result.MinCorpusSize = defaults.MinCorpusSize
	}
	if defaults.UseBrowser {
		result.UseBrowser = true
	}
	if defaults.Verbose {
		result.Verbose = true
	}
	return result
}
