// Package config loads the fixed security policy for the pipeline. All
// values here are policy, not per-request tunables: a YAML file may
// override named fields, a missing file means defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hostling/guestgate/internal/bruteforce"
	"github.com/hostling/guestgate/internal/fetchguard"
	"github.com/hostling/guestgate/internal/ratelimit"
)

// LLMConfig selects the generation backend.
type LLMConfig struct {
	Provider  string  `yaml:"provider"` // "openai" or "bedrock"
	APIURL    string  `yaml:"api_url"`
	APIKeyEnv string  `yaml:"api_key_env"`
	Model     string  `yaml:"model"`
	Region    string  `yaml:"region"`
	Temp      float64 `yaml:"temperature"`
}

// Config is the full security policy plus deployment wiring.
type Config struct {
	Listen    string `yaml:"listen"`
	StorePath string `yaml:"store_path"`
	RedisURL  string `yaml:"redis_url"`

	Endpoints  ratelimit.Table   `yaml:"endpoints"`
	BruteForce bruteforce.Config `yaml:"brute_force"`
	Fetch      fetchguard.Config `yaml:"fetch"`
	LLM        LLMConfig         `yaml:"llm"`
}

// DefaultConfig returns the built-in policy.
func DefaultConfig() *Config {
	return &Config{
		Listen:    ":8470",
		StorePath: defaultStorePath(),
		Endpoints: ratelimit.Table{
			"chat":             {MaxRequests: 20, Window: time.Minute},
			"verify":           {MaxRequests: 10, Window: 5 * time.Minute},
			"calendar_sync":    {MaxRequests: 10, Window: time.Hour},
			"sensitive_lookup": {MaxRequests: 5, Window: 10 * time.Minute},
		},
		BruteForce: bruteforce.DefaultConfig(),
		Fetch:      fetchguard.DefaultConfig(),
		LLM: LLMConfig{
			Provider:  "openai",
			APIURL:    "http://localhost:8080/v1/chat/completions",
			APIKeyEnv: "GUESTGATE_LLM_KEY",
			Model:     "llama-3.1-8b-instruct",
			Temp:      0.7,
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "guestgate.db")
	}
	return filepath.Join(home, ".guestgate", "guestgate.db")
}

// Load reads configuration from a YAML file. Empty path falls back to
// ~/.guestgate/config.yaml. Missing file returns defaults; invalid
// YAML returns an error. YAML overwrites only specified fields.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".guestgate", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// APIKey resolves the LLM key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}
