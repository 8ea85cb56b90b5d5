package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":8470" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if lim := cfg.Endpoints["chat"]; lim.MaxRequests != 20 || lim.Window != time.Minute {
		t.Errorf("chat limit = %+v", lim)
	}
	if cfg.BruteForce.Caller.MaxFailures != 5 {
		t.Errorf("caller threshold = %d", cfg.BruteForce.Caller.MaxFailures)
	}
}

func TestLoadOverridesOnlyNamedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen: ":9000"
endpoints:
  chat:
    max_requests: 5
    window: 30s
llm:
  provider: bedrock
  model: anthropic.claude-3-haiku-20240307-v1:0
  region: us-east-1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if lim := cfg.Endpoints["chat"]; lim.MaxRequests != 5 || lim.Window != 30*time.Second {
		t.Errorf("chat limit = %+v", lim)
	}
	if cfg.LLM.Provider != "bedrock" || cfg.LLM.Region != "us-east-1" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	// Untouched sections keep their defaults.
	if cfg.Fetch.MaxRedirects != 3 {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
	if lim := cfg.Endpoints["verify"]; lim.MaxRequests != 10 {
		t.Errorf("verify limit = %+v", lim)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKeyEnv = "GUESTGATE_TEST_KEY"
	t.Setenv("GUESTGATE_TEST_KEY", "sk-test")
	if got := cfg.APIKey(); got != "sk-test" {
		t.Errorf("APIKey() = %q", got)
	}

	cfg.LLM.APIKeyEnv = ""
	if got := cfg.APIKey(); got != "" {
		t.Errorf("APIKey() with no env = %q", got)
	}
}
