package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name: "openai with key",
			mutate: func(c *Config) {
				c.AI.Provider = "openai"
				c.AI.APIKey = "sk-1234567890abcdef1234567890abcdef"
			},
			wantErr: false,
		},
		{
			name: "openai without key",
			mutate: func(c *Config) {
				c.AI.Provider = "openai"
			},
			wantErr: true,
			errMsg:  "APIKey",
		},
		{
			name: "invalid API key - too short",
			mutate: func(c *Config) {
				c.AI.Provider = "openai"
				c.AI.APIKey = "short"
			},
			wantErr: true,
			errMsg:  "APIKey",
		},
		{
			name: "unknown provider",
			mutate: func(c *Config) {
				c.AI.Provider = "oracle"
			},
			wantErr: true,
			errMsg:  "Provider",
		},
		{
			name: "unknown storage backend",
			mutate: func(c *Config) {
				c.Storage.Backend = "s3"
			},
			wantErr: true,
			errMsg:  "Backend",
		},
		{
			name: "missing storage path",
			mutate: func(c *Config) {
				c.Storage.Path = ""
			},
			wantErr: true,
			errMsg:  "Path",
		},
		{
			name: "invalid base URL",
			mutate: func(c *Config) {
				c.AI.BaseURL = "not a url"
			},
			wantErr: true,
			errMsg:  "BaseURL",
		},
		{
			name: "debounce too short",
			mutate: func(c *Config) {
				c.Autosave.Debounce = 10 * time.Millisecond
			},
			wantErr: true,
			errMsg:  "Debounce",
		},
		{
			name: "zero rate limit",
			mutate: func(c *Config) {
				c.AI.RateLimit.RequestsPerMinute = 0
			},
			wantErr: true,
			errMsg:  "RequestsPerMinute",
		},
		{
			name: "unknown log format",
			mutate: func(c *Config) {
				c.Log.Format = "xml"
			},
			wantErr: true,
			errMsg:  "Format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.Provider != "mock" {
		t.Errorf("Provider = %q, want mock", cfg.AI.Provider)
	}
	if cfg.Autosave.Debounce != 2*time.Second {
		t.Errorf("Debounce = %v, want 2s", cfg.Autosave.Debounce)
	}
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
storage:
  backend: sqlite
  path: ~/books
autosave:
  debounce: 500ms
ai:
  provider: mock
  model: gpt-4o
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LUMINA_AI_MODEL", "gpt-4.1")
	t.Setenv("LUMINA_LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q", cfg.Storage.Backend)
	}
	if strings.HasPrefix(cfg.Storage.Path, "~") {
		t.Errorf("Path = %q, want tilde expanded", cfg.Storage.Path)
	}
	if cfg.Autosave.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Autosave.Debounce)
	}
	if cfg.Autosave.MinVisible != 800*time.Millisecond {
		t.Errorf("MinVisible = %v, want default kept", cfg.Autosave.MinVisible)
	}
	if cfg.AI.Model != "gpt-4.1" {
		t.Errorf("Model = %q, want env override", cfg.AI.Model)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: tape\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestSaveKeepsSecretsOffDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.AI.APIKey = "sk-1234567890abcdef1234567890abcdef"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "sk-1234") {
		t.Error("API key written to disk")
	}
	if !strings.Contains(string(data), apiKeyPlaceholder) {
		t.Error("placeholder missing")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.AI.APIKey == apiKeyPlaceholder {
		t.Error("placeholder leaked into loaded config")
	}
}

func TestAutosaveScheduler(t *testing.T) {
	a := AutosaveConfig{Debounce: time.Second, MinVisible: 0}
	got := a.Scheduler()
	if got.Debounce != time.Second || got.MinVisible != 0 {
		t.Errorf("Scheduler() = %+v", got)
	}
	if got.WriteTimeout == 0 {
		t.Error("WriteTimeout should keep its default")
	}
}
