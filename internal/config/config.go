package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	appName           = "lumina"
	apiKeyPlaceholder = "${OPENAI_API_KEY}"
)

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Autosave AutosaveConfig `yaml:"autosave"`
	AI       AIConfig       `yaml:"ai"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" env:"LUMINA_STORAGE_BACKEND" validate:"required,oneof=filesystem badger sqlite"`
	Path    string `yaml:"path" env:"LUMINA_STORAGE_PATH" validate:"required"`
}

type AIConfig struct {
	Provider   string          `yaml:"provider" env:"LUMINA_AI_PROVIDER" validate:"required,oneof=openai mock"`
	APIKey     string          `yaml:"api_key" env:"OPENAI_API_KEY" validate:"required_if=Provider openai,omitempty,min=20"`
	Model      string          `yaml:"model" env:"LUMINA_AI_MODEL" validate:"required"`
	ImageModel string          `yaml:"image_model" env:"LUMINA_AI_IMAGE_MODEL"`
	BaseURL    string          `yaml:"base_url" env:"LUMINA_AI_BASE_URL" validate:"required,url"`
	Timeout    time.Duration   `yaml:"timeout" env:"LUMINA_AI_TIMEOUT" validate:"min=1s,max=15m"`
	MaxRetries int             `yaml:"max_retries" validate:"min=0,max=10"`
	CacheTTL   time.Duration   `yaml:"cache_ttl" env:"LUMINA_AI_CACHE_TTL" validate:"min=0"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"LUMINA_ADDR" validate:"required"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"min=1s,max=10m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0,max=1m"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LUMINA_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"LUMINA_LOG_FORMAT" validate:"oneof=text json"`
}

// Default returns a configuration that runs offline: file storage under
// the XDG data directory and the mock AI provider.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "filesystem",
			Path:    filepath.Join(dataHome(), appName),
		},
		Autosave: DefaultAutosave(),
		AI: AIConfig{
			Provider:   "mock",
			Model:      "gpt-4o-mini",
			ImageModel: "dall-e-3",
			BaseURL:    "https://api.openai.com/v1",
			Timeout:    2 * time.Minute,
			MaxRetries: 3,
			CacheTTL:   24 * time.Hour,
			RateLimit:  DefaultRateLimit(),
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			RequestTimeout:  90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (or the default location when path is
// empty), then applies .env and environment overrides. A missing file is
// not an error; the defaults are used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.AI.APIKey == apiKeyPlaceholder {
		cfg.AI.APIKey = ""
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage.Path = expandTilde(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Path returns the default config file location.
func Path() string {
	if path := os.Getenv("LUMINA_CONFIG"); path != "" {
		return path
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName, "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, "config.yaml")
}

func dataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

// expandTilde expands a tilde (~) at the beginning of a path to the user's home directory
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Save writes cfg to path as YAML. The API key is replaced by an
// environment placeholder so secrets never land on disk.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	toSave := *cfg
	toSave.AI.APIKey = apiKeyPlaceholder

	data, err := yaml.Marshal(&toSave)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
