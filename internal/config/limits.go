package config

import (
	"time"

	"github.com/vampirenirmal/lumina/internal/persist"
)

// AutosaveConfig tunes the debounced write of the active book.
type AutosaveConfig struct {
	Debounce   time.Duration `yaml:"debounce" env:"LUMINA_AUTOSAVE_DEBOUNCE" validate:"min=100ms,max=1m"`
	MinVisible time.Duration `yaml:"min_visible" env:"LUMINA_AUTOSAVE_MIN_VISIBLE" validate:"min=0,max=10s"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

func DefaultAutosave() AutosaveConfig {
	return AutosaveConfig{
		Debounce:   persist.DefaultDebounce,
		MinVisible: persist.DefaultMinVisible,
	}
}

func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
		BurstSize:         5,
	}
}

// Scheduler converts the autosave timings for the persistence scheduler.
func (a AutosaveConfig) Scheduler() persist.Config {
	cfg := persist.DefaultConfig()
	cfg.Debounce = a.Debounce
	cfg.MinVisible = a.MinVisible
	return cfg
}
