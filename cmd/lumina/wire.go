package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vampirenirmal/lumina/internal/agent"
	"github.com/vampirenirmal/lumina/internal/config"
	"github.com/vampirenirmal/lumina/internal/storage"
	"github.com/vampirenirmal/lumina/internal/storage/badgerstore"
	"github.com/vampirenirmal/lumina/internal/storage/sqlitestore"
)

const sqliteFile = "lumina.db"

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStorage returns the configured backend. The closer is nil for
// backends that hold no resources.
func openStorage(cfg config.StorageConfig) (storage.Store, io.Closer, error) {
	switch cfg.Backend {
	case "filesystem":
		return storage.NewFileSystem(cfg.Path), nil, nil
	case "badger":
		bcfg := badgerstore.DefaultConfig(cfg.Path)
		bcfg.Logger = slog.Default().With("component", "badger")
		store, err := badgerstore.Open(bcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("opening badger store: %w", err)
		}
		return store, store, nil
	case "sqlite":
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating storage directory: %w", err)
		}
		store, err := sqlitestore.Open(filepath.Join(cfg.Path, sqliteFile))
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newAssistant builds the AI assistant. Responses are cached in store
// when a cache TTL is configured; stale entries are purged up front.
func newAssistant(ctx context.Context, cfg config.AIConfig, store storage.Store) (*agent.Assistant, error) {
	switch cfg.Provider {
	case "mock":
		mock := agent.NewMockClient()
		return agent.NewAssistant(mock, agent.WithImages(mock)), nil
	case "openai":
		client := agent.NewClient(cfg.APIKey,
			agent.WithAPIConfig(cfg.BaseURL, cfg.Model),
			agent.WithImageModel(cfg.ImageModel),
			agent.WithTimeout(cfg.Timeout),
			agent.WithRetry(cfg.MaxRetries),
			agent.WithRateLimit(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize),
		)
		var text agent.AIClient = client
		if cfg.CacheTTL > 0 {
			cache := agent.NewResponseCache(store, cfg.CacheTTL)
			if _, err := cache.Purge(ctx); err != nil {
				slog.Default().Warn("Failed to purge AI cache", "error", err)
			}
			text = agent.WithCache(client, cache)
		}
		return agent.NewAssistant(text, agent.WithImages(client)), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
