package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vampirenirmal/lumina/internal/config"
)

// writeConfig stores a file-backed, offline configuration in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf("storage:\n  backend: filesystem\n  path: %s\nai:\n  provider: mock\n", filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "New Book Project")
	assert.Contains(t, out, "Chapter 1: The Beginning")
	assert.Contains(t, out, "TOTAL")
}

func TestPreviewCommand(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "preview")
	require.NoError(t, err)
	assert.Contains(t, out, "Spread 1 of")
	assert.Contains(t, out, "--- page 1 ---")
}

func TestExportCommand(t *testing.T) {
	cfgPath := writeConfig(t)

	t.Run("single format", func(t *testing.T) {
		outDir := t.TempDir()
		_, err := run(t, "--config", cfgPath, "export", "-f", "markdown", "-o", outDir)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(outDir, "New_Book_Project.md"))
	})

	t.Run("all formats", func(t *testing.T) {
		outDir := t.TempDir()
		out, err := run(t, "--config", cfgPath, "export", "-o", outDir)
		require.NoError(t, err)

		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		assert.Len(t, entries, 4)
		assert.Contains(t, out, "New_Book_Project.epub")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "--config", cfgPath, "export", "-f", "pdf", "-o", t.TempDir())
		assert.Error(t, err)
	})
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumina", "config.yaml")

	out, err := run(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = run(t, "--config", path, "init")
	assert.Error(t, err, "existing file is kept without --force")

	_, err = run(t, "--config", path, "init", "--force")
	assert.NoError(t, err)
}

func TestOpenStorageBackends(t *testing.T) {
	for _, backend := range []string{"filesystem", "badger", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			store, closer, err := openStorage(config.StorageConfig{Backend: backend, Path: t.TempDir()})
			require.NoError(t, err)
			if closer != nil {
				defer closer.Close()
			}

			ctx := context.Background()
			require.NoError(t, store.Save(ctx, "probe", []byte("ok")))
			got, err := store.Load(ctx, "probe")
			require.NoError(t, err)
			assert.Equal(t, "ok", string(got))
		})
	}

	_, _, err := openStorage(config.StorageConfig{Backend: "tape", Path: t.TempDir()})
	assert.Error(t, err)
}

func TestNewAssistant(t *testing.T) {
	store, _, err := openStorage(config.StorageConfig{Backend: "filesystem", Path: t.TempDir()})
	require.NoError(t, err)

	cfg := config.Default().AI
	a, err := newAssistant(context.Background(), cfg, store)
	require.NoError(t, err)
	assert.NotNil(t, a)

	cfg.Provider = "openai"
	cfg.APIKey = "sk-1234567890abcdef1234567890abcdef"
	a, err = newAssistant(context.Background(), cfg, store)
	require.NoError(t, err)
	assert.NotNil(t, a)

	cfg.Provider = "oracle"
	_, err = newAssistant(context.Background(), cfg, store)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "debug", Format: "json"})
	logger.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	logger = newLogger(&buf, config.LogConfig{Level: "warn", Format: "text"})
	logger.Info("quiet")
	assert.Empty(t, buf.String())
}
