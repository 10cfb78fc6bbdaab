package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestFileSystemSecurity(t *testing.T) {
	tempDir := t.TempDir()
	base := filepath.Join(tempDir, "slots")

	outsideFile := filepath.Join(tempDir, "outside.json")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSystem(base)
	ctx := context.Background()

	t.Run("Save prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name string
			key  string
			want bool // true if should succeed
		}{
			{"plain key", "active_book", true},
			{"nested key", "books/archive", true},
			{"parent traversal", "../active_book", false},
			{"complex traversal", "books/../../active_book", false},
			{"absolute path", "/etc/passwd", false},
			{"empty key", "  ", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := fs.Save(ctx, tt.key, []byte("{}"))
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for key %q, got none", tt.key)
				}
			})
		}
	})

	t.Run("Load prevents directory traversal", func(t *testing.T) {
		if _, err := fs.Load(ctx, "../outside"); err == nil {
			t.Error("expected error loading outside the base directory")
		}
	})

	t.Run("List prevents directory traversal", func(t *testing.T) {
		for _, pattern := range []string{"../*", "/etc/*"} {
			if _, err := fs.List(ctx, pattern); err == nil {
				t.Errorf("expected error for pattern %q, got none", pattern)
			}
		}
	})
}

func TestFileSystemRoundTrip(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	if err := fs.Save(ctx, ActiveBookKey, []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := fs.Save(ctx, ActiveBookKey, []byte(`{"id":"2"}`)); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	got, err := fs.Load(ctx, ActiveBookKey)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != `{"id":"2"}` {
		t.Errorf("Load() = %s, want the last saved record", got)
	}
	if !fs.Exists(ctx, ActiveBookKey) {
		t.Error("Exists() = false after Save")
	}
}

func TestFileSystemLoadMissing(t *testing.T) {
	fs := NewFileSystem(t.TempDir())

	_, err := fs.Load(context.Background(), UserProfileKey)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestFileSystemListAndDelete(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{ActiveBookKey, UserProfileKey} {
		if err := fs.Save(ctx, key, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := fs.List(ctx, "*")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != ActiveBookKey || keys[1] != UserProfileKey {
		t.Errorf("List() = %v", keys)
	}

	if err := fs.Delete(ctx, UserProfileKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := fs.Delete(ctx, UserProfileKey); err != nil {
		t.Errorf("Delete() of a missing record error = %v", err)
	}
	if fs.Exists(ctx, UserProfileKey) {
		t.Error("record still exists after Delete")
	}
}

func TestSanitizePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := &FileSystem{baseDir: tempDir}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple file", "file.json", false},
		{"nested file", "dir/file.json", false},
		{"dot file", ".hidden", false},
		{"parent directory", "../file.json", true},
		{"sneaky parent", "dir/../../../etc/passwd", true},
		{"absolute path", "/etc/passwd", true},
		{"double dot", "..", true},
		{"contains double dot", "some/..thing/file", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.sanitizePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("sanitizePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
				return
			}
			if err == nil && !filepath.HasPrefix(got, tempDir) {
				t.Errorf("sanitizePath(%q) = %q, not under base directory %q", tt.path, got, tempDir)
			}
		})
	}
}
