package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vampirenirmal/lumina/internal/storage"
)

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lumina.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := openTempStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, storage.ActiveBookKey, []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, storage.ActiveBookKey, []byte(`{"id":"2"}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.Load(ctx, storage.ActiveBookKey)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"id":"2"}` {
		t.Fatalf("load = %s, want last saved value", got)
	}
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	store, _ := openTempStore(t)

	_, err := store.Load(context.Background(), storage.UserProfileKey)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("load error = %v, want ErrNotFound", err)
	}
}

func TestListAndDelete(t *testing.T) {
	store, _ := openTempStore(t)
	ctx := context.Background()

	for _, key := range []string{"book_b", "book_a", storage.UserProfileKey} {
		if err := store.Save(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("save %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "book_*")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := []string{"book_a", "book_b"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("list = %v, want %v", keys, want)
	}

	if err := store.Delete(ctx, "book_a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "book_a"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if _, err := store.Load(ctx, "book_a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("load after delete error = %v", err)
	}
}

func TestDataSurvivesReopen(t *testing.T) {
	store, path := openTempStore(t)
	if err := store.Save(context.Background(), storage.ActiveBookKey, []byte("kept")); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(context.Background(), storage.ActiveBookKey)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "kept" {
		t.Fatalf("load = %q", got)
	}
}
