package statefile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rgccr-notice-check/internal/storage"
)

func TestLoadKeysMissingFile(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "missing.txt"))

	keys, err := repo.LoadKeys(context.Background())
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected empty keys on cold start, got %v", keys)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "latest_notices.txt")
	repo := NewRepository(path)
	ctx := context.Background()

	want := []string{"t1|u1", "t2|u2", "t3|u3"}
	if err := repo.SaveKeys(ctx, want); err != nil {
		t.Fatalf("SaveKeys: %v", err)
	}

	got, err := repo.LoadKeys(ctx)
	if err != nil {
		t.Fatalf("LoadKeys: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveKeysOverwritesCompletely(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_notices.txt")
	repo := NewRepository(path)
	ctx := context.Background()

	if err := repo.SaveKeys(ctx, []string{"old1", "old2", "old3"}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.SaveKeys(ctx, []string{"new1"}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.LoadKeys(ctx)
	if err != nil {
		t.Fatalf("LoadKeys: %v", err)
	}
	if diff := cmp.Diff([]string{"new1"}, got); diff != "" {
		t.Errorf("stale keys survived overwrite (-want +got):\n%s", diff)
	}
}

func TestSaveKeysFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_notices.txt")
	repo := NewRepository(path)

	if err := repo.SaveKeys(context.Background(), []string{"a|1", "b|2"}); err != nil {
		t.Fatalf("SaveKeys: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) != "a|1\nb|2\n" {
		t.Errorf("unexpected artifact content: %q", string(raw))
	}
}

func TestSaveKeysLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	repo := NewRepository(filepath.Join(dir, "latest_notices.txt"))

	if err := repo.SaveKeys(context.Background(), []string{"a|1"}); err != nil {
		t.Fatalf("SaveKeys: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected only the artifact in %s, found %v", dir, names)
	}
}

func TestSaveKeysEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_notices.txt")
	repo := NewRepository(path)
	ctx := context.Background()

	if err := repo.SaveKeys(ctx, nil); err != nil {
		t.Fatalf("SaveKeys(nil): %v", err)
	}

	keys, err := repo.LoadKeys(ctx)
	if err != nil {
		t.Fatalf("LoadKeys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected empty keys, got %v", keys)
	}
}

func TestLoadKeysUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	// A directory at the artifact path forces a read error that is not
	// os.IsNotExist.
	path := filepath.Join(dir, "state")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	_, err := NewRepository(path).LoadKeys(context.Background())
	var storeErr *storage.StoreIOError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreIOError, got %v", err)
	}
	if storeErr.Op != "load" {
		t.Errorf("expected op 'load', got %q", storeErr.Op)
	}
}
