// Package statefile persists notice keys as a plain text file, one key per
// line, most recent first. It is the default storage driver.
package statefile

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"rgccr-notice-check/internal/storage"
)

type Repository struct {
	path string
}

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

func (r *Repository) LoadKeys(_ context.Context) ([]string, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: nothing stored yet.
			return nil, nil
		}
		return nil, &storage.StoreIOError{Op: "load", Target: r.path, Err: err}
	}

	var keys []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			keys = append(keys, line)
		}
	}
	return keys, nil
}

// SaveKeys writes to a temp file in the target directory and renames it over
// the artifact, so a crashed save never leaves a half-written state behind.
func (r *Repository) SaveKeys(_ context.Context, keys []string) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &storage.StoreIOError{Op: "save", Target: r.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".notices-*")
	if err != nil {
		return &storage.StoreIOError{Op: "save", Target: r.path, Err: err}
	}
	tmpName := tmp.Name()

	var content string
	if len(keys) > 0 {
		content = strings.Join(keys, "\n") + "\n"
	}

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &storage.StoreIOError{Op: "save", Target: r.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &storage.StoreIOError{Op: "save", Target: r.path, Err: err}
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return &storage.StoreIOError{Op: "save", Target: r.path, Err: err}
	}
	return nil
}

var _ storage.Repository = (*Repository)(nil)
