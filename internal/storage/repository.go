package storage

import (
	"context"
	"fmt"
)

// Repository persists the ordered notice keys of the last successful run,
// most recent first. It is the comparison baseline for the next run's
// novelty check and is replaced wholesale every run.
type Repository interface {
	// LoadKeys returns the stored keys, most recent first. A store that has
	// never been written returns an empty slice and no error; a cold start
	// is an expected condition, not a failure.
	LoadKeys(ctx context.Context) ([]string, error)

	// SaveKeys replaces the stored keys with exactly the given sequence,
	// preserving order. The replacement is all-or-nothing: a failed save
	// must leave the previous state intact.
	SaveKeys(ctx context.Context, keys []string) error
}

// StoreIOError is a read or write failure on the persisted state.
type StoreIOError struct {
	Op     string // "load" or "save"
	Target string // file path or table name
	Err    error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("state %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *StoreIOError) Unwrap() error {
	return e.Err
}
