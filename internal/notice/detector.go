package notice

import "fmt"

// StoredWindow is how many of the most recent stored keys are considered
// when classifying novelty. Older history never affects the decision and
// keeping the window fixed bounds comparison cost.
const StoredWindow = 5

// FetchLimit is the most notices a single run operates on. The scraper
// enforces it; the detector accepts whatever smaller count a thin page gave.
const FetchLimit = 10

// MalformedRecordError reports a scraped record with an empty title or URL.
// Such a record has no usable key, so the whole run aborts before any
// dispatch or store mutation.
type MalformedRecordError struct {
	Index int
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed notice record at index %d: empty %s", e.Index, e.Field)
}

// DetectNew classifies fetched notices against the keys persisted by the
// previous run. The scan walks fetched from the newest down and stops at the
// first notice whose key appears in the stored window; everything strictly
// before that notice is new. When no fetched key is in the window the whole
// batch is new: either the store is empty (cold start) or the site published
// more notices since the last run than the window covers.
//
// The returned slice preserves newest-first order. An empty result is a
// normal outcome and means nothing should be dispatched.
func DetectNew(fetched FetchedList, storedKeys []string) ([]Notice, error) {
	for i := 0; i < fetched.Len(); i++ {
		n := fetched.At(i)
		if n.Title == "" {
			return nil, &MalformedRecordError{Index: i, Field: "title"}
		}
		if n.URL == "" {
			return nil, &MalformedRecordError{Index: i, Field: "url"}
		}
	}

	window := storedKeys
	if len(window) > StoredWindow {
		window = window[:StoredWindow]
	}
	seen := make(map[string]struct{}, len(window))
	for _, k := range window {
		seen[k] = struct{}{}
	}

	var fresh []Notice
	for i := 0; i < fetched.Len(); i++ {
		n := fetched.At(i)
		if _, known := seen[n.Key()]; known {
			return fresh, nil
		}
		fresh = append(fresh, n)
	}
	return fresh, nil
}
