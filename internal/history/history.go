// Package history keeps a whole-file JSON journal of the terms a reader
// has looked up, so past lookups survive restarts and can be reviewed
// without re-querying the provider.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Entry records one completed lookup. Source names the document the term
// was selected or detected in.
type Entry struct {
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Category   string    `json:"category"`
	Source     string    `json:"source,omitempty"`
	LookedUpAt time.Time `json:"lookedUpAt"`
}

// Append adds entries to the journal at path, creating it if necessary.
// Entries with an empty term are skipped; a zero LookedUpAt is stamped
// with the current time.
func Append(path string, newEntries []Entry) error {
	if len(newEntries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entries, err := load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		entries = nil
	}
	now := time.Now()
	for _, entry := range newEntries {
		if entry.Term == "" {
			continue
		}
		if entry.LookedUpAt.IsZero() {
			entry.LookedUpAt = now
		}
		entries = append(entries, entry)
	}
	return write(path, entries)
}

// Load returns every journal entry, oldest first. A missing file is an
// empty journal, not an error.
func Load(path string) ([]Entry, error) {
	entries, err := load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// Recent returns up to limit of the newest entries, newest first.
func Recent(path string, limit int) ([]Entry, error) {
	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func write(path string, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
