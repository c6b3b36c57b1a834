// ABOUTME: Prompt input history persistence and fuzzy reverse-search.
// ABOUTME: One history file per prompt name, ring-pruned to maxEntries lines.

package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/colinmarc/sp/internal/config"
)

// maxEntries is the ring size Add prunes the in-memory history to; Save
// writes the held entries as they are (spec.md §6 "ring-pruned to 1000
// entries").
const maxEntries = 1000

// History holds one prompt's persisted input history in memory, most
// recent entry last.
type History struct {
	name    string
	entries []string
}

// Load reads the on-disk history file for name (e.g. "search", "goto"),
// or returns an empty History if it doesn't exist yet.
func Load(name string) (*History, error) {
	h := &History{name: name}

	path := config.HistoryFile(name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		h.entries = append(h.entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("history: reading %s: %w", path, err)
	}
	return h, nil
}

// Add appends entry to the in-memory history, eliding it if it
// duplicates the immediately preceding entry (spec.md §6).
func (h *History) Add(entry string) {
	if entry == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > maxEntries {
		h.entries = h.entries[len(h.entries)-maxEntries:]
	}
}

// Entries returns the history, oldest first.
func (h *History) Entries() []string {
	return h.entries
}

// Save writes the history back to disk, creating the history directory
// if needed.
func (h *History) Save() error {
	dir := filepath.Dir(config.HistoryFile(h.name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("history: creating %s: %w", dir, err)
	}

	path := config.HistoryFile(h.name)
	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("history: writing %s: %w", path, err)
	}
	return nil
}
