// ABOUTME: Fuzzy search over a prompt's history, grounded on the teacher's
// ABOUTME: pkg/tui/fuzzy wrapper around github.com/sahilm/fuzzy. The prompt
// ABOUTME: has no Ctrl+R binding that calls it.

package history

import "github.com/sahilm/fuzzy"

// Match is one fuzzy-search result against a history's entries.
type Match struct {
	Entry          string
	Index          int
	MatchedIndexes []int
	Score          int
}

// Search performs a fuzzy subsequence search of pattern against h's
// entries. An empty pattern returns every entry, most recent first;
// otherwise only matching entries are returned, in fuzzy.Find's order
// (best score first).
func (h *History) Search(pattern string) []Match {
	if pattern == "" {
		matches := make([]Match, len(h.entries))
		for i := range h.entries {
			idx := len(h.entries) - 1 - i
			matches[i] = Match{Entry: h.entries[idx], Index: idx}
		}
		return matches
	}

	results := fuzzy.Find(pattern, h.entries)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Entry:          r.Str,
			Index:          r.Index,
			MatchedIndexes: r.MatchedIndexes,
			Score:          r.Score,
		}
	}
	return matches
}
