// ABOUTME: Tests for prompt history persistence and fuzzy reverse-search.

package history

import (
	"fmt"
	"testing"
)

func TestAddElidesConsecutiveDuplicate(t *testing.T) {
	t.Parallel()
	h := &History{name: "test"}
	h.Add("foo")
	h.Add("foo")
	h.Add("bar")
	if got := h.Entries(); len(got) != 2 || got[0] != "foo" || got[1] != "bar" {
		t.Fatalf("Entries() = %v, want [foo bar]", got)
	}
}

func TestAddAllowsNonConsecutiveDuplicate(t *testing.T) {
	t.Parallel()
	h := &History{name: "test"}
	h.Add("foo")
	h.Add("bar")
	h.Add("foo")
	if got := h.Entries(); len(got) != 3 {
		t.Fatalf("Entries() = %v, want 3 entries", got)
	}
}

func TestAddPrunesToRingSize(t *testing.T) {
	t.Parallel()
	h := &History{name: "test"}
	for i := 0; i < maxEntries+10; i++ {
		h.Add(fmt.Sprintf("entry-%d", i))
	}
	if len(h.Entries()) != maxEntries {
		t.Fatalf("len(Entries()) = %d, want %d", len(h.Entries()), maxEntries)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	h, err := Load("search")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	h.Add("first")
	h.Add("second")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	h2, err := Load("search")
	if err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
	if got := h2.Entries(); len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("reloaded Entries() = %v, want [first second]", got)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	h, err := Load("does-not-exist")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(h.Entries()) != 0 {
		t.Fatalf("Entries() = %v, want empty", h.Entries())
	}
}

func TestSearchEmptyPatternReturnsAllMostRecentFirst(t *testing.T) {
	t.Parallel()
	h := &History{name: "test"}
	h.Add("alpha")
	h.Add("beta")
	matches := h.Search("")
	if len(matches) != 2 || matches[0].Entry != "beta" || matches[1].Entry != "alpha" {
		t.Fatalf("Search(\"\") = %+v, want beta then alpha", matches)
	}
}

func TestSearchFuzzyMatch(t *testing.T) {
	t.Parallel()
	h := &History{name: "test"}
	h.Add("git commit -m fix")
	h.Add("git status")
	h.Add("ls -la")
	matches := h.Search("gcm")
	if len(matches) == 0 || matches[0].Entry != "git commit -m fix" {
		t.Fatalf("Search(gcm) = %+v, want git commit -m fix first", matches)
	}
}
