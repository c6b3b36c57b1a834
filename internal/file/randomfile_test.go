package file

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colinmarc/sp/internal/eventbus"
)

func newLoaderFlags() LoaderFlags {
	return LoaderFlags{Loaded: new(atomic.Bool), Appending: new(atomic.Bool), Reloading: new(atomic.Bool)}
}

func TestRandomFileLoadFromScratch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.log")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rf := NewRandomFile(0, path)
	defer rf.Close()
	bus := eventbus.New()
	flags := newLoaderFlags()

	rf.loadFromScratch(bus, flags)

	if !rf.Loaded() {
		t.Fatal("expected Loaded() true")
	}
	if got := rf.Lines(); got != 2 {
		t.Fatalf("Lines() = %d, want 2", got)
	}
	var got string
	rf.WithLine(0, func(p []byte) { got = string(p) })
	if got != "one\n" {
		t.Fatalf("line 0 = %q", got)
	}

	if _, ok := bus.Get(time.Second); !ok {
		t.Fatal("expected a Loaded event")
	}
}

func TestRandomFileTryAppendExtendsOnMatchingFingerprint(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.log")
	if err := os.WriteFile(path, []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rf := NewRandomFile(0, path)
	defer rf.Close()
	bus := eventbus.New()
	flags := newLoaderFlags()
	rf.loadFromScratch(bus, flags)
	drainBus(bus)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("two\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ok := rf.tryAppend(bus, flags)
	if !ok {
		t.Fatal("expected tryAppend to succeed on a pure append")
	}
	if got := rf.Lines(); got != 2 {
		t.Fatalf("Lines() after append = %d, want 2", got)
	}
	var got string
	rf.WithLine(1, func(p []byte) { got = string(p) })
	if got != "two\n" {
		t.Fatalf("line 1 = %q, want \"two\\n\"", got)
	}
}

func TestRandomFileReloadRaisesFloor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rf := NewRandomFile(0, path)
	defer rf.Close()
	bus := eventbus.New()
	flags := newLoaderFlags()
	rf.loadFromScratch(bus, flags)
	drainBus(bus)
	before := rf.Lines()

	// resetForReload alone (the first half of reload, before the new
	// scratch load completes and clears the floor) must never let
	// Lines() regress, per §4.2's floor rule.
	rf.resetForReload()
	if got := rf.Lines(); got < before {
		t.Fatalf("Lines() mid-reload = %d, want >= %d (floor rule)", got, before)
	}

	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rf.loadFromScratch(bus, flags)
	drainBus(bus)

	if got := rf.Lines(); got != 1 {
		t.Fatalf("Lines() after reload completes = %d, want 1 (floor cleared on completion)", got)
	}
}

func drainBus(bus *eventbus.EventBus) {
	for {
		if _, ok := bus.Get(10 * time.Millisecond); !ok {
			return
		}
	}
}
