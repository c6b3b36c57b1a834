package file

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/colinmarc/sp/internal/eventbus"
)

func lines(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func contentOf(c *Controlled) []string {
	out := make([]string, c.Lines())
	for i := range out {
		c.WithLine(i, func(p []byte) { out[i] = string(p) })
	}
	return out
}

func TestControlledAppendLine(t *testing.T) {
	t.Parallel()
	c := NewControlled(0, "ctl")
	if err := c.ApplyChanges([]Change{{Kind: OpAppendLine, Lines: lines("a")}}); err != nil {
		t.Fatal(err)
	}
	if got := contentOf(c); len(got) != 1 || got[0] != "a" {
		t.Fatalf("content = %v", got)
	}
}

func TestControlledInsertReplaceDeleteLine(t *testing.T) {
	t.Parallel()
	c := NewControlled(0, "ctl")
	must(t, c.ApplyChanges([]Change{{Kind: OpAppendLines, Lines: lines("a", "b", "c")}}))

	must(t, c.ApplyChanges([]Change{{Kind: OpInsertLine, Index: 1, Lines: lines("x")}}))
	if got := contentOf(c); !equalStrings(got, []string{"a", "x", "b", "c"}) {
		t.Fatalf("after insert: %v", got)
	}

	must(t, c.ApplyChanges([]Change{{Kind: OpReplaceLine, Index: 0, Lines: lines("A")}}))
	if got := contentOf(c); !equalStrings(got, []string{"A", "x", "b", "c"}) {
		t.Fatalf("after replace: %v", got)
	}

	must(t, c.ApplyChanges([]Change{{Kind: OpDeleteLine, Index: 2}}))
	if got := contentOf(c); !equalStrings(got, []string{"A", "x", "c"}) {
		t.Fatalf("after delete: %v", got)
	}
}

func TestControlledReplaceAndDeleteLines(t *testing.T) {
	t.Parallel()
	c := NewControlled(0, "ctl")
	must(t, c.ApplyChanges([]Change{{Kind: OpAppendLines, Lines: lines("a", "b", "c", "d")}}))

	must(t, c.ApplyChanges([]Change{{Kind: OpReplaceLines, Range: [2]int{1, 3}, Lines: lines("x", "y", "z")}}))
	if got := contentOf(c); !equalStrings(got, []string{"a", "x", "y", "z", "d"}) {
		t.Fatalf("after replace lines: %v", got)
	}

	must(t, c.ApplyChanges([]Change{{Kind: OpDeleteLines, Range: [2]int{1, 3}}}))
	if got := contentOf(c); !equalStrings(got, []string{"a", "z", "d"}) {
		t.Fatalf("after delete lines: %v", got)
	}
}

func TestControlledOutOfRangeStopsAtFailingOperation(t *testing.T) {
	t.Parallel()
	c := NewControlled(0, "ctl")
	must(t, c.ApplyChanges([]Change{{Kind: OpAppendLines, Lines: lines("a", "b")}}))

	err := c.ApplyChanges([]Change{
		{Kind: OpReplaceLine, Index: 0, Lines: lines("A")},
		{Kind: OpDeleteLine, Index: 99},
		{Kind: OpAppendLine, Lines: lines("never applied")},
	})
	if err == nil {
		t.Fatal("expected LineOutOfRangeError")
	}
	if _, ok := err.(*LineOutOfRangeError); !ok {
		t.Fatalf("err type = %T, want *LineOutOfRangeError", err)
	}

	got := contentOf(c)
	if !equalStrings(got, []string{"A", "b"}) {
		t.Fatalf("content = %v, want the first op applied but not the third", got)
	}
}

func TestControlledAlwaysLoadedAndNeededLinesNoop(t *testing.T) {
	t.Parallel()
	c := NewControlled(0, "ctl")
	if !c.Loaded() {
		t.Fatal("expected Controlled.Loaded() to always be true")
	}
	c.SetNeededLines(100) // must not panic; has no observable effect
	if c.Paused() {
		t.Fatal("Controlled is never paused")
	}
}

func TestControlledNotifiesSubscribersOnApply(t *testing.T) {
	t.Parallel()
	c := NewControlled(3, "ctl")
	bus := eventbus.New()
	var flag atomic.Bool
	c.Subscribe(bus, &flag)

	must(t, c.ApplyChanges([]Change{{Kind: OpAppendLine, Lines: lines("a")}}))

	ev, ok := bus.Get(time.Second)
	if !ok {
		t.Fatal("expected a Reloading event")
	}
	r, ok := ev.(eventbus.Reloading)
	if !ok || r.FileIndex != 3 {
		t.Fatalf("event = %#v, want Reloading{FileIndex:3}", ev)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
