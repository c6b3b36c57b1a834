package line

import (
	"strings"
	"testing"
)

func TestRenderPlainRoundTrip(t *testing.T) {
	t.Parallel()
	l := New([]byte("hello\n"), nil)
	got := l.Render(RenderOptions{Width: 80, Mode: WordBoundary, Portion: 0, CurrentMatch: -1, LineNumber: -1})
	if want := "hello" + resetSGR; got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRenderSGRReemittedOnlyOnChange(t *testing.T) {
	t.Parallel()
	l := New([]byte("\x1b[31mred\x1b[0mplain\n"), nil)
	got := l.Render(RenderOptions{Width: 80, Mode: WordBoundary, Portion: 0, CurrentMatch: -1, LineNumber: -1})
	if !strings.Contains(got, "\x1b[31mred") {
		t.Fatalf("Render = %q, missing SGR-prefixed red", got)
	}
	if !strings.HasSuffix(got, resetSGR) {
		t.Fatalf("Render = %q, missing trailing reset", got)
	}
}

func TestRenderMatchHighlight(t *testing.T) {
	t.Parallel()
	l := New([]byte("foobar\n"), []MatchRange{{Start: 0, End: 3, Index: 0}})
	got := l.Render(RenderOptions{Width: 80, Mode: WordBoundary, Portion: 0, CurrentMatch: -1, LineNumber: -1})
	if n := strings.Count(got, matchSGR); n != 3 {
		t.Fatalf("Render = %q, expected 3 ordinary match highlights (one per grapheme), got %d", got, n)
	}
	if strings.Contains(got, currentMatchSGR) {
		t.Fatalf("Render = %q, did not expect current-match highlight", got)
	}
}

func TestRenderCurrentMatchHighlight(t *testing.T) {
	t.Parallel()
	l := New([]byte("foobar\n"), []MatchRange{{Start: 0, End: 3, Index: 0}})
	got := l.Render(RenderOptions{Width: 80, Mode: WordBoundary, Portion: 0, CurrentMatch: 0, LineNumber: -1})
	if n := strings.Count(got, currentMatchSGR); n != 3 {
		t.Fatalf("Render = %q, expected 3 current-match highlights (one per grapheme), got %d", got, n)
	}
}

func TestRenderLineNumberPrefix(t *testing.T) {
	t.Parallel()
	l := New([]byte("x\n"), nil)
	got := l.Render(RenderOptions{Width: 80, Mode: WordBoundary, Portion: 0, CurrentMatch: -1, LineNumber: 42})
	if !strings.HasPrefix(got, "    42  x") {
		t.Fatalf("Render = %q, expected line number prefix", got)
	}
}

func TestRenderHorizontalTruncation(t *testing.T) {
	t.Parallel()
	// The tab cell spans columns [1,8), straddling both the start and end
	// of the [3,6) window, so both truncation markers must appear.
	l := New([]byte("x\ty\n"), nil)
	got := l.Render(RenderOptions{Width: 80, Mode: Unwrapped, StartCol: 3, EndCol: 6, CurrentMatch: -1, LineNumber: -1})
	if !strings.Contains(got, truncateSGR+"<"+resetSGR) {
		t.Fatalf("Render = %q, expected left-truncation marker", got)
	}
	if !strings.Contains(got, truncateSGR+">"+resetSGR) {
		t.Fatalf("Render = %q, expected right-truncation marker", got)
	}
}

func TestRenderTabExpansion(t *testing.T) {
	t.Parallel()
	l := New([]byte("a\tb\n"), nil)
	got := l.Render(RenderOptions{Width: 80, Mode: WordBoundary, Portion: 0, CurrentMatch: -1, LineNumber: -1})
	if want := "a" + strings.Repeat(" ", 7) + "b" + resetSGR; got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}
