package line

import "testing"

func TestHeightUnwrapped(t *testing.T) {
	t.Parallel()
	l := New([]byte("a very long line that would wrap if wrapping were enabled\n"), nil)
	if h := l.Height(10, Unwrapped); h != 1 {
		t.Fatalf("Height(Unwrapped) = %d, want 1", h)
	}
}

func TestHeightGraphemeBoundary(t *testing.T) {
	t.Parallel()
	l := New([]byte("0123456789\n"), nil)
	if h := l.Height(4, GraphemeBoundary); h != 3 {
		t.Fatalf("Height(4, GraphemeBoundary) = %d, want 3", h)
	}
}

func TestWrapWordBoundaryPrefersSpace(t *testing.T) {
	t.Parallel()
	l := New([]byte("aaa bbb\n"), nil)
	got := l.Render(RenderOptions{Width: 5, Mode: WordBoundary, Portion: 0, CurrentMatch: -1, LineNumber: -1})
	if want := "aaa " + resetSGR; got != want {
		t.Fatalf("row 0 = %q, want %q", got, want)
	}
	got = l.Render(RenderOptions{Width: 5, Mode: WordBoundary, Portion: 1, CurrentMatch: -1, LineNumber: -1})
	if want := "bbb" + resetSGR; got != want {
		t.Fatalf("row 1 = %q, want %q", got, want)
	}
}

func TestWrapGraphemeBoundarySplitsMidWord(t *testing.T) {
	t.Parallel()
	l := New([]byte("abcdef\n"), nil)
	got := l.Render(RenderOptions{Width: 3, Mode: GraphemeBoundary, Portion: 0, CurrentMatch: -1, LineNumber: -1})
	if want := "abc" + resetSGR; got != want {
		t.Fatalf("row 0 = %q, want %q", got, want)
	}
	got = l.Render(RenderOptions{Width: 3, Mode: GraphemeBoundary, Portion: 1, CurrentMatch: -1, LineNumber: -1})
	if want := "def" + resetSGR; got != want {
		t.Fatalf("row 1 = %q, want %q", got, want)
	}
}

func TestEmptyLineHasOneRow(t *testing.T) {
	t.Parallel()
	l := New([]byte("\n"), nil)
	if h := l.Height(80, WordBoundary); h != 1 {
		t.Fatalf("Height of empty line = %d, want 1", h)
	}
}
