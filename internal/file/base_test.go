package file

import (
	"testing"
	"time"
)

type sliceSource struct{ data []byte }

func (s sliceSource) withSlice(start, end int, f func([]byte)) {
	f(s.data[start:end])
}

func TestWithLineBoundaries(t *testing.T) {
	t.Parallel()
	data := []byte("one\ntwo\nthree")
	b := newBase(0, "t", sliceSource{data})
	b.appendNewlines(3, 7)
	b.length.Store(int64(len(data)))

	var got string
	ok := b.WithLine(0, func(p []byte) { got = string(p) })
	if !ok || got != "one\n" {
		t.Fatalf("line 0 = %q, ok=%v", got, ok)
	}
	ok = b.WithLine(1, func(p []byte) { got = string(p) })
	if !ok || got != "two\n" {
		t.Fatalf("line 1 = %q, ok=%v", got, ok)
	}
	ok = b.WithLine(2, func(p []byte) { got = string(p) })
	if !ok || got != "three" {
		t.Fatalf("line 2 (trailing partial) = %q, ok=%v", got, ok)
	}
	if ok := b.WithLine(3, func(p []byte) {}); ok {
		t.Fatal("expected WithLine(3) to be out of range")
	}
}

func TestLinesCountsTrailingPartial(t *testing.T) {
	t.Parallel()
	b := newBase(0, "t", sliceSource{[]byte("a\nb")})
	b.appendNewlines(1)
	b.length.Store(3)
	if got := b.Lines(); got != 2 {
		t.Fatalf("Lines() = %d, want 2", got)
	}
}

func TestLinesHonorsReloadFloor(t *testing.T) {
	t.Parallel()
	b := newBase(0, "t", sliceSource{nil})
	b.reloadFloor.Store(10)
	if got := b.Lines(); got != 10 {
		t.Fatalf("Lines() = %d, want 10 (floored)", got)
	}
}

func TestResetForReloadRaisesFloor(t *testing.T) {
	t.Parallel()
	b := newBase(0, "t", sliceSource{nil})
	b.appendNewlines(0, 1, 2)
	b.length.Store(5)
	before := b.Lines()

	b.resetForReload()

	if b.Lines() < before {
		t.Fatalf("Lines() after reload = %d, want >= %d", b.Lines(), before)
	}
	if b.length.Load() != 0 {
		t.Fatalf("length after reload = %d, want 0", b.length.Load())
	}
}

func TestSetNeededLinesWakesPausedWaiter(t *testing.T) {
	t.Parallel()
	b := newBase(0, "t", sliceSource{nil})

	unblocked := make(chan struct{})
	go func() {
		b.waitIfPaused(func() int { return 5 })
		close(unblocked)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-unblocked:
		t.Fatal("expected waitIfPaused to block while lineCount >= needed")
	default:
	}

	b.SetNeededLines(10)
	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("expected SetNeededLines to wake the waiter")
	}
}
