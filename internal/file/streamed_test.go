package file

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colinmarc/sp/internal/eventbus"
)

func TestStreamedRunIndexesLinesAndEmitsLoaded(t *testing.T) {
	t.Parallel()
	s := NewStreamed(0, "stdin")
	s.SetNeededLines(1 << 30)
	bus := eventbus.New()
	var flag atomic.Bool

	done := make(chan struct{})
	go func() {
		s.Run(strings.NewReader("one\ntwo\nthree\n"), bus, &flag)
		close(done)
	}()
	<-done

	if !s.Loaded() {
		t.Fatal("expected Loaded() true after EOF")
	}
	if got := s.Lines(); got != 3 {
		t.Fatalf("Lines() = %d, want 3", got)
	}
	var line1 string
	s.WithLine(1, func(p []byte) { line1 = string(p) })
	if line1 != "two\n" {
		t.Fatalf("line 1 = %q, want \"two\\n\"", line1)
	}

	sawLoaded := false
	for {
		ev, ok := bus.Get(10 * time.Millisecond)
		if !ok {
			break
		}
		if _, ok := ev.(eventbus.Loaded); ok {
			sawLoaded = true
		}
	}
	if !sawLoaded {
		t.Fatal("expected a Loaded event")
	}
}

func TestStreamedRunRespectsBackpressure(t *testing.T) {
	t.Parallel()
	s := NewStreamed(0, "stdin")
	bus := eventbus.New()
	var flag atomic.Bool

	done := make(chan struct{})
	go func() {
		s.Run(strings.NewReader("a\nb\nc\n"), bus, &flag)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("expected Run to block on zero needed lines")
	default:
	}
	if !s.Paused() {
		t.Fatal("expected Paused() true while blocked")
	}

	s.SetNeededLines(100)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to finish after raising needed lines")
	}
}

func TestStreamedWithLineOutOfRange(t *testing.T) {
	t.Parallel()
	s := NewStreamed(0, "stdin")
	s.SetNeededLines(1 << 30)
	bus := eventbus.New()
	var flag atomic.Bool
	done := make(chan struct{})
	go func() {
		s.Run(strings.NewReader("only one line\n"), bus, &flag)
		close(done)
	}()
	<-done

	if ok := s.WithLine(5, func(p []byte) {}); ok {
		t.Fatal("expected out-of-range WithLine to return false")
	}
}
