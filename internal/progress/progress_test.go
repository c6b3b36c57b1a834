package progress

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colinmarc/sp/internal/eventbus"
)

func TestRunReplacesFrameOnFormFeed(t *testing.T) {
	t.Parallel()
	p := New()
	bus := eventbus.New()
	var flag atomic.Bool

	input := "line1\nline2\x0cline3\x0c"
	done := make(chan struct{})
	go func() {
		p.Run(strings.NewReader(input), bus, &flag)
		close(done)
	}()

	<-done
	if got := p.Lines(); len(got) != 1 || got[0] != "line3" {
		t.Fatalf("Lines() = %v, want [line3] (only the newest frame)", got)
	}
}

func TestRunEmitsRefreshPerFrame(t *testing.T) {
	t.Parallel()
	p := New()
	bus := eventbus.New()
	var flag atomic.Bool

	done := make(chan struct{})
	go func() {
		p.Run(strings.NewReader("a\x0cb\x0c"), bus, &flag)
		close(done)
	}()
	<-done

	if _, ok := bus.Get(time.Second); !ok {
		t.Fatal("expected at least one Refresh event")
	}
}

func TestRunFlushesTrailingFrameWithoutFormFeed(t *testing.T) {
	t.Parallel()
	p := New()
	bus := eventbus.New()
	var flag atomic.Bool

	done := make(chan struct{})
	go func() {
		p.Run(strings.NewReader("first\x0csecond line no feed"), bus, &flag)
		close(done)
	}()
	<-done

	if got := p.Lines(); len(got) != 1 || got[0] != "second line no feed" {
		t.Fatalf("Lines() = %v, want [second line no feed]", got)
	}
}

func TestHeightMatchesLineCount(t *testing.T) {
	t.Parallel()
	p := New()
	p.setFrame([]byte("a\nb\nc\n"))
	if p.Height() != 3 {
		t.Fatalf("Height() = %d, want 3", p.Height())
	}
}
