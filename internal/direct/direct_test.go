package direct

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colinmarc/sp/internal/config"
	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/file"
	"github.com/colinmarc/sp/internal/keymap"
	"github.com/colinmarc/sp/internal/terminal"
)

func finishedStreamed(t *testing.T, bus *eventbus.EventBus, index int, title, text string) file.File {
	t.Helper()
	f := file.NewStreamed(index, title)
	f.SetNeededLines(1 << 30)
	var flag atomic.Bool
	f.Run(strings.NewReader(text), bus, &flag)
	return f
}

func TestRunFullscreenModeRendersNothingImmediately(t *testing.T) {
	bus := eventbus.New()
	term := terminal.NewVirtualTerminal(80, 24)
	outcome, err := Run(term, nil, nil, nil, bus, config.ModeFullscreen, 0)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != RenderNothing {
		t.Fatalf("outcome = %v, want RenderNothing", outcome)
	}
	if term.Output() != "" {
		t.Fatalf("expected no output written, got %q", term.Output())
	}
}

func TestRunCatModeRendersCompleteForShortInput(t *testing.T) {
	bus := eventbus.New()
	out := finishedStreamed(t, bus, 0, "test", "a\nb\nc\n")

	term := terminal.NewVirtualTerminal(80, 24)
	outcome, err := Run(term, []file.File{out}, nil, nil, bus, config.ModeCat, 0)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != RenderComplete {
		t.Fatalf("outcome = %v, want RenderComplete", outcome)
	}
	got := term.Output()
	for _, want := range []string{"a", "b", "c"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q does not contain %q", got, want)
		}
	}
}

func TestRunHybridModeReturnsIncompleteWhenContentOverflows(t *testing.T) {
	bus := eventbus.New()
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, "line")
	}
	out := finishedStreamed(t, bus, 0, "test", strings.Join(lines, "\n")+"\n")

	term := terminal.NewVirtualTerminal(80, 10)
	outcome, err := Run(term, []file.File{out}, nil, nil, bus, config.ModeHybrid, 0)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != RenderIncomplete {
		t.Fatalf("outcome = %v, want RenderIncomplete", outcome)
	}
}

func TestRunDelayedModeFlushesShortInputOnEOF(t *testing.T) {
	bus := eventbus.New()
	out := finishedStreamed(t, bus, 0, "test", "a\nb\nc\n")

	term := terminal.NewVirtualTerminal(80, 24)
	outcome, err := Run(term, []file.File{out}, nil, nil, bus, config.ModeDelayed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != RenderComplete {
		t.Fatalf("outcome = %v, want RenderComplete", outcome)
	}
	got := term.Output()
	for _, want := range []string{"a", "b", "c"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q does not contain %q", got, want)
		}
	}
}

func TestRunDelayedModeExpiredDeadlineRendersNothing(t *testing.T) {
	bus := eventbus.New()
	out := file.NewStreamed(0, "test") // never finishes loading

	term := terminal.NewVirtualTerminal(80, 24)
	outcome, err := Run(term, []file.File{out}, nil, nil, bus, config.ModeDelayed, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != RenderNothing {
		t.Fatalf("outcome = %v, want RenderNothing", outcome)
	}
	if term.Output() != "" {
		t.Fatalf("expected nothing flushed after an expired deadline, got %q", term.Output())
	}
}

func TestRunQuitKeyInterrupts(t *testing.T) {
	bus := eventbus.New()
	out := file.NewStreamed(0, "test") // never finishes loading
	bus.Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: 'q'}})

	term := terminal.NewVirtualTerminal(80, 24)
	outcome, err := Run(term, []file.File{out}, nil, nil, bus, config.ModeCat, 0)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Interrupted {
		t.Fatalf("outcome = %v, want Interrupted", outcome)
	}
}

func TestRunSpaceKeyEntersFullscreenIncomplete(t *testing.T) {
	bus := eventbus.New()
	out := file.NewStreamed(0, "test") // never finishes loading
	bus.Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: ' '}})

	term := terminal.NewVirtualTerminal(80, 24)
	outcome, err := Run(term, []file.File{out}, nil, nil, bus, config.ModeCat, 0)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != RenderIncomplete {
		t.Fatalf("outcome = %v, want RenderIncomplete", outcome)
	}
}
