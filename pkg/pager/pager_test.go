package pager

import (
	"strings"
	"testing"

	"github.com/colinmarc/sp/internal/config"
	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/file"
	"github.com/colinmarc/sp/internal/keymap"
	"github.com/colinmarc/sp/internal/terminal"
)

func quitKey() eventbus.Event {
	return eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: 'q'}}
}

func TestRunCatModeStreamRendersCompleteWithoutFullscreen(t *testing.T) {
	vt := terminal.NewVirtualTerminal(80, 24)
	p := NewWithTerminal(vt)
	p.SetInterfaceMode(config.ModeCat)
	p.AddStream(strings.NewReader("a\nb\nc\n"), "test")

	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	got := vt.Output()
	for _, want := range []string{"a", "b", "c"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q does not contain %q", got, want)
		}
	}
	if strings.Contains(got, "\x1b[?1049h") {
		t.Fatalf("cat mode should never enter the alternate screen, got %q", got)
	}
}

func TestRunFullscreenQuitKeyExitsCleanly(t *testing.T) {
	vt := terminal.NewVirtualTerminal(20, 5)
	p := NewWithTerminal(vt)
	p.SetInterfaceMode(config.ModeFullscreen)

	idx, cf := p.AddControlledFile("notes")
	if idx != 0 {
		t.Fatalf("index = %d, want 0", idx)
	}
	if err := cf.ApplyChanges([]file.Change{{Kind: file.OpAppendLine, Lines: [][]byte{[]byte("hello")}}}); err != nil {
		t.Fatal(err)
	}

	p.Bus().Send(quitKey())
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(vt.Output(), "hello") {
		t.Fatalf("expected controlled file content to have been drawn, got %q", vt.Output())
	}
	if !strings.Contains(vt.Output(), "\x1b[?1049h") {
		t.Fatal("expected fullscreen mode to enter the alternate screen")
	}
}

func TestRunGoToLinePromptScrollsToRequestedLine(t *testing.T) {
	vt := terminal.NewVirtualTerminal(20, 5)
	p := NewWithTerminal(vt)
	p.SetInterfaceMode(config.ModeFullscreen)

	_, cf := p.AddControlledFile("notes")
	must(t, cf.ApplyChanges([]file.Change{{Kind: file.OpAppendLines, Lines: [][]byte{
		[]byte("l1"), []byte("l2"), []byte("l3"), []byte("l4"), []byte("l5"),
	}}}))

	p.Bus().Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: ':'}})
	for _, r := range "3" {
		p.Bus().Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: r}})
	}
	p.Bus().Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyEnter}})
	p.Bus().Send(quitKey())

	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(vt.Output(), "no such line") {
		t.Fatalf("expected line 3 to be a valid target, got %q", vt.Output())
	}
}

func TestRunGoToLineInvalidTextSetsErrorBanner(t *testing.T) {
	vt := terminal.NewVirtualTerminal(20, 5)
	p := NewWithTerminal(vt)
	p.SetInterfaceMode(config.ModeFullscreen)

	_, cf := p.AddControlledFile("notes")
	must(t, cf.ApplyChanges([]file.Change{{Kind: file.OpAppendLine, Lines: [][]byte{[]byte("l1")}}}))

	p.Bus().Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: ':'}})
	for _, r := range "nope" {
		p.Bus().Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: r}})
	}
	p.Bus().Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyEnter}})
	p.Bus().Send(quitKey())

	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(vt.Output(), "not a line number") {
		t.Fatalf("expected an error banner for a non-numeric go-to-line entry, got %q", vt.Output())
	}
}

func TestAddErrorStreamPairsWithMostRecentOutput(t *testing.T) {
	vt := terminal.NewVirtualTerminal(20, 5)
	p := NewWithTerminal(vt)
	outIdx := p.AddStream(strings.NewReader(""), "out")
	errIdx := p.AddErrorStream(strings.NewReader(""), "err")

	if outIdx != 0 || errIdx != 1 {
		t.Fatalf("outIdx=%d errIdx=%d, want 0 and 1", outIdx, errIdx)
	}
	ef, ok := p.errorOf[outIdx]
	if !ok || ef.Index() != errIdx {
		t.Fatalf("expected file %d to be paired as the error file for output %d", errIdx, outIdx)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
