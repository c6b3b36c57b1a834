package display

import (
	"strings"
	"testing"

	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/file"
	"github.com/colinmarc/sp/internal/keymap"
	"github.com/colinmarc/sp/internal/linecache"
	"github.com/colinmarc/sp/internal/screen"
	"github.com/colinmarc/sp/internal/terminal"
)

func newTestScreens(t *testing.T, texts ...string) []*screen.Screen {
	t.Helper()
	km := keymap.DefaultKeymap()
	screens := make([]*screen.Screen, len(texts))
	for i, text := range texts {
		f := file.NewStatic(i, "test", []byte(text))
		screens[i] = screen.New(f, km, linecache.New(0), false, 10)
	}
	return screens
}

func keyRune(r rune) eventbus.Event {
	return eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: r}}
}

func TestRunQuitKeyExitsCleanly(t *testing.T) {
	bus := eventbus.New()
	screens := newTestScreens(t, "hello\n")
	term := terminal.NewVirtualTerminal(20, 5)
	d := New(term, bus, screens, keymap.DefaultKeymap())

	bus.Send(keyRune('q'))
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(term.Output(), "hello") {
		t.Fatalf("expected the first screen's content to have been drawn, got %q", term.Output())
	}
}

func TestRunNextFileSwitchesCurrentScreen(t *testing.T) {
	bus := eventbus.New()
	screens := newTestScreens(t, "one\n", "two\n")
	term := terminal.NewVirtualTerminal(20, 5)
	d := New(term, bus, screens, keymap.DefaultKeymap())

	bus.Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: ']'}})
	bus.Send(keyRune('q'))
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if d.current != 1 {
		t.Fatalf("current = %d, want 1 after NextFile", d.current)
	}
}

func TestRunPreviousFileWrapsAround(t *testing.T) {
	bus := eventbus.New()
	screens := newTestScreens(t, "one\n", "two\n")
	term := terminal.NewVirtualTerminal(20, 5)
	d := New(term, bus, screens, keymap.DefaultKeymap())

	bus.Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyRune, Rune: '['}})
	bus.Send(keyRune('q'))
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if d.current != 1 {
		t.Fatalf("current = %d, want 1 after PreviousFile wraps from 0", d.current)
	}
}

func TestRunShowHelpPushesOverlayAndEscapeClearsIt(t *testing.T) {
	bus := eventbus.New()
	screens := newTestScreens(t, "content\n")
	term := terminal.NewVirtualTerminal(30, 8)
	d := New(term, bus, screens, keymap.DefaultKeymap())

	bus.Send(keyRune('h'))
	bus.Send(eventbus.KeyInput{Key: keymap.Key{Type: keymap.KeyEscape}})
	bus.Send(keyRune('q'))
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if d.help == nil {
		t.Fatal("expected ShowHelp to have built a help screen")
	}
	if d.overlay {
		t.Fatal("expected Escape to have cleared the help overlay")
	}
}

func TestHandleRoutesFileEventToOwningScreenOnly(t *testing.T) {
	bus := eventbus.New()
	screens := newTestScreens(t, "one\n", "two\n")
	term := terminal.NewVirtualTerminal(20, 5)
	d := New(term, bus, screens, keymap.DefaultKeymap())

	// Screen 1 isn't current; a Loaded event for it should update its
	// state but produce no action to redraw the (different) active screen.
	action := d.handle(eventbus.Loaded{FileIndex: 1})
	if action.Kind != screen.None {
		t.Fatalf("action.Kind = %v, want None for a background screen's event", action.Kind)
	}

	action = d.handle(eventbus.Loaded{FileIndex: 0})
	if action.Kind != screen.Render {
		t.Fatalf("action.Kind = %v, want Render for the active screen's event", action.Kind)
	}
}

func TestBindingHelpLinesSkipsHiddenBindings(t *testing.T) {
	km := keymap.DefaultKeymap()
	km.Bind(keymap.Key{Type: keymap.KeyRune, Rune: ':'}, keymap.Binding{Kind: keymap.BindingPreviousFile, Hidden: true})
	lines := bindingHelpLines(km)
	for _, l := range lines {
		if strings.Contains(l, "PreviousFile") && strings.HasPrefix(strings.TrimSpace(l), ":") {
			t.Fatalf("expected the hidden ':'=>PreviousFile binding to be excluded, got %q", l)
		}
	}
}
