package keymap

import (
	"strings"
	"testing"
)

func TestParseFile(t *testing.T) {
	t.Parallel()

	src := `
# comment
'q' => Quit;
'j', Down => ScrollDownLines(1);
CTRL+'f' => ScrollDownScreenFraction(1.0) (hidden);
`
	m, err := ParseFile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	b, ok := m.Lookup(Key{Type: KeyRune, Rune: 'q'})
	if !ok || b.Kind != BindingQuit {
		t.Fatalf("expected 'q' -> Quit, got %+v ok=%v", b, ok)
	}

	b, ok = m.Lookup(Key{Type: KeyDown})
	if !ok || b.Kind != BindingScrollDownLines || b.Count != 1 {
		t.Fatalf("expected Down -> ScrollDownLines(1), got %+v ok=%v", b, ok)
	}

	b, ok = m.Lookup(Key{Type: KeyRune, Rune: 'j'})
	if !ok || b.Kind != BindingScrollDownLines {
		t.Fatalf("expected 'j' -> ScrollDownLines, got %+v ok=%v", b, ok)
	}

	b, ok = m.Lookup(Key{Type: KeyRune, Rune: 'f', Ctrl: true})
	if !ok || b.Kind != BindingScrollDownScreenFraction || !b.Hidden || b.Frac != 1.0 {
		t.Fatalf("expected CTRL+f -> ScrollDownScreenFraction(1.0) hidden, got %+v ok=%v", b, ok)
	}
}

func TestParseFileErrors(t *testing.T) {
	t.Parallel()

	cases := []string{
		"'q' Quit;",
		"'q' => Bogus;",
		"Bogus => Quit;",
		"'q' => ScrollDownLines(notanumber);",
	}
	for _, src := range cases {
		if _, err := ParseFile(strings.NewReader(src)); err == nil {
			t.Errorf("expected error for %q", src)
		}
	}
}

func TestDefaultAndErrorKeymap(t *testing.T) {
	t.Parallel()

	def := DefaultKeymap()
	if _, ok := def.Lookup(Key{Type: KeyRune, Rune: 'q'}); !ok {
		t.Fatal("default keymap missing 'q'")
	}

	em := ErrorKeymap()
	b, ok := em.Lookup(Key{Type: KeyRune, Rune: 'j'})
	if !ok || b.Kind != BindingCancel {
		t.Fatalf("error keymap should collapse 'j' to Cancel, got %+v ok=%v", b, ok)
	}
	b, ok = em.Lookup(Key{Type: KeyRune, Rune: 'q'})
	if !ok || b.Kind != BindingQuit {
		t.Fatalf("error keymap should still allow Quit, got %+v ok=%v", b, ok)
	}
}
