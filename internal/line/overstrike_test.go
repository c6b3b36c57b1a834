package line

import "testing"

func TestFoldOverstrikeBold(t *testing.T) {
	t.Parallel()
	got := foldOverstrike([]byte("X\bX\n"))
	want := "\x1b[1mX\x1b[22m\n"
	if string(got) != want {
		t.Fatalf("foldOverstrike = %q, want %q", got, want)
	}
}

func TestFoldOverstrikeUnderline(t *testing.T) {
	t.Parallel()
	got := foldOverstrike([]byte("_\bU\n"))
	want := "\x1b[4mU\x1b[24m\n"
	if string(got) != want {
		t.Fatalf("foldOverstrike = %q, want %q", got, want)
	}
}

func TestFoldOverstrikeNoBackspacePassesThrough(t *testing.T) {
	t.Parallel()
	data := []byte("plain text\n")
	got := foldOverstrike(data)
	if string(got) != string(data) {
		t.Fatalf("foldOverstrike(no backspace) = %q, want unchanged %q", got, data)
	}
}

func TestParseOverstrikeProducesSGRSpan(t *testing.T) {
	t.Parallel()
	spans := Parse([]byte("X\bX\n"), nil)
	if spans[0].Kind != SpanSGR || spans[0].SGROps[0] != "1" {
		t.Fatalf("first span = %+v, want bold SGR", spans[0])
	}
	if spans[1].Kind != SpanText || spans[1].Text != "X" {
		t.Fatalf("second span = %+v, want text X", spans[1])
	}
	if spans[2].Kind != SpanSGR || spans[2].SGROps[0] != "22" {
		t.Fatalf("third span = %+v, want bold-off SGR", spans[2])
	}
}
