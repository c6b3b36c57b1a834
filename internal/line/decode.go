// ABOUTME: Escape-sequence scanning and classification for the Line parser.
// ABOUTME: Locates sequence boundaries (grounded on the teacher's width.ansi.go
// ABOUTME: scanner) and classifies them into the Span kinds spec.md §4.4 needs.

package line

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// escapeClass is the coarse classification of one escape sequence,
// independent of the specific final byte or parameters.
type escapeClass int

const (
	classIgnore escapeClass = iota
	classSGR
	classHyperlinkSet
	classHyperlinkClear
	classLineDrawingOn
	classLineDrawingOff
)

// decodedEscape is one classified escape sequence found in a byte slice.
type decodedEscape struct {
	class   escapeClass
	end     int      // index just past the sequence
	sgrOps  []string // for classSGR
	url     string   // for classHyperlinkSet
}

// decodeEscape classifies the escape sequence beginning at data[i] (which
// must be the ESC byte 0x1b) and returns it along with the index of the
// first byte after it. The sequence-boundary scan itself (CSI terminated
// by a 0x40-0x7E final byte, OSC terminated by BEL/ST, etc.) is the same
// state machine the teacher's width package used for stripping; here it
// is additionally classified by final byte / OSC Ps so the parser can
// emit the right Span kind.
func decodeEscape(data []byte, i int) decodedEscape {
	end := skipANSISequenceBytes(data, i)
	if end <= i+1 {
		return decodedEscape{class: classIgnore, end: end}
	}

	body := data[i:end]

	switch {
	case len(body) >= 2 && body[1] == '[':
		return classifyCSI(body, end)
	case len(body) >= 2 && body[1] == ']':
		return classifyOSC(body, end)
	case len(body) >= 2 && body[1] == '(':
		// Designate G0 character set: ESC ( 0 / ESC ( B
		if len(body) >= 3 {
			switch body[2] {
			case '0':
				return decodedEscape{class: classLineDrawingOn, end: end}
			case 'B':
				return decodedEscape{class: classLineDrawingOff, end: end}
			}
		}
		return decodedEscape{class: classIgnore, end: end}
	default:
		return decodedEscape{class: classIgnore, end: end}
	}
}

// classifyCSI inspects a `ESC [ ... <final>` sequence. An 'm' final byte
// is SGR; everything else (cursor motion, erase, scroll region, etc.) is
// an Ignore span — retained in the Span stream but discarded at render.
func classifyCSI(body []byte, end int) decodedEscape {
	final := body[len(body)-1]
	if final != 'm' {
		return decodedEscape{class: classIgnore, end: end}
	}
	params := string(body[2 : len(body)-1])
	ops := splitSGRParams(params)
	return decodedEscape{class: classSGR, end: end, sgrOps: ops}
}

// splitSGRParams splits an SGR parameter string on ';' (the sole
// separator the CSI SGR grammar uses), defaulting an empty string to "0"
// as a bare `ESC[m` does.
func splitSGRParams(params string) []string {
	if params == "" {
		return []string{"0"}
	}
	return strings.Split(params, ";")
}

// classifyOSC inspects an `ESC ] Ps ; ... ST` sequence. Ps=8 is the
// hyperlink control (OSC 8 ; params ; URI ST); an empty URI clears the
// active hyperlink. Everything else is ignored.
func classifyOSC(body []byte, end int) decodedEscape {
	// Strip "ESC ]" prefix and the BEL/ST terminator.
	inner := body[2:]
	inner = strings.TrimSuffix(string(inner), "\x07")
	inner = strings.TrimSuffix(inner, "\x1b\\")

	parts := strings.SplitN(inner, ";", 3)
	if len(parts) < 2 || parts[0] != "8" {
		return decodedEscape{class: classIgnore, end: end}
	}
	uri := ""
	if len(parts) == 3 {
		uri = parts[2]
	}
	if uri == "" {
		return decodedEscape{class: classHyperlinkClear, end: end}
	}
	return decodedEscape{class: classHyperlinkSet, end: end, url: uri}
}

// skipANSISequenceBytes is skipANSISequence ported to operate on []byte
// so the Line parser need not allocate a string per input line.
func skipANSISequenceBytes(data []byte, i int) int {
	if i >= len(data) || data[i] != '\x1b' {
		return i
	}
	i++
	if i >= len(data) {
		return i
	}
	switch data[i] {
	case '[':
		i++
		for i < len(data) {
			b := data[i]
			if b >= 0x40 && b <= 0x7E {
				return i + 1
			}
			i++
		}
		return i
	case ']':
		i++
		for i < len(data) {
			if data[i] == '\x07' {
				return i + 1
			}
			if data[i] == '\x1b' && i+1 < len(data) && data[i+1] == '\\' {
				return i + 2
			}
			i++
		}
		return i
	case '(':
		if i+1 < len(data) {
			return i + 2
		}
		return i + 1
	case '_', 'P', '^':
		i++
		for i < len(data) {
			if data[i] == '\x1b' && i+1 < len(data) && data[i+1] == '\\' {
				return i + 2
			}
			i++
		}
		return i
	default:
		return i + 1
	}
}

// stripForSearch returns data with all escape sequences removed, plus a
// map from each byte offset in the stripped output back to the original
// offset in data. Used by internal/search to run regexes against clean
// text while still being able to translate match ranges back onto the
// original bytes for highlight spans (spec.md §4.6 "Rationale").
//
// The stripping itself is delegated to charmbracelet/x/ansi.Strip, the
// library this component assumes per spec.md §1; the offset map is
// domain logic layered on top since the library has no use for it.
func stripForSearch(data []byte) (stripped []byte, strippedToOriginal []int) {
	s := string(data)
	clean := xansi.Strip(s)
	if clean == s {
		offsets := make([]int, len(data))
		for i := range offsets {
			offsets[i] = i
		}
		return data, offsets
	}

	offsets := make([]int, 0, len(clean))
	i := 0
	for i < len(data) {
		if data[i] == '\x1b' {
			i = skipANSISequenceBytes(data, i)
			continue
		}
		offsets = append(offsets, i)
		i++
	}
	return []byte(clean), offsets
}

// sgrOpString joins a list of SGR ops into "a;b;c" form ("0" for an
// empty list). Nothing in the package calls it.
func sgrOpString(ops []string) string {
	if len(ops) == 0 {
		return "0"
	}
	return strings.Join(ops, ";")
}
