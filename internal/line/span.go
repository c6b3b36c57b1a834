// ABOUTME: Span is the unit of the Line display model: one run of bytes
// ABOUTME: classified as text, a match, a control byte, or a formatting change.

package line

// SpanKind tags the variant held by a Span.
type SpanKind int

const (
	// SpanText is a run of ordinary printable grapheme clusters.
	SpanText SpanKind = iota
	// SpanMatch is a run of text covered by a search match.
	SpanMatch
	// SpanControl is a single control byte (<0x20 or 0x7F), rendered as <HH>.
	SpanControl
	// SpanInvalid is a single byte that is not valid UTF-8, rendered as <HH>.
	SpanInvalid
	// SpanUnprintable is a zero-width or otherwise unprintable grapheme
	// cluster, rendered as <U+XXXX> per code point.
	SpanUnprintable
	// SpanSGR carries one or more coalesced SGR attribute operations.
	SpanSGR
	// SpanHyperlink sets or clears the active OSC-8 hyperlink target.
	SpanHyperlink
	// SpanLineDrawing toggles DEC special-graphics mode on or off.
	SpanLineDrawing
	// SpanIgnore is a retained-but-discarded cursor/editing escape sequence.
	SpanIgnore
	// SpanTab is a literal tab byte.
	SpanTab
	// SpanCRLF is a "\r\n" line terminator.
	SpanCRLF
	// SpanLF is a "\n" line terminator.
	SpanLF
)

// Span is one classified run of a parsed Line. Lines are immutable once
// parsed; Span values are plain data.
type Span struct {
	Kind SpanKind

	// SpanText, SpanMatch
	Text string

	// SpanMatch: the match's ordinal index within the file (for
	// distinguishing the "current" match during render).
	MatchIndex int

	// SpanControl, SpanInvalid: the raw byte value.
	Byte byte

	// SpanUnprintable: the grapheme cluster's codepoints, for <U+XXXX> rendering.
	Codepoints []rune

	// SpanSGR: the ordered list of SGR sub-commands from one escape
	// sequence (e.g. "1", "38", "5", "208" for a single `ESC[1;38;5;208m`).
	SGROps []string

	// SpanHyperlink: nil clears the active hyperlink.
	Hyperlink *string

	// SpanLineDrawing: true enters DEC special-graphics mode, false exits.
	LineDrawingOn bool
}

// Width returns the number of screen columns a span's content occupies
// when fully visible (ignoring wrap truncation). Zero-width spans (SGR,
// Hyperlink, LineDrawing, Ignore) return 0.
func (s Span) Width() int {
	switch s.Kind {
	case SpanText, SpanMatch:
		return VisibleWidth(s.Text)
	case SpanControl, SpanInvalid:
		return 4 // "<HH>"
	case SpanUnprintable:
		return 8 // "<U+XXXX>" per code point, one code point assumed typical
	case SpanTab:
		return 8 // upper bound; actual advance depends on current column
	case SpanCRLF, SpanLF:
		return 0
	default:
		return 0
	}
}
