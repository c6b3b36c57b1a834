// ABOUTME: Renders one wrap-row (or horizontal column window) of a Line to a
// ABOUTME: plain ANSI string, applying attribute state, truncation, and match highlight.

package line

import (
	"strconv"
	"strings"
)

// RenderOptions controls one render call.
type RenderOptions struct {
	// Width is the number of screen columns available for this row.
	Width int
	// StartCol/EndCol bound the visible column window for Unwrapped mode
	// (horizontal scroll); ignored for wrapped modes, where Width alone
	// determines the row's extent.
	StartCol, EndCol int
	// Mode selects wrapping behavior.
	Mode WrapMode
	// Portion selects which wrap row to render (0-based); always 0 for Unwrapped.
	Portion int
	// CurrentMatch, if >= 0, is the match index that should receive the
	// "current match" highlight instead of the ordinary match highlight.
	CurrentMatch int
	// LineNumber, if >= 0, is prefixed to the row as "%6d  ".
	LineNumber int
}

const (
	matchSGR        = "\x1b[30;43m"  // black on yellow
	currentMatchSGR = "\x1b[30;46m"  // black on cyan
	truncateSGR     = "\x1b[7m"      // reverse video for truncation markers
	resetSGR        = "\x1b[0m"
)

// Render produces the visible text for one row of l, with SGR escapes,
// DEC line-drawing substitution, tab expansion, and match highlighting
// applied, truncated/marked per opts. Hyperlink spans are tracked in the
// attribute state, but no OSC 8 sequence is written to the output.
func (l *Line) Render(opts RenderOptions) string {
	cells := l.cellsFor()
	var target row
	if opts.Mode == Unwrapped {
		target = row(cells)
	} else {
		rows := wrapRows(cells, opts.Width, opts.Mode)
		if opts.Portion < 0 || opts.Portion >= len(rows) {
			return ""
		}
		target = rows[opts.Portion]
	}

	var b strings.Builder
	if opts.LineNumber >= 0 {
		b.WriteString(formatLineNumber(opts.LineNumber))
	}

	attrs := &AttributeState{}
	col := 0
	startCol, endCol := opts.StartCol, opts.EndCol
	if opts.Mode != Unwrapped {
		startCol, endCol = 0, opts.Width
	}
	truncatedLeft := false
	emittedAny := false

	for _, c := range target {
		if c.isAttr {
			switch {
			case len(c.sgrOps) > 0:
				attrs.ApplySGR(c.sgrOps)
			case c.hasHLSet:
				attrs.SetHyperlink(c.hlURL)
			case c.hlClear:
				attrs.SetHyperlink("")
			case c.lineDraw:
				attrs.SetLineDrawing(c.lineDrawVal)
			}
			continue
		}

		w := effectiveWidth(c, col)
		cellStart, cellEnd := col, col+w
		col = cellEnd

		if cellEnd <= startCol {
			continue
		}
		if cellStart >= endCol {
			break
		}
		if cellStart < startCol && !truncatedLeft {
			truncatedLeft = true
			b.WriteString(truncateSGR)
			b.WriteByte('<')
			b.WriteString(resetSGR)
		}

		if s := attrs.EmitIfChanged(); s != "" {
			b.WriteString(s)
		}

		text := c.text
		if attrs.LineDrawing() && len(text) == 1 && text[0] >= 0x5F && text[0] <= 0x7E {
			if r, ok := remapLineDrawing(text[0], true); ok {
				text = string(r)
			}
		}

		if c.matchIndex >= 0 {
			if c.matchIndex == opts.CurrentMatch {
				b.WriteString(currentMatchSGR)
			} else {
				b.WriteString(matchSGR)
			}
			b.WriteString(text)
			b.WriteString(resetSGR)
			attrs.lastEmitted = "" // restore the real attribute state after the highlight's reset
			if s := attrs.EmitIfChanged(); s != "" {
				b.WriteString(s)
			}
		} else if c.text == "\t" {
			b.WriteString(strings.Repeat(" ", w))
		} else {
			b.WriteString(text)
		}
		emittedAny = true
	}

	if col > endCol || (opts.Mode == Unwrapped && col > opts.EndCol) {
		// Right truncation: signalled with a reverse-video '>' at the final column.
		b.WriteString(resetSGR)
		b.WriteString(truncateSGR)
		b.WriteByte('>')
		b.WriteString(resetSGR)
	}

	b.WriteString(resetSGR)
	_ = emittedAny
	return b.String()
}

func formatLineNumber(n int) string {
	s := strconv.Itoa(n)
	pad := 6 - len(s)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s + "  "
}
