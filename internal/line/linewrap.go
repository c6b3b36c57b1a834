// ABOUTME: Line is the wrap/height/render view over a parsed Span sequence.
// ABOUTME: Implements spec.md §4.4 "Wrapping": Unwrapped, GraphemeBoundary, WordBoundary.

package line

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// WrapMode selects how a Line's spans are broken into screen rows.
type WrapMode int

const (
	Unwrapped WrapMode = iota
	GraphemeBoundary
	WordBoundary
)

// Line is the immutable, parsed view of one logical file line.
type Line struct {
	Spans []Span
}

// New parses data (one logical line's bytes, including any trailing
// terminator) into a Line, highlighting matches at their original-byte
// offsets (see TranslateMatches).
func New(data []byte, matches []MatchRange) *Line {
	return &Line{Spans: Parse(data, matches)}
}

// cell is one renderable unit after flattening a Line's spans: either a
// zero-width attribute marker replayed in order, or a glyph with a
// column width.
type cell struct {
	// attribute marker (width 0, applied without consuming a column)
	isAttr  bool
	sgrOps  []string
	hasHLSet bool
	hlURL    string
	hlClear  bool
	lineDraw    bool
	lineDrawVal bool
	ignore      bool

	// glyph
	text       string
	width      int
	matchIndex int // -1 if not a match
	breakable  bool
	ctrlByte   byte
	isCtrl     bool
	isInvalid  bool
}

// cellsFor flattens l.Spans into render cells, re-segmenting Text/Match
// spans into grapheme clusters so wrap points can land between them.
func (l *Line) cellsFor() []cell {
	var cells []cell
	for _, sp := range l.Spans {
		switch sp.Kind {
		case SpanText, SpanMatch:
			rest := sp.Text
			for rest != "" {
				cl, r, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
				idx := -1
				if sp.Kind == SpanMatch {
					idx = sp.MatchIndex
				}
				cells = append(cells, cell{
					text:       cl,
					width:      VisibleWidth(cl),
					matchIndex: idx,
					breakable:  isBreakable(cl),
				})
				rest = r
			}
		case SpanControl:
			cells = append(cells, cell{text: hexByte(sp.Byte), width: 4, matchIndex: -1, isCtrl: true, ctrlByte: sp.Byte})
		case SpanInvalid:
			cells = append(cells, cell{text: hexByte(sp.Byte), width: 4, matchIndex: -1, isInvalid: true, ctrlByte: sp.Byte})
		case SpanUnprintable:
			cells = append(cells, cell{text: unprintableText(sp.Codepoints), width: 8 * len(sp.Codepoints), matchIndex: -1})
		case SpanTab:
			cells = append(cells, cell{text: "\t", width: -1, matchIndex: -1}) // width resolved at render time
		case SpanSGR:
			cells = append(cells, cell{isAttr: true, sgrOps: sp.SGROps})
		case SpanHyperlink:
			if sp.Hyperlink != nil {
				cells = append(cells, cell{isAttr: true, hasHLSet: true, hlURL: *sp.Hyperlink})
			} else {
				cells = append(cells, cell{isAttr: true, hlClear: true})
			}
		case SpanLineDrawing:
			cells = append(cells, cell{isAttr: true, lineDraw: true, lineDrawVal: sp.LineDrawingOn})
		case SpanIgnore:
			cells = append(cells, cell{isAttr: true, ignore: true})
		case SpanCRLF, SpanLF:
			// terminators contribute no columns; they are not re-emitted.
		}
	}
	return cells
}

func isBreakable(cluster string) bool {
	for _, r := range cluster {
		return unicode.IsSpace(r)
	}
	return false
}

func hexByte(b byte) string {
	const hex = "0123456789ABCDEF"
	return string([]byte{'<', hex[b>>4], hex[b&0xF], '>'})
}

func unprintableText(codepoints []rune) string {
	var b strings.Builder
	for _, r := range codepoints {
		b.WriteString("<U+")
		s := []byte{}
		v := uint32(r)
		if v == 0 {
			s = []byte{'0'}
		}
		for v > 0 {
			const hex = "0123456789ABCDEF"
			s = append([]byte{hex[v&0xF]}, s...)
			v >>= 4
		}
		for len(s) < 4 {
			s = append([]byte{'0'}, s...)
		}
		b.Write(s)
		b.WriteByte('>')
	}
	return b.String()
}

// row is one wrapped screen row's worth of cells.
type row []cell

// wrapRows splits cells into rows according to mode and width. Unwrapped
// always returns a single row containing everything (horizontal
// scrolling is handled at render time via start/end columns).
func wrapRows(cells []cell, width int, mode WrapMode) []row {
	if mode == Unwrapped || width <= 0 {
		return []row{row(cells)}
	}

	var rows []row
	var cur row
	col := 0
	lastBreak := -1 // index within cur of the last breakable glyph

	flush := func(upto int) {
		rows = append(rows, cur[:upto])
		rest := append(row{}, cur[upto:]...)
		cur = rest
		col = 0
		for _, c := range cur {
			if !c.isAttr {
				col += effectiveWidth(c, col)
			}
		}
		lastBreak = -1
	}

	for _, c := range cells {
		if c.isAttr {
			cur = append(cur, c)
			continue
		}
		w := effectiveWidth(c, col)
		if col+w > width && len(cur) > 0 {
			if mode == WordBoundary && lastBreak >= 0 {
				flush(lastBreak + 1)
			} else {
				flush(len(cur))
			}
		}
		cur = append(cur, c)
		if c.breakable {
			lastBreak = len(cur) - 1
		}
		col += w
	}
	rows = append(rows, cur)
	return rows
}

// effectiveWidth resolves a cell's column width, expanding tabs to the
// next multiple of 8 relative to the current column.
func effectiveWidth(c cell, col int) int {
	if c.width >= 0 {
		return c.width
	}
	// Tab: advance to next multiple of 8.
	return 8 - (col % 8)
}

// Height returns the number of screen rows the line occupies at the
// given width and wrap mode.
func (l *Line) Height(width int, mode WrapMode) int {
	if mode == Unwrapped {
		return 1
	}
	return len(wrapRows(l.cellsFor(), width, mode))
}
