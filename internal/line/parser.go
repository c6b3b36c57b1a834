// ABOUTME: Parse turns one logical line's raw bytes into an ordered Span list.
// ABOUTME: Implements the byte-to-display algorithm of spec.md §4.4.

package line

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MatchRange is one search-match range expressed in the *original* byte
// offsets of a line (not the escape-stripped offsets the regex actually
// ran against — see TranslateMatches).
type MatchRange struct {
	Start, End int
	Index      int // the match's ordinal position within the file
}

// TranslateMatches maps match ranges computed against the escape-stripped
// form of data back onto data's own byte offsets, using the offset table
// stripForSearch produces. This is the mechanism spec.md §4.6 describes
// so that highlight spans land on the correct on-screen bytes even when
// a match falls within or across an escape-bracketed run.
func TranslateMatches(data []byte, strippedMatches []MatchRange) []MatchRange {
	_, offsets := stripForSearch(data)
	out := make([]MatchRange, 0, len(strippedMatches))
	for _, m := range strippedMatches {
		start := translateOffset(offsets, len(data), m.Start)
		end := translateOffset(offsets, len(data), m.End)
		if end <= start {
			continue
		}
		out = append(out, MatchRange{Start: start, End: end, Index: m.Index})
	}
	return out
}

func translateOffset(offsets []int, originalLen, strippedOffset int) int {
	if strippedOffset <= 0 {
		return 0
	}
	if strippedOffset >= len(offsets) {
		return originalLen
	}
	return offsets[strippedOffset]
}

// Parse converts the raw bytes of one logical line (including a trailing
// "\n" or "\r\n" when present) into a Span sequence. matches must be
// expressed in data's own byte offsets (see TranslateMatches) and sorted
// by Start.
func Parse(data []byte, matches []MatchRange) []Span {
	data = foldOverstrike(data)

	var spans []Span
	var textBuf []byte
	matchIdx := -1 // -1 means "not currently inside a match"
	mi := 0        // cursor into matches

	flush := func() {
		if len(textBuf) == 0 {
			return
		}
		if matchIdx >= 0 {
			spans = append(spans, Span{Kind: SpanMatch, Text: string(textBuf), MatchIndex: matchIdx})
		} else {
			spans = append(spans, Span{Kind: SpanText, Text: string(textBuf)})
		}
		textBuf = textBuf[:0]
	}

	matchAt := func(pos int) (int, bool) {
		for mi < len(matches) && matches[mi].End <= pos {
			mi++
		}
		if mi < len(matches) && matches[mi].Start <= pos && pos < matches[mi].End {
			return matches[mi].Index, true
		}
		return -1, false
	}

	i := 0
	for i < len(data) {
		b := data[i]

		switch {
		case b == '\x1b':
			flush()
			de := decodeEscape(data, i)
			spans = append(spans, escapeSpan(de))
			i = de.end
			continue
		case b == '\r' && i+1 < len(data) && data[i+1] == '\n':
			flush()
			spans = append(spans, Span{Kind: SpanCRLF})
			i += 2
			continue
		case b == '\n':
			flush()
			spans = append(spans, Span{Kind: SpanLF})
			i++
			continue
		case b == '\t':
			flush()
			spans = append(spans, Span{Kind: SpanTab})
			i++
			continue
		case b < 0x20 || b == 0x7f:
			flush()
			spans = append(spans, Span{Kind: SpanControl, Byte: b})
			i++
			continue
		}

		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			flush()
			spans = append(spans, Span{Kind: SpanInvalid, Byte: data[i]})
			i++
			continue
		}

		cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(string(data[i:]), -1)
		clusterLen := len(data) - i - len(rest)

		if VisibleWidth(cluster) == 0 {
			flush()
			spans = append(spans, Span{Kind: SpanUnprintable, Codepoints: []rune(cluster)})
			i += clusterLen
			continue
		}

		idx, inMatch := matchAt(i)
		if inMatch {
			if matchIdx != idx {
				flush()
				matchIdx = idx
			}
		} else if matchIdx != -1 {
			flush()
			matchIdx = -1
		}
		textBuf = append(textBuf, cluster...)
		i += clusterLen
	}
	flush()
	return spans
}

// escapeSpan turns a classified escape sequence into its Span form.
func escapeSpan(de decodedEscape) Span {
	switch de.class {
	case classSGR:
		return Span{Kind: SpanSGR, SGROps: de.sgrOps}
	case classHyperlinkSet:
		url := de.url
		return Span{Kind: SpanHyperlink, Hyperlink: &url}
	case classHyperlinkClear:
		return Span{Kind: SpanHyperlink, Hyperlink: nil}
	case classLineDrawingOn:
		return Span{Kind: SpanLineDrawing, LineDrawingOn: true}
	case classLineDrawingOff:
		return Span{Kind: SpanLineDrawing, LineDrawingOn: false}
	default:
		return Span{Kind: SpanIgnore}
	}
}
