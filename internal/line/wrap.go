// ABOUTME: ANSI-aware text truncation for single rows of fixed width
// ABOUTME: TruncateToWidth clips a rendered row and adds an ellipsis

package line

import (
	"strings"

	"github.com/rivo/uniseg"
)

// TruncateToWidth truncates s to at most maxWidth visible columns.
// If truncation occurs, the last visible character is replaced with ellipsis.
func TruncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	w := VisibleWidth(s)
	if w <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "\u2026" // single ellipsis character
	}

	var b strings.Builder
	col := 0
	target := maxWidth - 1 // Leave room for ellipsis
	i := 0
	for i < len(s) && col < target {
		if s[i] == '\x1b' {
			end := skipANSISequence(s, i)
			b.WriteString(s[i:end])
			i = end
			continue
		}
		cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
		cw := graphemeWidth(cluster)
		if col+cw > target {
			break
		}
		b.WriteString(cluster)
		col += cw
		i += len(s[i:]) - len(rest)
	}
	b.WriteString("\x1b[0m") // Reset before ellipsis
	b.WriteRune('\u2026')
	return b.String()
}
