// ABOUTME: Ruler builds the one-line status row: title, file info, line
// ABOUTME: range/total, loading spinner, and paused indicator (spec.md §4.8).

package screen

import (
	"fmt"
	"strings"

	"github.com/colinmarc/sp/internal/line"
)

// spinnerFrames is the five-step loading animation shown while a file is
// not yet loaded, grounded on the teacher's braille loader component.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼"}

// Ruler holds the animation phase for one file's status row. Tick is
// called once per render so the spinner advances only while visible.
type Ruler struct {
	frame int
}

// Tick advances the spinner to its next frame and returns it.
func (r *Ruler) Tick() string {
	f := spinnerFrames[r.frame%len(spinnerFrames)]
	r.frame++
	return f
}

// Build renders the ruler row for one file's current state, truncated
// to width; a shorter row is not padded.
func (r *Ruler) Build(title, info string, loaded, paused, following bool, topLine, bottomLine, total, width int) string {
	var b strings.Builder
	b.WriteString(title)
	if info != "" {
		b.WriteString(": ")
		b.WriteString(info)
	}

	b.WriteString("  ")
	switch {
	case total == 0:
		b.WriteString("(empty)")
	case topLine >= total:
		b.WriteString(fmt.Sprintf("line %d/%d", total, total))
	case bottomLine >= total-1:
		b.WriteString(fmt.Sprintf("lines %d-%d/%d", topLine+1, total, total))
	default:
		b.WriteString(fmt.Sprintf("lines %d-%d/%d", topLine+1, bottomLine+1, total))
	}

	if !loaded {
		b.WriteString("  ")
		b.WriteString(r.Tick())
	}
	if paused && !following {
		b.WriteString("  [loading paused]")
	}

	return line.TruncateToWidth(b.String(), width)
}
