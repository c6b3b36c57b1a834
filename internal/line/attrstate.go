// ABOUTME: AttributeState tracks current SGR attributes and DEC line-drawing
// ABOUTME: mode across spans, emitting escape sequences only when they change.

package line

import "strings"

// AttributeState accumulates SGR sub-commands the way a real terminal
// does: each command is additive until a reset (bare "0" or equivalent)
// clears the slate. It also tracks whether DEC line-drawing mode and an
// OSC-8 hyperlink are currently active.
type AttributeState struct {
	ops         []string
	lineDrawing bool
	hyperlink   string
	lastEmitted string
}

// ApplySGR folds ops into the current attribute state.
func (a *AttributeState) ApplySGR(ops []string) {
	for _, op := range ops {
		if op == "" || op == "0" {
			a.ops = a.ops[:0]
			continue
		}
		a.ops = append(a.ops, op)
	}
}

// SetLineDrawing toggles DEC special-graphics mode.
func (a *AttributeState) SetLineDrawing(on bool) { a.lineDrawing = on }

// LineDrawing reports whether DEC special-graphics mode is active.
func (a *AttributeState) LineDrawing() bool { return a.lineDrawing }

// SetHyperlink sets (non-empty) or clears (empty) the active hyperlink target.
func (a *AttributeState) SetHyperlink(url string) { a.hyperlink = url }

// Hyperlink returns the active hyperlink target, or "" if none.
func (a *AttributeState) Hyperlink() string { return a.hyperlink }

// Escape returns the SGR escape sequence needed to reproduce the current
// state, or "" if the state is the default (no attributes).
func (a *AttributeState) Escape() string {
	if len(a.ops) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(a.ops, ";") + "m"
}

// EmitIfChanged returns the escape sequence to transition into the
// current state, but only the first time it's called for a given state;
// subsequent calls with no intervening Apply* return "". This implements
// the "emit lazily when the effective style changes" rule.
func (a *AttributeState) EmitIfChanged() string {
	cur := a.Escape()
	if cur == a.lastEmitted {
		return ""
	}
	prev := a.lastEmitted
	a.lastEmitted = cur
	if prev != "" && !strings.HasPrefix(cur, strings.TrimSuffix(prev, "m")+";") {
		return resetSGR + cur
	}
	return cur
}

// Reset clears all tracked attributes, as if freshly constructed.
func (a *AttributeState) Reset() {
	a.ops = a.ops[:0]
	a.lineDrawing = false
	a.hyperlink = ""
	a.lastEmitted = ""
}
