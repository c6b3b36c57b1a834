// ABOUTME: Direct mode streams output to the main screen before (and maybe
// ABOUTME: instead of) entering full-screen, per spec.md §4.9.

package direct

import (
	"bytes"
	"fmt"
	"time"

	"github.com/colinmarc/sp/internal/config"
	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/file"
	"github.com/colinmarc/sp/internal/keymap"
	"github.com/colinmarc/sp/internal/line"
	"github.com/colinmarc/sp/internal/progress"
	"github.com/colinmarc/sp/internal/terminal"
)

// Outcome is Run's result, driving the caller's full-screen transition.
type Outcome int

const (
	// RenderComplete means every line was shown and the streams ended;
	// the pager should exit without entering the alternate screen.
	RenderComplete Outcome = iota
	// RenderIncomplete means content overflowed the screen (Hybrid) or
	// the user asked to switch early; enter full-screen, staying on the
	// main screen rather than the alternate one.
	RenderIncomplete
	// RenderNothing means nothing was drawn at all (plain full-screen
	// mode, or Delayed giving up before its deadline); enter the
	// alternate screen and begin full-screen from scratch.
	RenderNothing
	// Interrupted means the user pressed q or Ctrl+C; exit immediately.
	Interrupted
)

func (o Outcome) String() string {
	switch o {
	case RenderComplete:
		return "RenderComplete"
	case RenderIncomplete:
		return "RenderIncomplete"
	case RenderNothing:
		return "RenderNothing"
	case Interrupted:
		return "Interrupted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// pollInterval bounds how long each tick waits for an event before
// re-checking the deadline and re-polling file/progress state.
const pollInterval = 10 * time.Millisecond

// Run streams unread lines from outputFiles and errorFiles, plus the
// current progress frame, to term until the streams end, the viewport
// fills up, a Delayed deadline passes, or the user interrupts or asks
// to switch early. mode and delayedDuration come from the resolved
// config.Config; delayedDuration is ignored unless mode is ModeDelayed
// (zero means wait indefinitely for EOF or overflow).
func Run(
	term terminal.Terminal,
	outputFiles, errorFiles []file.File,
	prog *progress.Progress,
	bus *eventbus.EventBus,
	mode config.InterfaceMode,
	delayedDuration time.Duration,
) (Outcome, error) {
	if mode == config.ModeFullscreen {
		return RenderNothing, nil
	}

	delayed := mode == config.ModeDelayed
	var deadline time.Time
	hasDeadline := false
	if delayed && delayedDuration > 0 {
		deadline = time.Now().Add(delayedDuration)
		hasDeadline = true
	}
	// Cat mode never stops early for overflowing the screen; every other
	// mode that reaches Run does (Hybrid incrementally, Delayed all at once).
	oneScreenLimit := mode != config.ModeCat

	width, height, err := term.Size()
	if err != nil {
		return RenderNothing, err
	}

	d := newCollector(outputFiles, errorFiles)
	var state streamingState
	loaded := make(map[int]bool)
	remaining := len(outputFiles) + len(errorFiles)

	for remaining > 0 {
		if ev, ok := bus.Get(pollInterval); ok {
			switch e := ev.(type) {
			case eventbus.Loaded:
				if !loaded[e.FileIndex] {
					loaded[e.FileIndex] = true
					remaining--
				}
			case eventbus.Resize:
				if w, h, serr := term.Size(); serr == nil {
					width, height = w, h
				}
			case eventbus.KeyInput:
				if outcome, handled := handleKey(e.Key, delayed); handled {
					return outcome, nil
				}
			}
		}

		if hasDeadline && !time.Now().Before(deadline) {
			return RenderNothing, nil
		}

		appendOutput := d.collectUnread(outputFiles, height+2)
		appendError := d.collectUnread(errorFiles, height+2)
		progressLines := readProgressLines(prog)

		if delayed {
			state.applyChanges(0, appendOutput, appendError, progressLines)
			if oneScreenLimit && state.height() >= height {
				return RenderNothing, nil
			}
			continue
		}

		changes := state.renderChanges(appendOutput, appendError, progressLines, width)
		if oneScreenLimit && state.height() >= height {
			return RenderIncomplete, nil
		}
		if len(changes) > 0 {
			if _, werr := term.Write(changes); werr != nil {
				return RenderNothing, werr
			}
		}
	}

	if delayed {
		if _, werr := term.Write(state.renderAll(width)); werr != nil {
			return RenderNothing, werr
		}
	}
	return RenderComplete, nil
}

// handleKey maps a direct-mode key press to an early Outcome. q/Ctrl+C
// always interrupt; f/Space is a hint to switch to full-screen now,
// which for a buffered Delayed run means discarding the buffer
// (RenderNothing) rather than flushing a partial frame.
func handleKey(k keymap.Key, delayed bool) (Outcome, bool) {
	if k.Type == keymap.KeyCtrlC || (k.Type == keymap.KeyRune && k.Rune == 'q') {
		return Interrupted, true
	}
	if k.Type == keymap.KeyRune && (k.Rune == 'f' || k.Rune == ' ') {
		if delayed {
			return RenderNothing, true
		}
		return RenderIncomplete, true
	}
	return 0, false
}

// collector tracks, per file index, the next unread line so repeated
// ticks only gather newly appended lines (original_source/src/direct.rs's
// collect_unread, generalized from a closure over a VecMap to a type).
type collector struct {
	lastRead map[int]int
}

func newCollector(outputFiles, errorFiles []file.File) *collector {
	return &collector{lastRead: make(map[int]int, len(outputFiles)+len(errorFiles))}
}

// collectUnread reads up to maxLines newly available lines from each
// file in files, holding back a loading file's dangling unterminated
// last line until it either completes or the file finishes loading.
func (c *collector) collectUnread(files []file.File, maxLines int) [][]byte {
	var result [][]byte
	for _, f := range files {
		idx := f.Index()
		last := c.lastRead[idx]
		f.SetNeededLines(last + maxLines)

		lines := f.Lines()
		if lines > 0 && !f.Loaded() {
			var endsInNewline bool
			f.WithLine(lines-1, func(p []byte) {
				endsInNewline = len(p) > 0 && p[len(p)-1] == '\n'
			})
			if !endsInNewline {
				lines--
			}
		}
		if lines < last {
			continue
		}

		end := last + maxLines
		if end > lines {
			end = lines
		}
		for i := last; i < end; i++ {
			var data []byte
			f.WithLine(i, func(p []byte) { data = append([]byte(nil), p...) })
			result = append(result, data)
		}
		c.lastRead[idx] = end
	}
	return result
}

func readProgressLines(prog *progress.Progress) [][]byte {
	if prog == nil {
		return nil
	}
	lines := prog.Lines()
	if len(lines) == 0 {
		return nil
	}
	result := make([][]byte, len(lines))
	for i, l := range lines {
		result[i] = []byte(l)
	}
	return result
}

// streamingState accumulates what direct mode has shown so far so that
// Cat/Hybrid incremental rendering can erase and redraw only the
// mutable error+progress tail instead of the whole history, per
// original_source/src/direct.rs's StreamingLines:
//
//	past output (never redrawn)
//	new output (just received)
//	error (always redrawn)
//	progress (always redrawn)
type streamingState struct {
	pastOutputLineCount int
	pastOutputLines     [][]byte
	errorLines          [][]byte
	progressLines       [][]byte
}

func (s *streamingState) applyChanges(pastCount int, appendOutput, appendError, replaceProgress [][]byte) {
	s.pastOutputLineCount += pastCount
	s.pastOutputLines = append(s.pastOutputLines, appendOutput...)
	s.errorLines = append(s.errorLines, appendError...)
	s.progressLines = replaceProgress
}

func (s *streamingState) height() int {
	return s.pastOutputLineCount + len(s.pastOutputLines) + len(s.errorLines) + len(s.progressLines)
}

// renderChanges returns the raw bytes to write for one incremental tick,
// or nil if nothing changed. It erases the previous error+progress tail
// with a cursor-up plus clear-to-end-of-screen, then draws new output,
// the full (possibly grown) error tail, and the new progress block.
func (s *streamingState) renderChanges(appendOutput, appendError, progressLines [][]byte, width int) []byte {
	if len(appendOutput) == 0 && len(appendError) == 0 && sameLines(progressLines, s.progressLines) {
		return nil
	}

	var b bytes.Buffer
	eraseCount := len(s.progressLines) + len(s.errorLines)
	if eraseCount > 0 {
		fmt.Fprintf(&b, "\x1b[%dA", eraseCount)
		b.WriteString("\x1b[J")
	}

	for _, data := range concatLines(appendOutput, s.errorLines, appendError, progressLines) {
		b.WriteString(renderRawLine(data, width))
		b.WriteString("\r\n")
	}

	s.applyChanges(len(appendOutput), nil, appendError, progressLines)
	return b.Bytes()
}

// renderAll draws the whole buffered run in one shot, for a Delayed
// run that reached EOF without ever exceeding one screen.
func (s *streamingState) renderAll(width int) []byte {
	var b bytes.Buffer
	for _, data := range concatLines(s.pastOutputLines, s.errorLines, s.progressLines) {
		b.WriteString(renderRawLine(data, width))
		b.WriteString("\r\n")
	}
	return b.Bytes()
}

func concatLines(groups ...[][]byte) [][]byte {
	var all [][]byte
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

func sameLines(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func renderRawLine(data []byte, width int) string {
	l := line.New(data, nil)
	return l.Render(line.RenderOptions{Width: width, Mode: line.Unwrapped, CurrentMatch: -1, LineNumber: -1})
}
