// ABOUTME: Progress parses a form-feed-delimited stream into a replaceable
// ABOUTME: multi-line overlay block, per spec.md §6's wire format.

package progress

import (
	"bufio"
	"bytes"
	"io"
	"sync"
	"sync/atomic"

	"github.com/colinmarc/sp/internal/eventbus"
)

// Progress holds the most recently received progress frame. 0x0C (form
// feed) separates frames in the underlying byte stream; only the
// newest complete frame is kept, replacing whichever came before it. At
// end of stream, bytes after the last form feed are kept as a final
// frame.
type Progress struct {
	mu    sync.RWMutex
	lines []string
}

// New creates an empty Progress.
func New() *Progress {
	return &Progress{}
}

// Lines returns the current frame's lines, with any trailing ANSI
// attributes intact (rendering is the caller's concern via internal/line).
func (p *Progress) Lines() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.lines))
	copy(out, p.lines)
	return out
}

// Height returns the number of lines in the current frame.
func (p *Progress) Height() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.lines)
}

func (p *Progress) setFrame(data []byte) {
	lines := splitLines(data)
	p.mu.Lock()
	p.lines = lines
	p.mu.Unlock()
}

func splitLines(data []byte) []string {
	data = bytes.TrimRight(data, "\n")
	if len(data) == 0 {
		return nil
	}
	parts := bytes.Split(data, []byte("\n"))
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out
}

// Run reads r until EOF, replacing the current frame each time a form
// feed (0x0C) completes one, and emits a send_unique Refresh on bus
// after every new frame so the display loop redraws the overlay.
// Spurious read errors (per spec.md §7 kind 4) are swallowed; Run
// simply returns once r is exhausted or errors.
func (p *Progress) Run(r io.Reader, bus *eventbus.EventBus, refreshFlag *atomic.Bool) {
	reader := bufio.NewReader(r)
	var frame bytes.Buffer
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if frame.Len() > 0 {
				p.setFrame(frame.Bytes())
				bus.SendUnique(eventbus.Refresh{}, refreshFlag)
			}
			return
		}
		if b == 0x0C {
			p.setFrame(frame.Bytes())
			frame.Reset()
			bus.SendUnique(eventbus.Refresh{}, refreshFlag)
			continue
		}
		frame.WriteByte(b)
	}
}
