// ABOUTME: Streamed is the file variant for non-seekable sources (stdin, pipes):
// ABOUTME: a single reader goroutine ingests into a growing blockList (§4.2).

package file

import (
	"errors"
	"io"
	"sync/atomic"
	"syscall"

	"github.com/colinmarc/sp/internal/buffer"
	"github.com/colinmarc/sp/internal/eventbus"
)

const streamedReadSize = 32 * 1024

// Streamed reads a single pass from an io.Reader until EOF or error,
// appending into in-memory blocks. It implements File.
type Streamed struct {
	*base
	blocks *blockList
}

// NewStreamed creates a Streamed file with no needed-lines threshold
// set (the caller, typically the screen, raises it once it knows how
// many lines it wants to show).
func NewStreamed(index int, title string) *Streamed {
	bl := newBlockList(buffer.DefaultBlockSize)
	s := &Streamed{blocks: bl}
	s.base = newBase(index, title, bl)
	return s
}

// Run ingests r until EOF or a non-retryable error, sending Appending
// after each successful read batch and Loaded at EOF. appendingFlag
// dedupes rapid Appending bursts through SendUnique.
func (s *Streamed) Run(r io.Reader, bus *eventbus.EventBus, appendingFlag *atomic.Bool) {
	buf := make([]byte, streamedReadSize)
	for {
		s.waitIfPaused(s.Lines)

		n, err := r.Read(buf)
		if n > 0 {
			s.ingest(buf[:n])
			bus.SendUnique(eventbus.Appending{FileIndex: s.index}, appendingFlag)
		}
		if err != nil {
			if isInterrupted(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				s.finished.Store(true)
				bus.Send(eventbus.Loaded{FileIndex: s.index})
				return
			}
			s.setError(err)
			return
		}
	}
}

func (s *Streamed) ingest(data []byte) {
	start := int(s.length.Load())
	for written := 0; written < len(data); {
		n := s.blocks.append(data[written:])
		if n == 0 {
			break
		}
		written += n
	}

	var offsets []int
	for i, b := range data {
		if b == '\n' {
			offsets = append(offsets, start+i)
		}
	}
	s.appendNewlines(offsets...)
	s.length.Store(int64(start + len(data)))
}

func (s *Streamed) Close() error { return nil }

func isInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}
