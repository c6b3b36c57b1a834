// ABOUTME: Static wraps an already-complete in-memory byte slice (the help
// ABOUTME: screen's text) as a File: always loaded,
// ABOUTME: no background thread.

package file

import "strings"

type staticSource struct{ data []byte }

func (s staticSource) withSlice(start, end int, f func([]byte)) {
	if start < 0 {
		start = 0
	}
	if end > len(s.data) {
		end = len(s.data)
	}
	if start >= end {
		f(nil)
		return
	}
	f(s.data[start:end])
}

// Static is a File over a fixed byte slice set once at construction.
type Static struct {
	*base
}

// NewStatic builds a Static file over data, already fully "loaded".
func NewStatic(index int, title string, data []byte) *Static {
	var offsets []int
	for i, b := range data {
		if b == '\n' {
			offsets = append(offsets, i)
		}
	}
	s := &Static{}
	s.base = newBase(index, title, staticSource{data})
	s.appendNewlines(offsets...)
	s.length.Store(int64(len(data)))
	s.finished.Store(true)
	return s
}

// NewStaticText is a convenience constructor for plain text content,
// used by the help overlay.
func NewStaticText(index int, title, text string) *Static {
	if !strings.HasSuffix(text, "\n") && text != "" {
		text += "\n"
	}
	return NewStatic(index, title, []byte(text))
}

func (s *Static) Close() error { return nil }
