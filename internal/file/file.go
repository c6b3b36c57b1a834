// ABOUTME: File is the common contract all six source variants satisfy.
// ABOUTME: Line boundaries are derived uniformly from a newline-offset index.

package file

import "fmt"

// File is the public contract of spec.md §4.2's "every variant" table.
type File interface {
	Index() int
	Title() string
	Info() string
	Loaded() bool
	Lines() int
	WithLine(i int, f func([]byte)) bool
	SetNeededLines(n int)
	Paused() bool
	Error() error
	Close() error
}

// LineOutOfRangeError is returned by Controlled.ApplyChanges when an
// operation names an index or range outside the file's current extent.
type LineOutOfRangeError struct {
	Index  int
	Length int
}

func (e *LineOutOfRangeError) Error() string {
	return fmt.Sprintf("file: line %d out of range (length %d)", e.Index, e.Length)
}

// lineSource is the byte-range accessor a base delegates WithLine to;
// each variant supplies its own (a blockList for in-memory streamed
// content, a buffer.BufferCache for file-backed content, or a plain
// slice for static content).
type lineSource interface {
	withSlice(start, end int, f func([]byte))
}
