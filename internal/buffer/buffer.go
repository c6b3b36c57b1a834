// ABOUTME: Buffer is a fixed-capacity append-only byte region: one writer
// ABOUTME: advances the fill cursor, any number of readers see a stable prefix.

package buffer

import "sync/atomic"

// Buffer holds up to cap(data) bytes, appended by a single writer.
// Readers call Filled to obtain an immutable view of everything
// committed so far; they never observe a torn or partially-written
// byte, since filled is only advanced after the bytes are in place.
type Buffer struct {
	data   []byte
	filled atomic.Int64
}

// New allocates a Buffer with the given fixed capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Len returns the number of committed bytes.
func (b *Buffer) Len() int {
	return int(b.filled.Load())
}

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Filled returns a slice over the committed prefix. The slice is safe
// to read concurrently with Append/Write, since committed bytes are
// never overwritten.
func (b *Buffer) Filled() []byte {
	return b.data[:b.Len()]
}

// Unfilled returns the writer's exclusive mutable suffix, i.e. the
// remaining capacity not yet committed. Only the single writer may
// call this.
func (b *Buffer) Unfilled() []byte {
	return b.data[b.Len():]
}

// Commit advances the fill cursor by n bytes, making them visible to
// readers. The writer must have already placed those bytes via the
// slice returned by Unfilled.
func (b *Buffer) Commit(n int) {
	b.filled.Add(int64(n))
}

// Append writes p into the unfilled suffix and commits it, returning
// the number of bytes actually written (p is truncated to the
// remaining capacity).
func (b *Buffer) Append(p []byte) int {
	dst := b.Unfilled()
	n := copy(dst, p)
	b.Commit(n)
	return n
}

// Full reports whether the buffer has no remaining capacity.
func (b *Buffer) Full() bool {
	return b.Len() == b.Cap()
}
