// ABOUTME: blockList is a growable chain of buffer.Buffer blocks backing
// ABOUTME: Streamed ingestion, since a pipe source has no file to page back in from.

package file

import (
	"sync"

	"github.com/colinmarc/sp/internal/buffer"
)

// blockList holds the tail Buffer plus every prior full block, per
// spec.md §4.1/§4.2: "a single background thread repeatedly reads
// into the tail Buffer, appending new buffers as needed." Readers
// (WithLine) take the read lock; the single writer (the ingestion
// goroutine) takes the write lock only to append a new block, never
// to write into an existing one (Buffer.Append's atomic cursor keeps
// concurrent reads of a filling block safe without a lock).
type blockList struct {
	mu        sync.RWMutex
	blockSize int
	blocks    []*buffer.Buffer
}

func newBlockList(blockSize int) *blockList {
	return &blockList{blockSize: blockSize}
}

// append writes as much of data as fits in the current tail block,
// allocating a new block first if the tail is full or absent. It
// returns the number of bytes written, which the caller loops on
// until all of data is consumed.
func (bl *blockList) append(data []byte) int {
	bl.mu.Lock()
	if len(bl.blocks) == 0 || bl.blocks[len(bl.blocks)-1].Full() {
		bl.blocks = append(bl.blocks, buffer.New(bl.blockSize))
	}
	tail := bl.blocks[len(bl.blocks)-1]
	bl.mu.Unlock()
	return tail.Append(data)
}

func (bl *blockList) withSlice(start, end int, f func([]byte)) {
	if end <= start {
		f(nil)
		return
	}
	bl.mu.RLock()
	defer bl.mu.RUnlock()

	firstBlock := start / bl.blockSize
	lastBlock := (end - 1) / bl.blockSize
	if firstBlock >= len(bl.blocks) {
		f(nil)
		return
	}
	if lastBlock >= len(bl.blocks) {
		lastBlock = len(bl.blocks) - 1
	}

	if firstBlock == lastBlock {
		filled := bl.blocks[firstBlock].Filled()
		lo := start - firstBlock*bl.blockSize
		hi := end - firstBlock*bl.blockSize
		if hi > len(filled) {
			hi = len(filled)
		}
		if lo > hi {
			lo = hi
		}
		f(filled[lo:hi])
		return
	}

	buf := make([]byte, 0, end-start)
	for i := firstBlock; i <= lastBlock; i++ {
		filled := bl.blocks[i].Filled()
		blockStart := i * bl.blockSize
		lo := 0
		if blockStart < start {
			lo = start - blockStart
		}
		hi := len(filled)
		if want := end - blockStart; want < hi {
			hi = want
		}
		if lo < hi {
			buf = append(buf, filled[lo:hi]...)
		}
	}
	f(buf)
}
