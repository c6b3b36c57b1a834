// ABOUTME: BufferCache is an LRU of fixed-size blocks read from a lazily
// ABOUTME: opened file, grounded on the teacher's container/list width cache.

package buffer

import (
	"container/list"
	"fmt"
	"os"
	"sync"
)

const (
	// DefaultBlockSize is the size of one cached block (spec.md §4.1: 1 MiB).
	DefaultBlockSize = 1 << 20
	// DefaultBlockCapacity is the number of blocks kept resident (spec.md §4.1: 16).
	DefaultBlockCapacity = 16
)

type block struct {
	index int
	data  []byte // always DefaultBlockSize long; short reads are zero-padded
}

// BufferCache is an LRU cache of fixed-size blocks backed by a file
// opened lazily on first read. It is exclusively owned by one File
// instance; WithSlice is safe to call concurrently and internally
// mutex-guarded (spec.md §5's "BufferCache: exclusive to the file's
// with_slice calls ... mutex").
type BufferCache struct {
	path      string
	blockSize int
	capacity  int

	mu      sync.Mutex
	file    *os.File // nil until first read
	openErr error
	items   map[int]*list.Element
	order   *list.List
}

// NewCache creates a BufferCache over path, with file opening deferred
// until the first WithSlice call.
func NewCache(path string) *BufferCache {
	return &BufferCache{
		path:      path,
		blockSize: DefaultBlockSize,
		capacity:  DefaultBlockCapacity,
		items:     make(map[int]*list.Element),
		order:     list.New(),
	}
}

// WithSlice applies f to the bytes in [start, end), materializing a
// contiguous copy when the range spans more than one block. Positioned
// reads that fail or hit EOF short are treated as though the missing
// bytes are zero (spec.md §4.1), never as an error.
func (c *BufferCache) WithSlice(start, end int, f func([]byte)) error {
	if end <= start {
		f(nil)
		return nil
	}

	firstBlock := start / c.blockSize
	lastBlock := (end - 1) / c.blockSize

	if firstBlock == lastBlock {
		blk, err := c.block(firstBlock)
		if err != nil {
			return err
		}
		lo, hi := start%c.blockSize, end-firstBlock*c.blockSize
		f(blk.data[lo:hi])
		return nil
	}

	buf := make([]byte, end-start)
	for i := firstBlock; i <= lastBlock; i++ {
		blk, err := c.block(i)
		if err != nil {
			return err
		}
		blockStart := i * c.blockSize
		lo := 0
		if blockStart < start {
			lo = start - blockStart
		}
		hi := c.blockSize
		if blockStart+c.blockSize > end {
			hi = end - blockStart
		}
		dstStart := blockStart + lo - start
		copy(buf[dstStart:], blk.data[lo:hi])
	}
	f(buf)
	return nil
}

// block returns the cached block at index i, reading it from the
// backing file (opening it lazily) on a cache miss.
func (c *BufferCache) block(i int) (block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[i]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(block), nil
	}

	if c.file == nil && c.openErr == nil {
		f, err := os.Open(c.path)
		if err != nil {
			c.openErr = err
		} else {
			c.file = f
		}
	}

	data := make([]byte, c.blockSize)
	if c.file != nil {
		n, err := c.file.ReadAt(data, int64(i)*int64(c.blockSize))
		if err != nil && n == 0 {
			// Short/failed positioned read: the caller sees zeros, per
			// spec.md §4.1's "treated as though the data is absent".
		} else if n < len(data) {
			for j := n; j < len(data); j++ {
				data[j] = 0
			}
		}
	}

	blk := block{index: i, data: data}
	elem := c.order.PushFront(blk)
	c.items[i] = elem
	if c.order.Len() > c.capacity {
		back := c.order.Back()
		if back != nil {
			c.order.Remove(back)
			delete(c.items, back.Value.(block).index)
		}
	}
	return blk, nil
}

// Close releases the backing file handle, if open.
func (c *BufferCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	if err := c.file.Close(); err != nil {
		return fmt.Errorf("buffer: closing %s: %w", c.path, err)
	}
	c.file = nil
	return nil
}
