// ABOUTME: Cache is an LRU of parsed line.Line objects keyed by line index.
// ABOUTME: Avoids re-parsing a line's Spans on every redraw of an unchanged view.

package linecache

import (
	"container/list"
	"sync"

	"github.com/colinmarc/sp/internal/line"
)

// DefaultCapacity is the default number of parsed lines retained, per
// spec.md §4.5.
const DefaultCapacity = 1000

type entry struct {
	index int
	line  *line.Line
}

// Cache is a concurrency-safe LRU of parsed lines. It is entirely a
// performance optimization over internal/line.New/Parse: any indexed
// entry may be silently evicted and must be reconstructed via Get's
// loader.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[int]*list.Element
	order    *list.List
}

// New creates a Cache with the given capacity. A non-positive capacity
// is replaced with DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[int]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached Line for index, building and inserting it via
// build if absent. build must return a fully parsed Line for index;
// Get does not call build concurrently for the same index with itself
// (the whole cache is locked for the duration of a miss), so a slow
// build serializes other callers momentarily rather than racing.
func (c *Cache) Get(index int, build func() *line.Line) *line.Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[index]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry).line
	}

	l := build()
	c.insertLocked(index, l)
	return l
}

// Invalidate drops a single cached index, if present. Useful when one
// line's content changes (spec.md's Controlled file line mutations)
// without invalidating the whole cache.
func (c *Cache) Invalidate(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[index]; ok {
		c.order.Remove(elem)
		delete(c.items, index)
	}
}

// Clear empties the cache. Called on file reload and whenever the
// active search changes, since a Line's Spans embed match highlighting
// computed against a specific search (spec.md §4.6).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[int]*list.Element, c.capacity)
	c.order.Init()
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) insertLocked(index int, l *line.Line) {
	if c.order.Len() >= c.capacity {
		back := c.order.Back()
		if back != nil {
			c.order.Remove(back)
			delete(c.items, back.Value.(*entry).index)
		}
	}
	elem := c.order.PushFront(&entry{index: index, line: l})
	c.items[index] = elem
}
