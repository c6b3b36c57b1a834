// ABOUTME: base implements the shared line-index bookkeeping of spec.md §4.2
// ABOUTME: (newlines, length, finished, reload floor, backpressure) for every variant.

package file

import (
	"sync"
	"sync/atomic"
)

// base is embedded by the Streamed, RandomFile, Mapped and Static
// variants; Controlled and Empty manage their own simpler state
// directly.
type base struct {
	index int
	title string
	src   lineSource

	mu       sync.RWMutex
	info     string
	newlines []int
	err      error

	length      atomic.Int64
	finished    atomic.Bool
	reloadFloor atomic.Int64

	neededMu   sync.Mutex
	neededCond *sync.Cond
	needed     int
	paused     atomic.Bool
}

func newBase(index int, title string, src lineSource) *base {
	b := &base{index: index, title: title, src: src}
	b.neededCond = sync.NewCond(&b.neededMu)
	return b
}

func (b *base) Index() int { return b.index }
func (b *base) Title() string { return b.title }

func (b *base) Info() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

func (b *base) setInfo(s string) {
	b.mu.Lock()
	b.info = s
	b.mu.Unlock()
}

func (b *base) Loaded() bool { return b.finished.Load() }

func (b *base) Error() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

func (b *base) setError(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

// Lines returns the known line count, including one trailing partial
// line when bytes exist past the last newline, floored by the line
// count recorded at the last reload until clearReloadFloor resets it
// (the reload-floor rule of §4.2's "Random-file ingestion").
func (b *base) Lines() int {
	b.mu.RLock()
	n := len(b.newlines)
	trailingStart := 0
	if n > 0 {
		trailingStart = b.newlines[n-1] + 1
	}
	b.mu.RUnlock()

	count := n
	if int(b.length.Load()) > trailingStart {
		count = n + 1
	}
	if floor := int(b.reloadFloor.Load()); count < floor {
		count = floor
	}
	return count
}

func (b *base) appendNewlines(offsets ...int) {
	if len(offsets) == 0 {
		return
	}
	b.mu.Lock()
	b.newlines = append(b.newlines, offsets...)
	b.mu.Unlock()
}

// resetForReload clears the newline index and length, raises the
// reload floor to the line count observed just before reload, per
// §4.2's "sets the reload-line-count floor to max(previous_floor,
// current_line_count)".
func (b *base) resetForReload() {
	current := b.Lines()
	b.mu.Lock()
	b.newlines = nil
	b.err = nil
	b.mu.Unlock()
	b.length.Store(0)
	b.finished.Store(false)
	if current > int(b.reloadFloor.Load()) {
		b.reloadFloor.Store(int64(current))
	}
}

func (b *base) clearReloadFloor() {
	b.reloadFloor.Store(0)
}

func (b *base) Paused() bool { return b.paused.Load() }

// SetNeededLines monotonically raises the backpressure threshold and
// wakes a loader paused in waitIfPaused.
func (b *base) SetNeededLines(n int) {
	b.neededMu.Lock()
	if n > b.needed {
		b.needed = n
		b.neededCond.Broadcast()
	}
	b.neededMu.Unlock()
}

// waitIfPaused blocks while lineCount() >= the current needed-lines
// threshold, marking Paused() true for the duration, per the
// backpressure predicate of §4.2's "Streamed ingestion".
func (b *base) waitIfPaused(lineCount func() int) {
	b.neededMu.Lock()
	defer b.neededMu.Unlock()
	for lineCount() >= b.needed {
		b.paused.Store(true)
		b.neededCond.Wait()
	}
	b.paused.Store(false)
}

// WithLine borrows the bytes of line i (including its trailing "\n"
// when present) via the variant's lineSource, per §4.2's "Read-line
// semantics".
func (b *base) WithLine(i int, f func([]byte)) bool {
	b.mu.RLock()
	n := len(b.newlines)
	if i < 0 || i > n {
		b.mu.RUnlock()
		return false
	}
	start := 0
	if i > 0 {
		start = b.newlines[i-1] + 1
	}
	var end int
	if i < n {
		end = b.newlines[i] + 1
	} else {
		end = int(b.length.Load())
	}
	b.mu.RUnlock()

	if start == end {
		return false
	}
	b.src.withSlice(start, end, f)
	return true
}
