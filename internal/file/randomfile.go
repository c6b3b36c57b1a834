// ABOUTME: RandomFile watches a real path on disk, ingesting via positioned
// ABOUTME: reads with fingerprint-based append/reload detection (§4.2).

package file

import (
	"bytes"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/colinmarc/sp/internal/buffer"
	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/logx"
)

const (
	watchDebounce       = 500 * time.Millisecond
	watchBackoff        = time.Second
	tailFingerprintSize = 4 * 1024
	randomFileReadChunk = buffer.DefaultBlockSize
)

// cacheSource adapts buffer.BufferCache (whose WithSlice returns an
// error that §4.1 says is never meaningfully non-nil) to lineSource.
type cacheSource struct{ c *buffer.BufferCache }

func (c cacheSource) withSlice(start, end int, f func([]byte)) {
	_ = c.c.WithSlice(start, end, f)
}

type randomFileSignal int

const (
	sigAppend randomFileSignal = iota
	sigReload
)

// RandomFile is the seekable, watched regular-file variant. Two
// goroutines cooperate: Watch (fsnotify events debounced into
// internal Append/Reload signals) and Load (the Loading/Idle/
// Appending/Reloading state machine of §4.2).
type RandomFile struct {
	*base
	path  string
	cache *buffer.BufferCache

	tail []byte // last up-to-4KiB read, for append-vs-reload detection

	signal chan randomFileSignal
}

// NewRandomFile opens path for watched, positioned reads.
func NewRandomFile(index int, path string) *RandomFile {
	cache := buffer.NewCache(path)
	rf := &RandomFile{path: path, cache: cache, signal: make(chan randomFileSignal, 8)}
	rf.base = newBase(index, path, cacheSource{cache})
	return rf
}

func (rf *RandomFile) Close() error { return rf.cache.Close() }

// Watch installs an fsnotify watch on the file's parent directory
// (watching the file itself misses rename/remove on some platforms)
// and forwards debounced Append/Reload signals to Load. On watcher
// failure it backs off watchBackoff and re-installs, per §4.2.
func (rf *RandomFile) Watch() {
	for {
		if err := rf.watchOnce(); err != nil {
			logx.Warn("file: watch %s failed, retrying: %v", rf.path, err)
			time.Sleep(watchBackoff)
			continue
		}
		return
	}
}

func (rf *RandomFile) watchOnce() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(parentDir(rf.path)); err != nil {
		return err
	}

	var debounceTimer *time.Timer
	pendingReload := false
	flush := func() {
		if pendingReload {
			rf.signal <- sigReload
		} else {
			rf.signal <- sigAppend
		}
		pendingReload = false
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != rf.path {
				continue
			}
			if ev.Op&(fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
				pendingReload = true
			}
			if debounceTimer == nil {
				debounceTimer = time.AfterFunc(watchDebounce, flush)
			} else {
				debounceTimer.Reset(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			if i == 0 {
				return "/"
			}
			return path[:i]
		}
	}
	return "."
}

// LoaderFlags are the SendUnique dedup flags Load uses for its three
// emitted event kinds.
type LoaderFlags struct {
	Loaded    *atomic.Bool
	Appending *atomic.Bool
	Reloading *atomic.Bool
}

// Load runs the Loading/Idle/Appending/Reloading state machine of
// §4.2, driven by signals Watch sends after startup's initial scan.
func (rf *RandomFile) Load(bus *eventbus.EventBus, flags LoaderFlags) {
	rf.loadFromScratch(bus, flags)
	for sig := range rf.signal {
		switch sig {
		case sigAppend:
			if !rf.tryAppend(bus, flags) {
				rf.reload(bus, flags)
			}
		case sigReload:
			rf.reload(bus, flags)
		}
	}
}

// loadFromScratch performs the initial Loading pass: sequential reads
// from offset 0, tracking newlines, length, and the tail fingerprint.
func (rf *RandomFile) loadFromScratch(bus *eventbus.EventBus, flags LoaderFlags) {
	f, err := os.Open(rf.path)
	if err != nil {
		rf.setError(err)
		return
	}
	defer f.Close()

	buf := make([]byte, randomFileReadChunk)
	offset := 0
	for {
		n, err := f.Read(buf)
		if n > 0 {
			rf.scanChunk(buf[:n], offset)
			offset += n
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			if isInterrupted(err) {
				continue
			}
			rf.setError(err)
			return
		}
	}
	rf.updateTail(f, offset)
	rf.finished.Store(true)
	rf.clearReloadFloor()
	bus.SendUnique(eventbus.Loaded{FileIndex: rf.index}, flags.Loaded)
}

func (rf *RandomFile) scanChunk(chunk []byte, baseOffset int) {
	var offsets []int
	for i, b := range chunk {
		if b == '\n' {
			offsets = append(offsets, baseOffset+i)
		}
	}
	rf.appendNewlines(offsets...)
	rf.length.Store(int64(baseOffset + len(chunk)))
}

// updateTail records the file's last up-to-tailFingerprintSize bytes
// as the append/reload fingerprint.
func (rf *RandomFile) updateTail(f *os.File, length int) {
	size := tailFingerprintSize
	if length < size {
		size = length
	}
	tail := make([]byte, size)
	if size > 0 {
		if _, err := f.ReadAt(tail, int64(length-size)); err != nil {
			tail = nil
		}
	}
	rf.tail = tail
}

// tryAppend re-opens the file, re-reads the fingerprint region, and
// compares it against rf.tail. A match means the file only grew; it
// scans the new tail and returns true. A mismatch means the file was
// truncated or rewritten underneath the old fingerprint; it returns
// false so the caller reloads from scratch.
func (rf *RandomFile) tryAppend(bus *eventbus.EventBus, flags LoaderFlags) bool {
	f, err := os.Open(rf.path)
	if err != nil {
		rf.setError(err)
		return true
	}
	defer f.Close()

	length := int(rf.length.Load())
	fingerprintStart := length - len(rf.tail)
	if fingerprintStart < 0 {
		fingerprintStart = 0
	}
	check := make([]byte, len(rf.tail))
	if len(check) > 0 {
		if _, err := f.ReadAt(check, int64(fingerprintStart)); err != nil {
			return false
		}
		if !bytes.Equal(check, rf.tail) {
			return false
		}
	}

	bus.SendUnique(eventbus.Appending{FileIndex: rf.index}, flags.Appending)

	buf := make([]byte, randomFileReadChunk)
	offset := length
	for {
		n, err := f.ReadAt(buf, int64(offset))
		if n > 0 {
			rf.scanChunk(buf[:n], offset)
			offset += n
		}
		if err != nil {
			break
		}
	}
	rf.updateTail(f, offset)
	return true
}

// reload resets the loader and re-runs loadFromScratch, raising the
// reload floor so Lines() never regresses mid-reload (§4.2).
func (rf *RandomFile) reload(bus *eventbus.EventBus, flags LoaderFlags) {
	rf.resetForReload()
	rf.cache = buffer.NewCache(rf.path)
	rf.src = cacheSource{rf.cache}
	bus.SendUnique(eventbus.Reloading{FileIndex: rf.index}, flags.Reloading)
	rf.loadFromScratch(bus, flags)
}
