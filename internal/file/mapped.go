// ABOUTME: Mapped ingests a whole regular file in one pass over a read-only
// ABOUTME: memory mapping, indexing newlines without copying the file (§4.2).

package file

import "github.com/colinmarc/sp/internal/eventbus"

const mappedScanChunk = 1 << 20

// mappedSource adapts an mmapFile to lineSource by slicing directly
// into the mapping; no block cache is needed since the whole file is
// already resident.
type mappedSource struct{ m *mmapFile }

func (s mappedSource) withSlice(start, end int, f func([]byte)) {
	data := s.m.bytes()
	if start < 0 {
		start = 0
	}
	if end > len(data) {
		end = len(data)
	}
	if start >= end {
		f(nil)
		return
	}
	f(data[start:end])
}

// Mapped is the whole-file, memory-mapped variant. Loaded() is true
// only after Load's single sweep completes.
type Mapped struct {
	*base
	mm *mmapFile
}

// NewMapped maps path read-only. An empty file should instead be
// represented by Empty, per §4.2's "Empty files shortcut to Empty."
func NewMapped(index int, path string) (*Mapped, error) {
	mm, err := openMmap(path)
	if err != nil {
		return nil, err
	}
	m := &Mapped{mm: mm}
	m.base = newBase(index, path, mappedSource{mm})
	return m, nil
}

func (m *Mapped) Close() error { return m.mm.close() }

// Load sweeps the mapping once, indexing newlines mappedScanChunk
// bytes at a time (so m.length advances progressively for a large
// mapping rather than only becoming visible once the whole file has
// been scanned, mirroring RandomFile.loadFromScratch's chunked scan),
// then marks the file finished and emits Loaded.
func (m *Mapped) Load(bus *eventbus.EventBus) {
	data := m.mm.bytes()
	for start := 0; start < len(data); start += mappedScanChunk {
		end := start + mappedScanChunk
		if end > len(data) {
			end = len(data)
		}
		m.scanChunk(data[start:end], start)
		m.length.Store(int64(end))
	}
	m.finished.Store(true)
	bus.Send(eventbus.Loaded{FileIndex: m.index})
}

func (m *Mapped) scanChunk(chunk []byte, baseOffset int) {
	var offsets []int
	for i, b := range chunk {
		if b == '\n' {
			offsets = append(offsets, baseOffset+i)
		}
	}
	m.appendNewlines(offsets...)
}
