// ABOUTME: Background regex sweep over a file's lines, per spec.md §4.6.
// ABOUTME: Produces ordered LineMatch records and a clampable match cursor.

package search

import (
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/line"
)

// LineSource is the minimal view of a file a Search sweeps over. A
// file.File does not satisfy it directly; pkg/pager adapts one through
// its fileLineSource type. Lines may grow as a streamed source
// loads, but one Search sweep only covers the line count observed when
// the sweep started (spec.md §4.6 describes the sweep order, not live
// re-sweeping on growth).
type LineSource interface {
	Lines() int
	Line(i int) ([]byte, bool)
}

// Kind selects the line-visitation order for a sweep.
type Kind int

const (
	// First sweeps 0, 1, 2, ...
	First Kind = iota
	// FirstAfter sweeps From, From+1, ..., wrapping back to 0..From.
	FirstAfter
	// FirstBefore sweeps From-1, From-2, ..., 0, then wraps from the end down to From.
	FirstBefore
)

// LineMatch records one matching line found during a sweep.
type LineMatch struct {
	LineIndex            int
	MatchCount           int
	CumulativeFirstMatch int // global match index of this line's first match
}

// Search holds the in-progress or completed state of one regex sweep.
type Search struct {
	re   *regexp.Regexp
	kind Kind
	from int

	mu            sync.RWMutex
	matches       []LineMatch
	searchedLines int
	finished      bool

	currentMatch atomic.Int64 // -1 means "no current match"
}

// New compiles pattern and prepares a sweep of kind starting at from
// (ignored for First).
func New(pattern string, kind Kind, from int) (*Search, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	s := &Search{re: re, kind: kind, from: from}
	s.currentMatch.Store(-1)
	return s, nil
}

// Run sweeps src's lines in the order kind/from determines, appending a
// LineMatch for each matching line, bumping SearchedLines, and emitting
// SearchFirstMatch the first time a match is found and SearchFinished
// at completion.
func (s *Search) Run(fileIndex int, src LineSource, bus *eventbus.EventBus) {
	cumulative := 0
	for _, i := range s.order(src.Lines()) {
		data, ok := src.Line(i)
		if ok {
			matches := line.FindMatches(data, s.re, cumulative)
			if len(matches) > 0 {
				s.mu.Lock()
				s.matches = append(s.matches, LineMatch{
					LineIndex:            i,
					MatchCount:           len(matches),
					CumulativeFirstMatch: cumulative,
				})
				s.mu.Unlock()
				cumulative += len(matches)
				if s.currentMatch.CompareAndSwap(-1, 0) {
					bus.Send(eventbus.SearchFirstMatch{FileIndex: fileIndex})
				}
			}
		}
		s.mu.Lock()
		s.searchedLines++
		s.mu.Unlock()
	}
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
	bus.Send(eventbus.SearchFinished{FileIndex: fileIndex})
}

// order computes the line-visitation sequence for n known lines.
func (s *Search) order(n int) []int {
	seq := make([]int, 0, n)
	switch s.kind {
	case First:
		for i := 0; i < n; i++ {
			seq = append(seq, i)
		}
	case FirstAfter:
		for i := s.from; i < n; i++ {
			seq = append(seq, i)
		}
		for i := 0; i < s.from && i < n; i++ {
			seq = append(seq, i)
		}
	case FirstBefore:
		for i := s.from - 1; i >= 0; i-- {
			seq = append(seq, i)
		}
		for i := n - 1; i >= s.from && i >= 0; i-- {
			seq = append(seq, i)
		}
	}
	return seq
}

// Matches returns a snapshot of the LineMatch records found so far.
func (s *Search) Matches() []LineMatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LineMatch, len(s.matches))
	copy(out, s.matches)
	return out
}

// SearchedLines returns the watermark of lines swept so far.
func (s *Search) SearchedLines() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchedLines
}

// Finished reports whether the sweep has completed.
func (s *Search) Finished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finished
}

// TotalMatches returns the total number of individual matches found
// across every matching line so far.
func (s *Search) TotalMatches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.matches) == 0 {
		return 0
	}
	last := s.matches[len(s.matches)-1]
	return last.CumulativeFirstMatch + last.MatchCount
}

// CurrentMatch returns the current match cursor's global index, or -1
// if no match is current.
func (s *Search) CurrentMatch() int {
	return int(s.currentMatch.Load())
}

// Regexp returns the compiled pattern, so a caller can re-derive match
// spans for a specific line via line.FindMatches.
func (s *Search) Regexp() *regexp.Regexp {
	return s.re
}

// MatchForLine returns the LineMatch record for lineIndex, if that line
// has been swept and matched so far.
func (s *Search) MatchForLine(lineIndex int) (LineMatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.matches {
		if m.LineIndex == lineIndex {
			return m, true
		}
	}
	return LineMatch{}, false
}

// Motion identifies a MatchMotion step.
type Motion int

const (
	Next Motion = iota
	Previous
	NextLine
	PreviousLine
	FirstMotion
	LastMotion
)

// MatchMotion advances the current match cursor by motion and returns
// its new global index, or -1 if there are no matches at all. Motion
// past the first or last match clamps rather than wrapping, per
// spec.md §4.6.
func (s *Search) MatchMotion(motion Motion) int {
	s.mu.RLock()
	matches := s.matches
	s.mu.RUnlock()

	total := 0
	if len(matches) > 0 {
		last := matches[len(matches)-1]
		total = last.CumulativeFirstMatch + last.MatchCount
	}
	if total == 0 {
		s.currentMatch.Store(-1)
		return -1
	}

	cur := int(s.currentMatch.Load())
	var next int
	switch motion {
	case Next:
		next = clamp(cur+1, 0, total-1)
	case Previous:
		next = clamp(cur-1, 0, total-1)
	case FirstMotion:
		next = 0
	case LastMotion:
		next = total - 1
	case NextLine:
		next = s.lineMotion(matches, cur, total, 1)
	case PreviousLine:
		next = s.lineMotion(matches, cur, total, -1)
	}
	s.currentMatch.Store(int64(next))
	return next
}

// lineMotion returns the global match index of the first match on the
// line before/after (dir -1/+1) the line containing global match cur.
func (s *Search) lineMotion(matches []LineMatch, cur, total, dir int) int {
	if cur < 0 {
		return 0
	}
	lineIdx := 0
	for i, m := range matches {
		if cur >= m.CumulativeFirstMatch && cur < m.CumulativeFirstMatch+m.MatchCount {
			lineIdx = i
			break
		}
	}
	target := lineIdx + dir
	if target < 0 {
		return 0
	}
	if target >= len(matches) {
		return total - 1
	}
	return matches[target].CumulativeFirstMatch
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
