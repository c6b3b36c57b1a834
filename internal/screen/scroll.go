// ABOUTME: Scroll-region planning: turns a small change in (topLine,
// ABOUTME: topPortion) between two frames into a ScrollRegionUp/Down
// ABOUTME: command plus a Dirty rotation, per spec.md §4.8 step 5.

package screen

import "github.com/colinmarc/sp/internal/refresh"

// ScrollPlan describes the scroll-region optimization, if any, that the
// most recent Render call found available. The zero value (Valid
// false) means the caller should redraw the full file view.
//
// Up reports a downward scroll (content moved up, new rows exposed at
// the bottom); the false case is an upward scroll (new rows exposed at
// the top), matching original_source/src/screen.rs's scroll_down
// (rotate_range_up, content moves toward row 0) and scroll_up
// (rotate_range_down) naming.
type ScrollPlan struct {
	Valid       bool
	Up          bool
	First, Size int
	Count       int
}

// planScroll compares the file-view anchor/height just established by
// applyScroll against the previous frame's, and — if the view is still
// showing the same region at the same height and moved by fewer rows
// than the region itself — rotates s.dirty by that many rows and
// records the resulting ScrollPlan. Anything else (a resize, a forced
// refresh.All, the first render, or a jump too large to be worth
// accelerating) leaves LastScroll invalid, so the caller falls back to
// a full redraw.
func (s *Screen) planScroll(dirtyWasAll, havePrev bool, prevLine, prevPortion, prevHeight, fileHeight int) {
	s.lastScroll = ScrollPlan{}
	if dirtyWasAll || !havePrev || fileHeight <= 0 || fileHeight != prevHeight {
		return
	}

	delta, ok := s.rowDelta(prevLine, prevPortion, fileHeight)
	if !ok || delta == 0 {
		return
	}

	region := refresh.Region{Start: 0, End: fileHeight}
	switch {
	case delta > 0 && delta < fileHeight:
		s.dirty = s.dirty.RotateUp(region, delta).AddRange(fileHeight-delta, fileHeight)
		s.lastScroll = ScrollPlan{Valid: true, Up: true, First: 0, Size: fileHeight, Count: delta}
	case delta < 0 && -delta < fileHeight:
		k := -delta
		s.dirty = s.dirty.RotateDown(region, k).AddRange(0, k)
		s.lastScroll = ScrollPlan{Valid: true, Up: false, First: 0, Size: fileHeight, Count: k}
	}
}

// rowDelta walks line heights between (prevLine, prevPortion) and the
// screen's current (topLine, topPortion), returning the number of file
// rows the view advanced (positive) or retreated (negative). It gives
// up (ok=false) once it has walked more than limit rows in either
// direction, since at that point a full redraw is no more expensive
// than the walk itself.
func (s *Screen) rowDelta(prevLine, prevPortion, limit int) (int, bool) {
	if prevLine == s.topLine && prevPortion == s.topPortion {
		return 0, true
	}

	forward := s.topLine > prevLine || (s.topLine == prevLine && s.topPortion > prevPortion)
	if forward {
		line, portion := prevLine, prevPortion
		for rows := 0; rows <= limit; rows++ {
			if line == s.topLine && portion == s.topPortion {
				return rows, true
			}
			h := s.lineHeight(line)
			if h <= 0 {
				h = 1
			}
			portion++
			if portion >= h {
				line++
				portion = 0
			}
		}
		return 0, false
	}

	line, portion := s.topLine, s.topPortion
	for rows := 0; rows <= limit; rows++ {
		if line == prevLine && portion == prevPortion {
			return -rows, true
		}
		if portion == 0 {
			line--
			if line < 0 {
				return 0, false
			}
			h := s.lineHeight(line)
			if h <= 0 {
				h = 1
			}
			portion = h - 1
		} else {
			portion--
		}
	}
	return 0, false
}
