// ABOUTME: Screen owns one file's view position, overlay stack, key
// ABOUTME: dispatch, and render pipeline, per spec.md §4.8.

package screen

import (
	"strconv"
	"strings"

	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/file"
	"github.com/colinmarc/sp/internal/history"
	"github.com/colinmarc/sp/internal/keymap"
	"github.com/colinmarc/sp/internal/line"
	"github.com/colinmarc/sp/internal/linecache"
	"github.com/colinmarc/sp/internal/refresh"
	"github.com/colinmarc/sp/internal/search"
)

// maxErrorTailLines bounds how many wrapped lines of a paired error
// file are shown in the overlay stack.
const maxErrorTailLines = 8

// PromptResult is returned by Dispatch when Enter completes a prompt;
// the caller (internal/display or pkg/pager) interprets Mode/Text
// (compiling a regex, parsing a line number) since that can fail in
// ways only the caller can report back as an error banner.
type PromptResult struct {
	Mode PromptMode
	Text string
}

// Screen is the render/input state for one displayed file.
type Screen struct {
	f     file.File
	errF  file.File // optional paired stderr/error file; may be nil
	cache *linecache.Cache
	km    *keymap.Keymap

	scrollPastEOF  bool
	readAheadLines int

	wrapMode    line.WrapMode
	lineNumbers bool

	topLine    int
	topPortion int
	leftColumn int
	following  bool

	pendingAbsolute *int
	pendingRelative int

	width, height     int
	currentFileHeight int

	dirty     refresh.Dirty
	lastRows  []string
	ruler     Ruler

	// prevTopLine/prevTopPortion/prevFileHeight record the file-view
	// anchor and height from the last successful Render, so the next
	// Render can tell whether the view moved by a small step (eligible
	// for a scroll-region command) or needs a full redraw. havePrev is
	// false until the first Render completes.
	prevTopLine    int
	prevTopPortion int
	prevFileHeight int
	havePrev       bool
	lastScroll     ScrollPlan

	search *search.Search

	prompt        *Prompt
	goToHistory   *history.History
	searchHistory *history.History
	errorMessage  string

	progress []string
}

// New creates a Screen for f. km is consulted for every key dispatch;
// cache amortizes re-parsing a line's Spans across renders.
func New(f file.File, km *keymap.Keymap, cache *linecache.Cache, scrollPastEOF bool, readAheadLines int) *Screen {
	return &Screen{
		f:              f,
		cache:          cache,
		km:             km,
		scrollPastEOF:  scrollPastEOF,
		readAheadLines: readAheadLines,
		wrapMode:       line.GraphemeBoundary,
		dirty:          refresh.All(),
	}
}

// FileIndex returns the index of the file this screen displays, used by
// internal/display to route file-indexed bus events to the right Screen.
func (s *Screen) FileIndex() int { return s.f.Index() }

// CurrentLine returns the line index currently at the top of the
// viewport, used by pkg/pager as the "from" position for a forwards or
// backwards search started at the user's current position.
func (s *Screen) CurrentLine() int { return s.topLine }

// SetErrorFile attaches a paired error-output file (per spec.md §6's
// --error-fd pairing) whose tail is shown in the overlay stack.
func (s *Screen) SetErrorFile(ef file.File) { s.errF = ef }

// SetHistories attaches the persisted go-to-line and search histories
// (per spec.md §6); either may be nil, in which case the corresponding
// prompt opens with no history to browse and nothing is recorded on
// Enter. pkg/pager owns loading these at startup and saving them at exit.
func (s *Screen) SetHistories(goTo, srch *history.History) {
	s.goToHistory = goTo
	s.searchHistory = srch
}

// historyFor returns the history ring a given prompt mode reads from and
// appends to, or nil if none was attached.
func (s *Screen) historyFor(mode PromptMode) *history.History {
	if mode == PromptGoToLine {
		return s.goToHistory
	}
	return s.searchHistory
}

// historyEntries returns the entries a newly opened prompt of mode
// should seed HistoryPrev/HistoryNext with, or nil if no history was
// attached for that mode.
func (s *Screen) historyEntries(mode PromptMode) []string {
	h := s.historyFor(mode)
	if h == nil {
		return nil
	}
	return h.Entries()
}

// SetSize updates the viewport dimensions, marking everything dirty. A
// resize to identical dimensions is a no-op per spec.md §8's round-trip
// property.
func (s *Screen) SetSize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.dirty = refresh.All()
}

// SetSearch installs a new active search, clearing any previous one and
// invalidating cached lines so future renders re-derive match spans.
func (s *Screen) SetSearch(sr *search.Search) {
	s.search = sr
	s.cache.Clear()
	s.dirty = refresh.All()
}

// ClearSearch removes the active search.
func (s *Screen) ClearSearch() {
	if s.search == nil {
		return
	}
	s.search = nil
	s.cache.Clear()
	s.dirty = refresh.All()
}

// SetError installs a one-line error-banner message.
func (s *Screen) SetError(msg string) {
	s.errorMessage = msg
	s.dirty = refresh.All()
}

// ClearError removes the error banner.
func (s *Screen) ClearError() {
	if s.errorMessage == "" {
		return
	}
	s.errorMessage = ""
	s.dirty = refresh.All()
}

// SetProgress installs the current progress-stream frame, already split
// into display lines by internal/progress.
func (s *Screen) SetProgress(lines []string) {
	s.progress = lines
	s.dirty = refresh.All()
}

// ScrollToLine jumps the view to show lineIndex at the top. Reports
// false if the file has no such line, leaving the view unchanged; the
// caller is expected to surface that as a user-visible command error
// via SetError (spec.md §7's "bad go-to-line value" error kind).
func (s *Screen) ScrollToLine(lineIndex int) bool {
	total := s.f.Lines()
	if lineIndex < 0 || (total > 0 && lineIndex >= total) {
		return false
	}
	s.following = false
	v := lineIndex
	s.pendingAbsolute = &v
	s.dirty = refresh.All()
	return true
}

// Animating reports whether this screen needs repeated polling to show
// motion: loading, an in-progress search, following the stream end, or
// a changing error tail, per spec.md §4.10.
func (s *Screen) Animating() bool {
	if !s.f.Loaded() {
		return true
	}
	if s.search != nil && !s.search.Finished() {
		return true
	}
	if s.following {
		return true
	}
	if s.errF != nil && !s.errF.Loaded() {
		return true
	}
	return false
}

// NeededLines computes and applies the backpressure hint per spec.md
// §5: "needed_lines every render to max(current, bottom_line + height +
// read_ahead)".
func (s *Screen) NeededLines() int {
	h := s.fileViewHeight()
	bottom := s.topLine + h - 1
	needed := bottom + h + s.readAheadLines
	s.f.SetNeededLines(needed)
	return needed
}

// fileViewHeight returns the file view's row count as of the most
// recently computed overlay (set at the start of Render); callers
// outside a Render pass (e.g. ScrollToLine) see the prior frame's
// height, which is the best available estimate.
func (s *Screen) fileViewHeight() int {
	return s.currentFileHeight
}

// FileViewHeight exposes fileViewHeight to internal/display, which
// needs it to split Render's returned rows into the file-view prefix a
// ScrollPlan applies to and the overlay suffix that always redraws in
// full.
func (s *Screen) FileViewHeight() int { return s.fileViewHeight() }

func (s *Screen) errorTailLineCount() int {
	if s.errF == nil {
		return 0
	}
	n := s.errF.Lines()
	if n == 0 {
		return 0
	}
	tail := maxErrorTailLines
	if n < tail {
		tail = n
	}
	return tail
}

// Dispatch maps a key press to an Action, routing through the active
// prompt's line editor when one is open.
func (s *Screen) Dispatch(k keymap.Key) (Action, *PromptResult) {
	if s.prompt != nil {
		return s.dispatchPrompt(k)
	}

	b, ok := s.km.Lookup(k)
	if !ok {
		return doNone(), nil
	}
	return s.applyBinding(b), nil
}

func (s *Screen) dispatchPrompt(k keymap.Key) (Action, *PromptResult) {
	switch k.Type {
	case keymap.KeyEscape, keymap.KeyCtrlC:
		s.prompt = nil
		s.dirty = refresh.All()
		return doClearOverlay(), nil
	case keymap.KeyEnter:
		res := &PromptResult{Mode: s.prompt.Mode, Text: s.prompt.Text()}
		if h := s.historyFor(s.prompt.Mode); h != nil && res.Text != "" {
			h.Add(res.Text)
		}
		s.prompt = nil
		s.dirty = refresh.All()
		return doRefresh(), res
	case keymap.KeyBackspace:
		s.prompt.Backspace()
	case keymap.KeyDelete:
		s.prompt.Delete()
	case keymap.KeyLeft:
		s.prompt.MoveLeft()
	case keymap.KeyRight:
		s.prompt.MoveRight()
	case keymap.KeyHome:
		s.prompt.Home()
	case keymap.KeyEnd:
		s.prompt.End()
	case keymap.KeyUp:
		s.prompt.HistoryPrev()
	case keymap.KeyDown:
		s.prompt.HistoryNext()
	case keymap.KeyRune:
		s.prompt.Insert(k.Rune)
	default:
		return doNone(), nil
	}
	return doRefreshPrompt(), nil
}

func (s *Screen) applyBinding(b keymap.Binding) Action {
	switch b.Kind {
	case keymap.BindingQuit:
		return doQuit()
	case keymap.BindingRefresh:
		return doRefresh()
	case keymap.BindingHelp:
		return doShowHelp()
	case keymap.BindingCancel:
		s.ClearError()
		s.ClearSearch()
		return doClearOverlay()
	case keymap.BindingPreviousFile:
		return doPreviousFile()
	case keymap.BindingNextFile:
		return doNextFile()
	case keymap.BindingScrollUpLines:
		s.scrollRelative(-b.Count)
		return doRender()
	case keymap.BindingScrollDownLines:
		s.scrollRelative(b.Count)
		return doRender()
	case keymap.BindingScrollUpScreenFraction:
		s.scrollRelative(-fracRows(s.fileViewHeight(), b.Frac))
		return doRender()
	case keymap.BindingScrollDownScreenFraction:
		s.scrollRelative(fracRows(s.fileViewHeight(), b.Frac))
		return doRender()
	case keymap.BindingScrollToTop:
		s.following = false
		zero := 0
		s.pendingAbsolute = &zero
		return doRender()
	case keymap.BindingScrollToBottom:
		s.following = true
		return doRender()
	case keymap.BindingScrollLeftColumns:
		s.scrollColumns(-b.Count)
		return doRender()
	case keymap.BindingScrollRightColumns:
		s.scrollColumns(b.Count)
		return doRender()
	case keymap.BindingScrollLeftScreenFraction:
		s.scrollColumns(-fracRows(s.width, b.Frac))
		return doRender()
	case keymap.BindingScrollRightScreenFraction:
		s.scrollColumns(fracRows(s.width, b.Frac))
		return doRender()
	case keymap.BindingToggleLineNumbers:
		s.lineNumbers = !s.lineNumbers
		s.dirty = refresh.All()
		return doRefresh()
	case keymap.BindingToggleLineWrapping:
		if s.wrapMode == line.Unwrapped {
			s.wrapMode = line.GraphemeBoundary
		} else {
			s.wrapMode = line.Unwrapped
		}
		s.cache.Clear()
		s.dirty = refresh.All()
		return doRefresh()
	case keymap.BindingPromptGoToLine:
		s.prompt = NewPrompt(PromptGoToLine, s.historyEntries(PromptGoToLine))
		return doRefreshPrompt()
	case keymap.BindingPromptSearchFromStart:
		s.prompt = NewPrompt(PromptSearchFromStart, s.historyEntries(PromptSearchFromStart))
		return doRefreshPrompt()
	case keymap.BindingPromptSearchForwards:
		s.prompt = NewPrompt(PromptSearchForwards, s.historyEntries(PromptSearchForwards))
		return doRefreshPrompt()
	case keymap.BindingPromptSearchBackwards:
		s.prompt = NewPrompt(PromptSearchBackwards, s.historyEntries(PromptSearchBackwards))
		return doRefreshPrompt()
	case keymap.BindingPreviousMatch:
		s.moveToMatch(search.Previous)
		return doRender()
	case keymap.BindingNextMatch:
		s.moveToMatch(search.Next)
		return doRender()
	case keymap.BindingPreviousMatchLine:
		s.moveToMatch(search.PreviousLine)
		return doRender()
	case keymap.BindingNextMatchLine:
		s.moveToMatch(search.NextLine)
		return doRender()
	case keymap.BindingFirstMatch:
		s.moveToMatch(search.FirstMotion)
		return doRender()
	case keymap.BindingLastMatch:
		s.moveToMatch(search.LastMotion)
		return doRender()
	default:
		return doNone()
	}
}

func fracRows(total int, frac float64) int {
	n := int(float64(total) * frac)
	if n < 1 {
		n = 1
	}
	return n
}

func (s *Screen) scrollRelative(delta int) {
	s.following = false
	s.pendingRelative += delta
}

// scrollColumns shifts the horizontal offset. Unlike a vertical scroll,
// this changes every visible row's content (each row's slice window
// moves), so there is no scroll-region shortcut here, mirroring
// original_source/src/screen.rs's scroll_left/scroll_right, which
// always calls the full refresh() rather than a rotate_range_*.
func (s *Screen) scrollColumns(delta int) {
	before := s.leftColumn
	s.leftColumn += delta
	if s.leftColumn < 0 {
		s.leftColumn = 0
	}
	if s.leftColumn != before {
		s.dirty = refresh.All()
	}
}

func (s *Screen) moveToMatch(m search.Motion) {
	if s.search == nil {
		return
	}
	global := s.search.MatchMotion(m)
	if global < 0 {
		return
	}
	for _, lm := range s.search.Matches() {
		if global >= lm.CumulativeFirstMatch && global < lm.CumulativeFirstMatch+lm.MatchCount {
			s.ScrollToLine(lm.LineIndex)
			return
		}
	}
}

// HandleEvent maps a bus event addressed to this screen's file (or its
// error file, or an active search) to an Action. Events for a different
// file index are the caller's concern to filter before calling this.
func (s *Screen) HandleEvent(ev eventbus.Event) Action {
	switch ev.(type) {
	case eventbus.Loaded, eventbus.Appending, eventbus.RefreshOverlay:
		s.dirty = refresh.All()
		return doRender()
	case eventbus.Reloading:
		s.cache.Clear()
		s.dirty = refresh.All()
		return doRender()
	case eventbus.SearchFirstMatch:
		if s.search != nil {
			s.moveToMatch(search.FirstMotion)
		}
		return doRender()
	case eventbus.SearchFinished:
		return doRender()
	case eventbus.Resize:
		return doRefresh()
	case eventbus.Render:
		return doRender()
	case eventbus.Refresh:
		s.dirty = refresh.All()
		return doRender()
	default:
		return doNone()
	}
}

// buildLine parses line i, applying the active search's match spans if
// any, through the linecache so repeated renders of an unchanged view
// don't re-parse.
func (s *Screen) buildLine(i int) *line.Line {
	return s.cache.Get(i, func() *line.Line {
		var data []byte
		s.f.WithLine(i, func(p []byte) { data = append([]byte(nil), p...) })
		var matches []line.MatchRange
		if s.search != nil {
			if lm, ok := s.search.MatchForLine(i); ok {
				matches = line.FindMatches(data, s.search.Regexp(), lm.CumulativeFirstMatch)
			}
		}
		return line.New(data, matches)
	})
}

// lineHeight returns the screen-row count line i occupies at the current
// width/wrap mode.
func (s *Screen) lineHeight(i int) int {
	return s.buildLine(i).Height(s.width, s.wrapMode)
}

// endAnchor returns the maximum (topLine, topPortion) that still fills
// the file view with content ending exactly at the last line, per
// spec.md §4.8 step 3.
func (s *Screen) endAnchor() (int, int) {
	total := s.f.Lines()
	if total == 0 {
		return 0, 0
	}
	remaining := s.fileViewHeight()
	idx := total - 1
	portion := 0
	for remaining > 0 && idx >= 0 {
		h := s.lineHeight(idx)
		if h <= 0 {
			h = 1
		}
		if h <= remaining {
			remaining -= h
			if remaining == 0 {
				return idx, 0
			}
			idx--
			continue
		}
		portion = h - remaining
		remaining = 0
	}
	if idx < 0 {
		return 0, 0
	}
	return idx, portion
}

// applyScroll resolves pending absolute/relative scroll requests and
// the following-end behavior into a concrete (topLine, topPortion),
// clamping against scroll_past_eof, per spec.md §4.8 steps 3-4.
func (s *Screen) applyScroll() {
	endLine, endPortion := s.endAnchor()

	if s.following {
		s.topLine, s.topPortion = endLine, endPortion
		s.pendingAbsolute = nil
		s.pendingRelative = 0
		return
	}

	if s.pendingAbsolute != nil {
		s.topLine, s.topPortion = *s.pendingAbsolute, 0
		s.pendingAbsolute = nil
	}

	if s.pendingRelative != 0 {
		s.topLine = s.scrollLinesBy(s.topLine, s.pendingRelative)
		s.topPortion = 0
		s.pendingRelative = 0
	}

	if s.topLine < 0 {
		s.topLine, s.topPortion = 0, 0
	}
	if !s.scrollPastEOF && s.pastEndAnchor(endLine, endPortion) {
		s.topLine, s.topPortion = endLine, endPortion
	}
}

func (s *Screen) pastEndAnchor(endLine, endPortion int) bool {
	if s.topLine > endLine {
		return true
	}
	return s.topLine == endLine && s.topPortion > endPortion
}

func (s *Screen) scrollLinesBy(from, delta int) int {
	total := s.f.Lines()
	n := from + delta
	if n < 0 {
		n = 0
	}
	if total > 0 && n >= total {
		n = total - 1
	}
	return n
}

// Render runs the full pipeline described in spec.md §4.8 and returns
// the rows to draw, topmost first. It still always hands back the full
// content of every row — internal/display's existing row-by-row writer
// and every test against Render rely on that — but it also records a
// ScrollPlan (retrieved via LastScroll) describing whether this frame
// is a small, in-region scroll of the previous one, so the caller can
// choose to emit a terminal scroll-region command plus only the newly
// exposed rows instead of rewriting the whole file view (step 5,
// spec.md §8 testable property 5).
func (s *Screen) Render() []string {
	overlay := s.buildOverlay()
	if len(overlay) > s.height {
		overlay = s.collapseOverlay()
	}
	fileHeight := s.height - len(overlay)
	if fileHeight < 0 {
		fileHeight = 0
	}
	s.currentFileHeight = fileHeight

	s.NeededLines()
	if s.dirty.Kind() == refresh.KindNone && !s.Animating() && s.lastRows != nil &&
		s.pendingAbsolute == nil && s.pendingRelative == 0 {
		return s.lastRows
	}

	dirtyWasAll := s.dirty.Kind() == refresh.KindAll
	prevLine, prevPortion, prevHeight, havePrev := s.prevTopLine, s.prevTopPortion, s.prevFileHeight, s.havePrev

	s.applyScroll()
	s.planScroll(dirtyWasAll, havePrev, prevLine, prevPortion, prevHeight, fileHeight)

	rows := make([]string, 0, s.height)
	rows = append(rows, s.renderFileView(fileHeight)...)
	rows = append(rows, overlay...)

	s.prevTopLine, s.prevTopPortion, s.prevFileHeight, s.havePrev = s.topLine, s.topPortion, fileHeight, true
	s.dirty = refresh.None()
	s.lastRows = rows
	return rows
}

// LastScroll returns the ScrollPlan computed by the most recent Render
// call.
func (s *Screen) LastScroll() ScrollPlan { return s.lastScroll }

// renderFileView builds the fileHeight rows above the overlay. When the
// most recent planScroll call produced a valid ScrollPlan, s.dirty holds
// only the row ranges that actually need fresh content — the rest of the
// previous frame's rows merely moved (the scroll-region command already
// told the terminal to shift them), so this reuses s.lastRows at the
// shifted index for any row s.dirty.Contains reports clean, skipping its
// line.Render call. This mirrors original_source/src/screen.rs's render,
// which only calls render_line for indices its pending_refresh match
// yields and otherwise leaves a row's prior terminal content untouched.
func (s *Screen) renderFileView(height int) []string {
	plan := s.lastScroll
	var prevRows []string
	var delta int
	reusable := plan.Valid && s.lastRows != nil && len(s.lastRows) >= height
	if reusable {
		prevRows = s.lastRows[:height]
		if plan.Up {
			delta = plan.Count
		} else {
			delta = -plan.Count
		}
	}

	rows := make([]string, 0, height)
	total := s.f.Lines()
	lineIdx, portion := s.topLine, s.topPortion
	for len(rows) < height {
		if total == 0 || lineIdx >= total {
			rows = append(rows, "~")
			continue
		}
		l := s.buildLine(lineIdx)
		h := l.Height(s.width, s.wrapMode)
		if h <= 0 {
			h = 1
		}
		for portion < h && len(rows) < height {
			row := len(rows)
			if reusable && !s.dirty.Contains(row) {
				if src := row + delta; src >= 0 && src < len(prevRows) {
					rows = append(rows, prevRows[src])
					portion++
					continue
				}
			}

			lnNum := -1
			if s.lineNumbers {
				lnNum = lineIdx + 1
			}
			rows = append(rows, l.Render(line.RenderOptions{
				Width:        s.width,
				StartCol:     s.leftColumn,
				EndCol:       s.leftColumn + s.width,
				Mode:         s.wrapMode,
				Portion:      portion,
				CurrentMatch: s.currentMatchIndex(),
				LineNumber:   lnNum,
			}))
			portion++
		}
		lineIdx++
		portion = 0
	}
	return rows
}

func (s *Screen) currentMatchIndex() int {
	if s.search == nil {
		return -1
	}
	return s.search.CurrentMatch()
}

// buildOverlay assembles the overlay stack bottom-up: progress, error
// tail, ruler, search status, prompt, error message (spec.md §4.8 step 2).
func (s *Screen) buildOverlay() []string {
	var rows []string
	rows = append(rows, s.progress...)
	rows = append(rows, s.errorTailRows()...)
	rows = append(rows, s.rulerRow())
	if s.search != nil {
		rows = append(rows, s.searchStatusRow())
	}
	if s.prompt != nil {
		rows = append(rows, s.promptRow())
	}
	if s.errorMessage != "" {
		rows = append(rows, line.TruncateToWidth(s.errorMessage, s.width))
	}
	return rows
}

// collapseOverlay implements step 2's "leave the rest hidden" fallback
// for a viewport too small for the full overlay stack: only the prompt
// row survives, since it is the row the user is actively typing into.
// With no prompt open, the ruler alone is shown as a minimal status
// line (spec.md §9's Open Questions do not cover this sub-case; this is
// the chosen resolution, recorded in DESIGN.md).
func (s *Screen) collapseOverlay() []string {
	if s.prompt != nil {
		return []string{s.promptRow()}
	}
	return []string{s.rulerRow()}
}

func (s *Screen) rulerRow() string {
	total := s.f.Lines()
	bottom := s.topLine + s.fileViewHeight() - 1
	if bottom >= total {
		bottom = total - 1
	}
	return s.ruler.Build(s.f.Title(), s.f.Info(), s.f.Loaded(), s.f.Paused(), s.following, s.topLine, bottom, total, s.width)
}

func (s *Screen) searchStatusRow() string {
	var b strings.Builder
	b.WriteString("matches: ")
	b.WriteString(strconv.Itoa(s.search.TotalMatches()))
	if !s.search.Finished() {
		b.WriteString(" (searching…)")
	}
	return line.TruncateToWidth(b.String(), s.width)
}

func (s *Screen) promptRow() string {
	return line.TruncateToWidth(s.prompt.Mode.Label()+s.prompt.Text(), s.width)
}

func (s *Screen) errorTailRows() []string {
	n := s.errorTailLineCount()
	if n == 0 {
		return nil
	}
	total := s.errF.Lines()
	var rows []string
	for i := total - n; i < total; i++ {
		var data []byte
		s.errF.WithLine(i, func(p []byte) { data = append([]byte(nil), p...) })
		l := line.New(data, nil)
		rows = append(rows, l.Render(line.RenderOptions{Width: s.width, Mode: line.Unwrapped, CurrentMatch: -1, LineNumber: -1}))
	}
	return rows
}
