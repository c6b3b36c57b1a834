// ABOUTME: Display owns the terminal, the EventBus receiver, and the ordered
// ABOUTME: Screens it multiplexes between in full-screen mode, per spec.md §4.10.

package display

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/file"
	"github.com/colinmarc/sp/internal/keymap"
	"github.com/colinmarc/sp/internal/linecache"
	"github.com/colinmarc/sp/internal/screen"
	"github.com/colinmarc/sp/internal/terminal"
)

// animatingPollTimeout is the poll deadline used while the active
// screen reports motion (loading, searching, following, error tail).
const animatingPollTimeout = 100 * time.Millisecond

// idlePollTimeout stands in for "no timeout" (spec.md §4.10 step 1):
// internal/eventbus.EventBus.Get always takes a bounded wait, so an
// idle display loop re-polls on a long interval instead of blocking
// forever; SIGWINCH and key input both wake it immediately regardless.
const idlePollTimeout = 24 * time.Hour

// helpFileIndex is the synthetic file index spec.md §4.10 assigns the
// generated help overlay screen; it never collides with a real file's
// index since those start at 0 and count up.
const helpFileIndex = -1

// PromptHandler interprets a completed prompt (go-to-line or search
// text) and returns the Action it produces — compiling a regex,
// parsing a line number, or reporting a parse error via screen.SetError
// are all the caller's concern, since only it knows how to fail. Called
// with the index of the screen the prompt belonged to.
type PromptHandler func(screenIndex int, res *screen.PromptResult) screen.Action

// Display multiplexes key/resize/file events across an ordered set of
// per-file Screens plus an optional help overlay, and drives the
// terminal writer.
type Display struct {
	term terminal.Terminal
	bus  *eventbus.EventBus

	screens    []*screen.Screen
	fileScreen map[int]int // file.File.Index() -> index into screens

	current int
	help    *screen.Screen
	keymap  *keymap.Keymap // used to render the help screen on demand
	overlay bool

	onPrompt PromptHandler

	renderFlag  atomic.Bool
	refreshFlag atomic.Bool
	resizeFlag  atomic.Bool
}

// New creates a Display over screens (one per file, in display order).
// km is the keymap shown by the generated help screen.
func New(term terminal.Terminal, bus *eventbus.EventBus, screens []*screen.Screen, km *keymap.Keymap) *Display {
	fileScreen := make(map[int]int, len(screens))
	for i, s := range screens {
		fileScreen[s.FileIndex()] = i
	}
	return &Display{
		term:       term,
		bus:        bus,
		screens:    screens,
		fileScreen: fileScreen,
		keymap:     km,
	}
}

// SetPromptHandler installs the callback used to interpret a completed
// prompt. Without one, PromptResults are silently ignored.
func (d *Display) SetPromptHandler(h PromptHandler) { d.onPrompt = h }

// activeScreen returns the help overlay if shown, else the current file's Screen.
func (d *Display) activeScreen() *screen.Screen {
	if d.overlay && d.help != nil {
		return d.help
	}
	return d.screens[d.current]
}

// Run enters full-screen and loops until Quit or a fatal terminal
// error, restoring the terminal before returning either way.
func (d *Display) Run() error {
	defer d.teardown()

	w, h, err := d.term.Size()
	if err != nil {
		return fmt.Errorf("display: reading terminal size: %w", err)
	}
	for _, s := range d.screens {
		s.SetSize(w, h)
	}
	d.term.OnResize(func(w, h int) { d.bus.SendUnique(eventbus.Resize{}, &d.resizeFlag) })

	d.draw()
	for {
		timeout := idlePollTimeout
		if d.activeScreen().Animating() {
			timeout = animatingPollTimeout
		}

		ev, ok := d.bus.Get(timeout)
		if !ok {
			d.draw()
			continue
		}

		action := d.handle(ev)
		if quit, err := d.apply(action); quit {
			return err
		}
		d.draw()
	}
}

// handle maps one bus event to an Action, routing file-indexed events
// to the Screen that owns that file rather than always the active one;
// a background screen still updates its internal dirty state even when
// it isn't currently displayed, so switching to it later shows a
// current frame without a wasted redraw now.
func (d *Display) handle(ev eventbus.Event) screen.Action {
	switch e := ev.(type) {
	case eventbus.KeyInput:
		action, res := d.activeScreen().Dispatch(e.Key)
		if res != nil && d.onPrompt != nil {
			return d.onPrompt(d.promptScreenIndex(), res)
		}
		return action
	case eventbus.Resize:
		if w, h, err := d.term.Size(); err == nil {
			for _, s := range d.screens {
				s.SetSize(w, h)
			}
			if d.help != nil {
				d.help.SetSize(w, h)
			}
		}
		return d.activeScreen().HandleEvent(e)
	case eventbus.Loaded, eventbus.Appending, eventbus.Reloading,
		eventbus.SearchFirstMatch, eventbus.SearchFinished, eventbus.RefreshOverlay:
		return d.routeFileEvent(e)
	default:
		return d.activeScreen().HandleEvent(ev)
	}
}

// fileIndexOf extracts the FileIndex field carried by the file-indexed
// event kinds handle dispatches through routeFileEvent.
func fileIndexOf(ev eventbus.Event) (int, bool) {
	switch e := ev.(type) {
	case eventbus.Loaded:
		return e.FileIndex, true
	case eventbus.Appending:
		return e.FileIndex, true
	case eventbus.Reloading:
		return e.FileIndex, true
	case eventbus.SearchFirstMatch:
		return e.FileIndex, true
	case eventbus.SearchFinished:
		return e.FileIndex, true
	case eventbus.RefreshOverlay:
		return e.FileIndex, true
	default:
		return 0, false
	}
}

func (d *Display) routeFileEvent(ev eventbus.Event) screen.Action {
	idx, ok := fileIndexOf(ev)
	if !ok {
		return screen.Action{}
	}
	si, ok := d.fileScreen[idx]
	if !ok {
		return screen.Action{}
	}
	action := d.screens[si].HandleEvent(ev)
	if d.overlay || si != d.current {
		// The screen updated its own dirty/animation state; there is
		// nothing on screen to redraw for it right now.
		return screen.Action{}
	}
	return action
}

// promptScreenIndex returns the screen index a just-completed prompt
// belongs to (the help overlay has no prompts of its own).
func (d *Display) promptScreenIndex() int { return d.current }

// apply processes one Action, returning (true, err) if the display
// loop should exit.
func (d *Display) apply(action screen.Action) (bool, error) {
	switch action.Kind {
	case screen.None:
		return false, nil
	case screen.Quit:
		return true, nil
	case screen.Render:
		d.bus.SendUnique(eventbus.Render{}, &d.renderFlag)
		return false, nil
	case screen.Refresh:
		d.bus.SendUnique(eventbus.Refresh{}, &d.refreshFlag)
		return false, nil
	case screen.NextFile:
		d.overlay = false
		d.current = (d.current + 1) % len(d.screens)
		return false, nil
	case screen.PreviousFile:
		d.overlay = false
		d.current = (d.current - 1 + len(d.screens)) % len(d.screens)
		return false, nil
	case screen.ShowHelp:
		d.showHelp()
		return false, nil
	case screen.ClearOverlay:
		d.overlay = false
		return false, nil
	case screen.RefreshPrompt:
		return false, nil
	case screen.Run:
		if action.Run != nil {
			action.Run()
		}
		return false, nil
	case screen.Change:
		_, err := d.term.Write([]byte(action.Change))
		return false, err
	default:
		return false, nil
	}
}

// showHelp lazily builds a static help screen listing every non-hidden
// binding in the keymap, with the synthetic file index helpFileIndex,
// and pushes it as the overlay.
func (d *Display) showHelp() {
	if d.help == nil {
		d.help = newHelpScreen(d.keymap)
		if w, h, err := d.term.Size(); err == nil {
			d.help.SetSize(w, h)
		}
	}
	d.overlay = true
}

// newHelpScreen renders km's non-hidden bindings into a static text
// file and wraps it in a Screen like any other, so the overlay gets
// scrolling/search/line-numbers for free.
func newHelpScreen(km *keymap.Keymap) *screen.Screen {
	text := strings.Join(bindingHelpLines(km), "\n") + "\n"
	f := file.NewStatic(helpFileIndex, "Help", []byte(text))
	return screen.New(f, keymap.DefaultKeymap(), linecache.New(0), false, 0)
}

func (d *Display) draw() {
	s := d.activeScreen()
	rows := s.Render()

	plan := s.LastScroll()
	if plan.Valid {
		d.drawScrolled(rows, s.FileViewHeight(), plan)
		return
	}

	for i, row := range rows {
		if _, err := fmt.Fprintf(d.term, "\x1b[%d;1H\x1b[2K%s", i+1, row); err != nil {
			return
		}
	}
}

// drawScrolled emits the accelerated path for a ScrollPlan: set a
// scroll region over the file-view rows, scroll it by plan.Count with
// a single SU/SD command, reset the region, then draw only the rows
// the scroll actually exposed. The overlay rows (ruler, prompt, search
// status, error tail — everything Render appended after fileHeight
// rows) still redraw every frame the ordinary way, since they report
// line/progress numbers that change on every scroll regardless.
func (d *Display) drawScrolled(rows []string, fileHeight int, plan screen.ScrollPlan) {
	top, bottom := plan.First+1, plan.First+plan.Size
	write := func(s string) bool {
		_, err := d.term.Write([]byte(s))
		return err == nil
	}
	if !write(fmt.Sprintf("\x1b[%d;%dr", top, bottom)) {
		return
	}
	if plan.Up {
		write(fmt.Sprintf("\x1b[%dS", plan.Count))
	} else {
		write(fmt.Sprintf("\x1b[%dT", plan.Count))
	}
	if !write("\x1b[r") {
		return
	}

	var exposed []string
	var startRow int
	if plan.Up {
		exposed = rows[fileHeight-plan.Count : fileHeight]
		startRow = plan.First + plan.Size - plan.Count
	} else {
		exposed = rows[:plan.Count]
		startRow = plan.First
	}
	for i, row := range exposed {
		if _, err := fmt.Fprintf(d.term, "\x1b[%d;1H\x1b[2K%s", startRow+i+1, row); err != nil {
			return
		}
	}

	for i := fileHeight; i < len(rows); i++ {
		if _, err := fmt.Fprintf(d.term, "\x1b[%d;1H\x1b[2K%s", i+1, rows[i]); err != nil {
			return
		}
	}
}

// teardown restores the terminal to a plain state regardless of how
// Run exited (spec.md §4.10: default cursor shape, default attributes,
// a full-height scroll region, cursor on the final row).
func (d *Display) teardown() {
	h := 1
	if _, th, err := d.term.Size(); err == nil {
		h = th
	}
	d.term.Write([]byte("\x1b[0 q")) // default cursor shape
	d.term.Write([]byte("\x1b[0m"))  // default attributes
	d.term.Write([]byte("\x1b[r"))   // full-height scroll region
	d.term.Write([]byte(fmt.Sprintf("\x1b[%d;1H", h)))
}

// bindingHelpLines formats one "KEY => Binding" line per non-hidden
// binding in km, sorted for a stable, diffable help screen.
func bindingHelpLines(km *keymap.Keymap) []string {
	if km == nil {
		return nil
	}
	type entry struct {
		key string
		b   keymap.Binding
	}
	var entries []entry
	for _, k := range km.Keys() {
		b, ok := km.Lookup(k)
		if !ok || b.Hidden {
			continue
		}
		entries = append(entries, entry{key: k.String(), b: b})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "Key bindings (Escape to close):")
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("  %-12s %s", e.key, e.b.String()))
	}
	return lines
}
