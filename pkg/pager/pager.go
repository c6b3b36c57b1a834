// ABOUTME: Pager is the embeddable programmatic API (New/AddFile/Run),
// ABOUTME: mirroring original_source/src/lib.rs's builder-style Pager.

package pager

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/colinmarc/sp/internal/config"
	"github.com/colinmarc/sp/internal/direct"
	"github.com/colinmarc/sp/internal/display"
	"github.com/colinmarc/sp/internal/eventbus"
	"github.com/colinmarc/sp/internal/file"
	"github.com/colinmarc/sp/internal/history"
	"github.com/colinmarc/sp/internal/keymap"
	"github.com/colinmarc/sp/internal/linecache"
	"github.com/colinmarc/sp/internal/logx"
	"github.com/colinmarc/sp/internal/progress"
	"github.com/colinmarc/sp/internal/screen"
	"github.com/colinmarc/sp/internal/search"
	"github.com/colinmarc/sp/internal/terminal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// maxConcurrentLoads bounds how many RandomFile/Mapped initial loads run
// at once. Each one reads a whole file (or mmaps and walks it) from
// disk; an embedder calling AddFile/AddMappedFile in a loop for dozens
// of files would otherwise start that many full-file reads
// simultaneously and contend on the same disk for no benefit.
const maxConcurrentLoads = 4

// Pager accumulates files and settings, then runs the direct-mode and
// full-screen display loops over them, per spec.md §2's architecture.
// Build one with New or NewWithTerminal, add sources with the Add*
// methods, then call Run.
type Pager struct {
	term terminal.Terminal
	bus  *eventbus.EventBus

	cfg        config.Config
	km         *keymap.Keymap
	keymapName string
	noAlt      bool

	files      []file.File
	errorOf    map[int]file.File // output file index -> paired error file
	lastOutput int               // index of the most recently added output file; -1 if none

	prog *progress.Progress

	stdinCancel context.CancelFunc
	loadSem     *semaphore.Weighted
}

// New builds a Pager using the real terminal on os.Stdin/os.Stdout,
// reading streampager.toml and SP_* environment overrides for its
// initial configuration. Fatal setup errors (spec.md §7 kind 1) are
// returned rather than panicking.
func New() (*Pager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("pager: loading config: %w", err)
	}

	term := terminal.NewProcessTerminal()
	if err := term.EnterRawMode(); err != nil {
		return nil, fmt.Errorf("pager: entering raw mode: %w", err)
	}

	p := newPager(term, cfg)

	bus := p.bus
	ctx, cancel := context.WithCancel(context.Background())
	p.stdinCancel = cancel
	stdin := eventbus.NewStdinBuffer(os.Stdin, bus.DispatchKey)
	go stdin.Start(ctx)

	return p, nil
}

// NewWithTerminal builds a Pager over an already-constructed Terminal
// (typically terminal.NewVirtualTerminal in tests, or an embedder's
// own implementation), without touching real stdio. The caller is
// responsible for feeding it eventbus.KeyInput events through the
// ActionSender-equivalent exposed by Bus.
func NewWithTerminal(term terminal.Terminal) *Pager {
	return newPager(term, config.Default())
}

func newPager(term terminal.Terminal, cfg config.Config) *Pager {
	return &Pager{
		term:       term,
		bus:        eventbus.New(),
		cfg:        cfg,
		errorOf:    make(map[int]file.File),
		lastOutput: -1,
		loadSem:    semaphore.NewWeighted(maxConcurrentLoads),
	}
}

// runLoad acquires a load slot before running load, blocking if
// maxConcurrentLoads initial loads are already in flight, then runs it
// on the calling goroutine. Called as `go p.runLoad(rf.Load)`-style from
// Add*, so the acquire/block happens off the caller's goroutine.
func (p *Pager) runLoad(load func()) {
	if err := p.loadSem.Acquire(context.Background(), 1); err != nil {
		return
	}
	defer p.loadSem.Release(1)
	load()
}

// Bus returns the EventBus driving this pager, for embedders that want
// to post synthetic key or resize events (e.g. in tests).
func (p *Pager) Bus() *eventbus.EventBus { return p.bus }

// Terminal returns the Terminal this pager is driving, so that a CLI
// front-end can defer terminal.RestoreOnPanic(p.Terminal()) at the top
// of main before calling Run.
func (p *Pager) Terminal() terminal.Terminal { return p.term }

// AddStream adds a non-seekable source (stdin, a pipe) as a new file,
// returning its index. Ingestion starts immediately on a background
// goroutine, per spec.md §4.2's "Streamed ingestion".
func (p *Pager) AddStream(r io.Reader, title string) int {
	index := len(p.files)
	f := file.NewStreamed(index, title)
	p.files = append(p.files, f)
	p.lastOutput = index

	var appendingFlag atomic.Bool
	go f.Run(r, p.bus, &appendingFlag)
	return index
}

// AddErrorStream attaches a non-seekable error source to the most
// recently added output (the §6 "--error-fd pairing" behavior); it is
// also pushed as its own file so it can be viewed directly with
// NextFile/PreviousFile, matching original_source's Screens::new,
// which builds a Screen for every file including error streams.
func (p *Pager) AddErrorStream(r io.Reader, title string) int {
	index := len(p.files)
	f := file.NewStreamed(index, title)
	p.files = append(p.files, f)
	if p.lastOutput >= 0 {
		p.errorOf[p.lastOutput] = f
	}

	var appendingFlag atomic.Bool
	go f.Run(r, p.bus, &appendingFlag)
	return index
}

// AddFile attaches a real filesystem path, watched for appends and
// reloads for as long as the pager runs (spec.md §4.2's "Random-file
// ingestion"). An empty file shortcuts to file.Empty per §4.2.
func (p *Pager) AddFile(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("pager: adding file %s: %w", path, err)
	}

	index := len(p.files)
	if info.Size() == 0 {
		f := file.NewEmpty(index, path)
		p.files = append(p.files, f)
		p.lastOutput = index
		return index, nil
	}

	rf := file.NewRandomFile(index, path)
	p.files = append(p.files, rf)
	p.lastOutput = index

	flags := file.LoaderFlags{Loaded: new(atomic.Bool), Appending: new(atomic.Bool), Reloading: new(atomic.Bool)}
	go rf.Watch()
	go p.runLoad(func() { rf.Load(p.bus, flags) })
	return index, nil
}

// AddMappedFile attaches a real filesystem path as a whole-file,
// one-shot memory mapping rather than a watched tail (spec.md §4.2's
// "Mapped ingestion"). Use this for archived or otherwise immutable
// files, where a filesystem watch only adds overhead.
func (p *Pager) AddMappedFile(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("pager: mapping file %s: %w", path, err)
	}

	index := len(p.files)
	if info.Size() == 0 {
		f := file.NewEmpty(index, path)
		p.files = append(p.files, f)
		p.lastOutput = index
		return index, nil
	}

	mf, err := file.NewMapped(index, path)
	if err != nil {
		return 0, fmt.Errorf("pager: mapping file %s: %w", path, err)
	}
	p.files = append(p.files, mf)
	p.lastOutput = index

	go p.runLoad(func() { mf.Load(p.bus) })
	return index, nil
}

// AddControlledFile attaches a programmatically-driven file, returning
// its index and the handle used to push line edits via ApplyChanges
// (spec.md §4.2's "Controlled files"). The pager subscribes it to the
// bus itself so edits trigger a Reloading-driven redraw.
func (p *Pager) AddControlledFile(title string) (int, *file.Controlled) {
	index := len(p.files)
	cf := file.NewControlled(index, title)
	p.files = append(p.files, cf)
	p.lastOutput = index

	var reloadFlag atomic.Bool
	cf.Subscribe(p.bus, &reloadFlag)
	return index, cf
}

// AddSubprocess spawns command, wiring its stdout and stderr through a
// pty and a pipe respectively into two sequentially-indexed Streamed
// files (spec.md §4.2's "Subprocess loader"). Returns the stdout and
// stderr file indices.
func (p *Pager) AddSubprocess(name string, args []string, title string) (stdout, stderr int, err error) {
	cmd := exec.Command(name, args...)
	index := len(p.files)
	sp, err := file.Spawn(cmd, index, title)
	if err != nil {
		return 0, 0, fmt.Errorf("pager: spawning %s: %w", name, err)
	}

	p.files = append(p.files, sp.Stdout, sp.Stderr)
	p.errorOf[index] = sp.Stderr
	p.lastOutput = index

	var outFlag, errFlag atomic.Bool
	go sp.RunAttached(p.bus, &outFlag, &errFlag)
	return index, index + 1, nil
}

// SetProgressStream installs a form-feed-delimited progress overlay
// source, read continuously in the background (spec.md §6's
// progress-stream wire format).
func (p *Pager) SetProgressStream(r io.Reader) {
	p.prog = progress.New()
	var refreshFlag atomic.Bool
	go p.prog.Run(r, p.bus, &refreshFlag)
}

// SetInterfaceMode overrides the direct-mode behavior resolved from
// config/environment (spec.md §4.9).
func (p *Pager) SetInterfaceMode(mode config.InterfaceMode) { p.cfg.InterfaceMode = mode }

// SetDelayedDuration overrides Delayed mode's deadline; zero means
// wait indefinitely for EOF or screen overflow.
func (p *Pager) SetDelayedDuration(d time.Duration) { p.cfg.DelayedDuration = d }

// SetScrollPastEOF overrides whether scrolling may move the view past
// the last line.
func (p *Pager) SetScrollPastEOF(v bool) { p.cfg.ScrollPastEOF = v }

// SetReadAheadLines overrides how many lines past the viewport bottom
// a streamed loader is kept ahead of (spec.md §5's backpressure rule).
func (p *Pager) SetReadAheadLines(n int) { p.cfg.ReadAheadLines = n }

// SetKeymapName selects a named keymap file under
// ${XDG_CONFIG_HOME}/streampager/keymaps/NAME, layered over the
// built-in default at Run time. Takes precedence over the built-in
// default but is itself overridden by SetKeymap, whenever that is
// called.
func (p *Pager) SetKeymapName(name string) { p.keymapName = name }

// SetKeymap installs an explicit keymap, bypassing keymap-file
// resolution entirely.
func (p *Pager) SetKeymap(km *keymap.Keymap) { p.km = km }

// SetNoAlternate disables entering the terminal's alternate screen
// buffer when direct mode decides to go full-screen from nothing
// (spec.md §6's --no-alternate/-X flag).
func (p *Pager) SetNoAlternate(v bool) { p.noAlt = v }

// resolveKeymap layers any named or explicit keymap over the default,
// a fatal setup error (spec.md §7 kind 1) if a named file can't be
// read or parsed.
func (p *Pager) resolveKeymap() (*keymap.Keymap, error) {
	if p.km != nil {
		return p.km, nil
	}
	km := keymap.DefaultKeymap()
	if p.keymapName == "" {
		return km, nil
	}

	path := config.KeymapFile(p.keymapName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pager: opening keymap %s: %w", path, err)
	}
	defer f.Close()

	custom, err := keymap.ParseFile(f)
	if err != nil {
		return nil, fmt.Errorf("pager: parsing keymap %s: %w", path, err)
	}
	km.Merge(custom)
	return km, nil
}

// Run builds a Screen per added file, streams through internal/direct,
// and (unless that fully satisfies the output) hands off to
// internal/display until the user quits. It restores the terminal
// before returning either way.
func (p *Pager) Run() error {
	defer func() {
		if p.stdinCancel != nil {
			p.stdinCancel()
		}
		_ = p.term.ExitRawMode()

		// Closed concurrently: a RandomFile's cache flush, a Mapped's
		// unmap and a Subprocess's process kill are all independent,
		// so there is no reason to serialize them on shutdown.
		var g errgroup.Group
		for _, f := range p.files {
			f := f
			g.Go(func() error { return f.Close() })
		}
		if err := g.Wait(); err != nil {
			logx.Warn("pager: closing files: %v", err)
		}
	}()

	km, err := p.resolveKeymap()
	if err != nil {
		return err
	}

	screens := make([]*screen.Screen, len(p.files))
	goTo, err := history.Load("goto")
	if err != nil {
		logx.Warn("pager: loading goto history: %v", err)
		goTo = nil
	}
	srch, err := history.Load("search")
	if err != nil {
		logx.Warn("pager: loading search history: %v", err)
		srch = nil
	}

	for i, f := range p.files {
		s := screen.New(f, km, linecache.New(linecache.DefaultCapacity), p.cfg.ScrollPastEOF, p.cfg.ReadAheadLines)
		if ef, ok := p.errorOf[f.Index()]; ok {
			s.SetErrorFile(ef)
		}
		s.SetHistories(goTo, srch)
		if p.prog != nil {
			s.SetProgress(p.prog.Lines())
		}
		screens[i] = s
	}

	outcome, err := p.runDirect()
	if err != nil {
		return err
	}
	defer p.saveHistories(goTo, srch)

	switch outcome {
	case direct.RenderComplete, direct.Interrupted:
		return nil
	case direct.RenderIncomplete:
		// Continue on the main screen; no alternate-screen entry.
	case direct.RenderNothing:
		if !p.noAlt {
			_, _ = p.term.Write([]byte("\x1b[?1049h"))
			defer p.term.Write([]byte("\x1b[?1049l"))
		}
	}

	d := display.New(p.term, p.bus, screens, km)
	d.SetPromptHandler(p.onPrompt(screens))
	return d.Run()
}

// runDirect mirrors original_source/src/display.rs's start(): only the
// first output file and its paired error file (if any) participate in
// direct mode, emulating "the main pager can only display one stream
// at a time" before full-screen multiplexing begins.
func (p *Pager) runDirect() (direct.Outcome, error) {
	var outputs, errors []file.File
	if len(p.files) > 0 {
		outputs = p.files[:1]
		if ef, ok := p.errorOf[p.files[0].Index()]; ok {
			errors = []file.File{ef}
		}
	}
	return direct.Run(p.term, outputs, errors, p.prog, p.bus, p.cfg.InterfaceMode, p.cfg.DelayedDuration)
}

func (p *Pager) saveHistories(goTo, srch *history.History) {
	if goTo != nil {
		if err := goTo.Save(); err != nil {
			logx.Warn("pager: saving goto history: %v", err)
		}
	}
	if srch != nil {
		if err := srch.Save(); err != nil {
			logx.Warn("pager: saving search history: %v", err)
		}
	}
}

// onPrompt builds the display.PromptHandler that interprets a
// completed go-to-line or search prompt, reporting failures through
// the owning Screen's error banner (spec.md §7 kind 3).
func (p *Pager) onPrompt(screens []*screen.Screen) display.PromptHandler {
	return func(screenIndex int, res *screen.PromptResult) screen.Action {
		if screenIndex < 0 || screenIndex >= len(screens) {
			return screen.Action{}
		}
		s := screens[screenIndex]

		switch res.Mode {
		case screen.PromptGoToLine:
			return p.handleGoToLine(s, res.Text)
		default:
			return p.handleSearch(s, res)
		}
	}
}

func (p *Pager) handleGoToLine(s *screen.Screen, text string) screen.Action {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		s.SetError(fmt.Sprintf("not a line number: %q", text))
		return screen.Action{Kind: screen.Render}
	}
	if !s.ScrollToLine(n - 1) {
		s.SetError(fmt.Sprintf("no such line: %d", n))
	}
	return screen.Action{Kind: screen.Render}
}

func (p *Pager) handleSearch(s *screen.Screen, res *screen.PromptResult) screen.Action {
	kind := search.First
	switch res.Mode {
	case screen.PromptSearchForwards:
		kind = search.FirstAfter
	case screen.PromptSearchBackwards:
		kind = search.FirstBefore
	}

	sr, err := search.New(res.Text, kind, s.CurrentLine())
	if err != nil {
		s.SetError(fmt.Sprintf("invalid search: %v", err))
		return screen.Action{Kind: screen.Render}
	}
	s.SetSearch(sr)

	src := fileLineSource{f: p.fileByIndex(s.FileIndex())}
	go sr.Run(s.FileIndex(), src, p.bus)
	return screen.Action{Kind: screen.Render}
}

func (p *Pager) fileByIndex(index int) file.File {
	for _, f := range p.files {
		if f.Index() == index {
			return f
		}
	}
	return nil
}

// fileLineSource adapts file.File's borrow-style WithLine to
// search.LineSource's copy-returning Line, since a sweep goroutine
// cannot hold a borrowed slice across the loop iterations that may
// race the file's own mutators.
type fileLineSource struct {
	f file.File
}

func (s fileLineSource) Lines() int { return s.f.Lines() }

func (s fileLineSource) Line(i int) ([]byte, bool) {
	var out []byte
	found := false
	ok := s.f.WithLine(i, func(b []byte) {
		out = append([]byte(nil), b...)
		found = true
	})
	return out, ok && found
}
