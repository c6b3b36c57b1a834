// ABOUTME: Prompt is the editable one-line input state for go-to-line and
// ABOUTME: search entry (spec.md §4.8's prompt row / §6's persisted history).

package screen

// PromptMode names which command a Prompt's Enter keystroke completes.
type PromptMode int

const (
	PromptGoToLine PromptMode = iota
	PromptSearchFromStart
	PromptSearchForwards
	PromptSearchBackwards
)

// Label is the row prefix shown before the input buffer.
func (m PromptMode) Label() string {
	switch m {
	case PromptGoToLine:
		return "Go to line: "
	case PromptSearchFromStart:
		return "Search: "
	case PromptSearchForwards:
		return "/"
	case PromptSearchBackwards:
		return "?"
	default:
		return "> "
	}
}

// Prompt holds one in-progress line of editable input plus a read-only
// snapshot of history entries consulted with HistoryPrev/HistoryNext,
// per spec.md §6's "one UTF-8 line per entry" persisted-history
// contract. Prompt only walks the snapshot it was constructed with;
// internal/history owns loading, deduping, and persisting entries, and
// Screen copies its current Entries() into each new Prompt.
type Prompt struct {
	Mode    PromptMode
	buf     []rune
	cursor  int
	history []string
	histPos int // len(history) means "not browsing history"
	saved   []rune
}

// NewPrompt creates an empty prompt of the given mode, seeded with a
// read-only view of history (most recent entry last).
func NewPrompt(mode PromptMode, history []string) *Prompt {
	return &Prompt{Mode: mode, history: history, histPos: len(history)}
}

// Insert adds r at the cursor position.
func (p *Prompt) Insert(r rune) {
	p.buf = append(p.buf[:p.cursor], append([]rune{r}, p.buf[p.cursor:]...)...)
	p.cursor++
}

// Backspace deletes the rune before the cursor, if any.
func (p *Prompt) Backspace() {
	if p.cursor == 0 {
		return
	}
	p.buf = append(p.buf[:p.cursor-1], p.buf[p.cursor:]...)
	p.cursor--
}

// Delete removes the rune at the cursor, if any.
func (p *Prompt) Delete() {
	if p.cursor >= len(p.buf) {
		return
	}
	p.buf = append(p.buf[:p.cursor], p.buf[p.cursor+1:]...)
}

// MoveLeft/MoveRight/Home/End reposition the cursor within the buffer.
func (p *Prompt) MoveLeft() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *Prompt) MoveRight() {
	if p.cursor < len(p.buf) {
		p.cursor++
	}
}

func (p *Prompt) Home() { p.cursor = 0 }
func (p *Prompt) End()  { p.cursor = len(p.buf) }

// Text returns the current buffer contents.
func (p *Prompt) Text() string { return string(p.buf) }

// Cursor returns the current cursor offset in runes.
func (p *Prompt) Cursor() int { return p.cursor }

// HistoryPrev replaces the buffer with the previous (older) history
// entry, saving the in-progress buffer on first invocation so it can be
// restored by walking back forward past the newest entry.
func (p *Prompt) HistoryPrev() {
	if p.histPos == 0 {
		return
	}
	if p.histPos == len(p.history) {
		p.saved = append([]rune(nil), p.buf...)
	}
	p.histPos--
	p.setBuf(p.history[p.histPos])
}

// HistoryNext replaces the buffer with the next (newer) history entry,
// restoring the saved in-progress buffer once the walk passes the end.
func (p *Prompt) HistoryNext() {
	if p.histPos >= len(p.history) {
		return
	}
	p.histPos++
	if p.histPos == len(p.history) {
		p.setBuf(string(p.saved))
		return
	}
	p.setBuf(p.history[p.histPos])
}

func (p *Prompt) setBuf(s string) {
	p.buf = []rune(s)
	p.cursor = len(p.buf)
}
