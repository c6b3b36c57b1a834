// ABOUTME: Action is the display loop's unit of work, produced by a Screen's
// ABOUTME: key/event handlers and consumed by internal/display (spec.md §4.8/§4.10).

package screen

// Kind tags an Action's variant.
type Kind int

const (
	None Kind = iota
	Render
	Refresh
	Quit
	NextFile
	PreviousFile
	ShowHelp
	ClearOverlay
	RefreshPrompt
	Run
	Change
)

// Action is the result of mapping one input event through a Screen's
// handlers. Run carries a closure for actions that must execute inside
// the display loop (e.g. spawning a search); Change carries a raw
// terminal escape sequence to emit verbatim.
type Action struct {
	Kind   Kind
	Run    func()
	Change string
}

func doNone() Action          { return Action{Kind: None} }
func doRender() Action        { return Action{Kind: Render} }
func doRefresh() Action       { return Action{Kind: Refresh} }
func doQuit() Action          { return Action{Kind: Quit} }
func doNextFile() Action      { return Action{Kind: NextFile} }
func doPreviousFile() Action  { return Action{Kind: PreviousFile} }
func doShowHelp() Action      { return Action{Kind: ShowHelp} }
func doClearOverlay() Action  { return Action{Kind: ClearOverlay} }
func doRefreshPrompt() Action { return Action{Kind: RefreshPrompt} }
