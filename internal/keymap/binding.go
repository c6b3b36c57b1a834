// ABOUTME: Binding enumerates the display actions a key can be mapped to.
// ABOUTME: Bindings with a parameter (scroll counts, fractions) carry it inline.

package keymap

import "fmt"

// Binding is the result of looking up a Key in a Keymap. It names an
// abstract pager action; the screen/display layer turns it into a
// concrete Action (see internal/screen).
type Binding struct {
	Kind   BindingKind
	Count  int     // ScrollUpLines, ScrollDownLines, ScrollLeftColumns, ScrollRightColumns
	Frac   float64 // ScrollUp/DownScreenFraction, ScrollLeft/RightScreenFraction
	Hidden bool    // excluded from the generated help screen
}

// BindingKind is the tag of a Binding.
type BindingKind int

const (
	BindingNone BindingKind = iota
	BindingQuit
	BindingRefresh
	BindingHelp
	BindingCancel
	BindingPreviousFile
	BindingNextFile
	BindingScrollUpLines
	BindingScrollDownLines
	BindingScrollUpScreenFraction
	BindingScrollDownScreenFraction
	BindingScrollToTop
	BindingScrollToBottom
	BindingScrollLeftColumns
	BindingScrollRightColumns
	BindingScrollLeftScreenFraction
	BindingScrollRightScreenFraction
	BindingToggleLineNumbers
	BindingToggleLineWrapping
	BindingPromptGoToLine
	BindingPromptSearchFromStart
	BindingPromptSearchForwards
	BindingPromptSearchBackwards
	BindingPreviousMatch
	BindingNextMatch
	BindingPreviousMatchLine
	BindingNextMatchLine
	BindingFirstMatch
	BindingLastMatch
)

var bindingNames = map[BindingKind]string{
	BindingNone:                      "None",
	BindingQuit:                      "Quit",
	BindingRefresh:                   "Refresh",
	BindingHelp:                      "Help",
	BindingCancel:                    "Cancel",
	BindingPreviousFile:              "PreviousFile",
	BindingNextFile:                  "NextFile",
	BindingScrollUpLines:             "ScrollUpLines",
	BindingScrollDownLines:           "ScrollDownLines",
	BindingScrollUpScreenFraction:    "ScrollUpScreenFraction",
	BindingScrollDownScreenFraction:  "ScrollDownScreenFraction",
	BindingScrollToTop:               "ScrollToTop",
	BindingScrollToBottom:            "ScrollToBottom",
	BindingScrollLeftColumns:         "ScrollLeftColumns",
	BindingScrollRightColumns:        "ScrollRightColumns",
	BindingScrollLeftScreenFraction:  "ScrollLeftScreenFraction",
	BindingScrollRightScreenFraction: "ScrollRightScreenFraction",
	BindingToggleLineNumbers:         "ToggleLineNumbers",
	BindingToggleLineWrapping:        "ToggleLineWrapping",
	BindingPromptGoToLine:            "PromptGoToLine",
	BindingPromptSearchFromStart:     "PromptSearchFromStart",
	BindingPromptSearchForwards:      "PromptSearchForwards",
	BindingPromptSearchBackwards:     "PromptSearchBackwards",
	BindingPreviousMatch:             "PreviousMatch",
	BindingNextMatch:                 "NextMatch",
	BindingPreviousMatchLine:         "PreviousMatchLine",
	BindingNextMatchLine:             "NextMatchLine",
	BindingFirstMatch:                "FirstMatch",
	BindingLastMatch:                 "LastMatch",
}

// String renders the binding for the help screen and error messages.
func (b Binding) String() string {
	name := bindingNames[b.Kind]
	if name == "" {
		name = "Unknown"
	}
	switch b.Kind {
	case BindingScrollUpLines, BindingScrollDownLines, BindingScrollLeftColumns, BindingScrollRightColumns:
		return fmt.Sprintf("%s(%d)", name, b.Count)
	case BindingScrollUpScreenFraction, BindingScrollDownScreenFraction,
		BindingScrollLeftScreenFraction, BindingScrollRightScreenFraction:
		return fmt.Sprintf("%s(%g)", name, b.Frac)
	default:
		return name
	}
}
