// ABOUTME: Parser for keymap files (${XDG_CONFIG_HOME}/streampager/keymaps/NAME).
// ABOUTME: Grammar: lines of "KEY [, KEY ...] => Binding[(params)] [(hidden)] ;".

package keymap

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// namedKeys enumerates the identifiers the grammar accepts besides a
// single-quoted character literal.
var namedKeys = map[string]Key{
	"Enter":     {Type: KeyEnter},
	"Tab":       {Type: KeyTab},
	"BackTab":   {Type: KeyBackTab},
	"Backspace": {Type: KeyBackspace},
	"Delete":    {Type: KeyDelete},
	"Up":        {Type: KeyUp},
	"Down":      {Type: KeyDown},
	"Left":      {Type: KeyLeft},
	"Right":     {Type: KeyRight},
	"Home":      {Type: KeyHome},
	"End":       {Type: KeyEnd},
	"PageUp":    {Type: KeyPageUp},
	"PageDown":  {Type: KeyPageDown},
	"Escape":    {Type: KeyEscape},
	"CtrlC":     {Type: KeyCtrlC, Ctrl: true},
	"CtrlD":     {Type: KeyCtrlD, Ctrl: true},
	"CtrlG":     {Type: KeyCtrlG, Ctrl: true},
	"CtrlL":     {Type: KeyCtrlL, Ctrl: true},
	"CtrlO":     {Type: KeyCtrlO, Ctrl: true},
	"CtrlR":     {Type: KeyCtrlR, Ctrl: true},
}

var bindingKinds = map[string]BindingKind{
	"Quit":                      BindingQuit,
	"Refresh":                   BindingRefresh,
	"Help":                      BindingHelp,
	"Cancel":                    BindingCancel,
	"PreviousFile":              BindingPreviousFile,
	"NextFile":                  BindingNextFile,
	"ScrollUpLines":             BindingScrollUpLines,
	"ScrollDownLines":           BindingScrollDownLines,
	"ScrollUpScreenFraction":    BindingScrollUpScreenFraction,
	"ScrollDownScreenFraction":  BindingScrollDownScreenFraction,
	"ScrollToTop":               BindingScrollToTop,
	"ScrollToBottom":            BindingScrollToBottom,
	"ScrollLeftColumns":         BindingScrollLeftColumns,
	"ScrollRightColumns":        BindingScrollRightColumns,
	"ScrollLeftScreenFraction":  BindingScrollLeftScreenFraction,
	"ScrollRightScreenFraction": BindingScrollRightScreenFraction,
	"ToggleLineNumbers":         BindingToggleLineNumbers,
	"ToggleLineWrapping":        BindingToggleLineWrapping,
	"PromptGoToLine":            BindingPromptGoToLine,
	"PromptSearchFromStart":     BindingPromptSearchFromStart,
	"PromptSearchForwards":      BindingPromptSearchForwards,
	"PromptSearchBackwards":     BindingPromptSearchBackwards,
	"PreviousMatch":             BindingPreviousMatch,
	"NextMatch":                 BindingNextMatch,
	"PreviousMatchLine":         BindingPreviousMatchLine,
	"NextMatchLine":             BindingNextMatchLine,
	"FirstMatch":                BindingFirstMatch,
	"LastMatch":                 BindingLastMatch,
}

// ParseFileError describes a malformed keymap-file line.
type ParseFileError struct {
	Line int
	Msg  string
}

func (e *ParseFileError) Error() string {
	return fmt.Sprintf("keymap file line %d: %s", e.Line, e.Msg)
}

// ParseFile reads a keymap file and returns the Keymap it describes.
// Blank lines and lines beginning with "#" are ignored.
func ParseFile(r io.Reader) (*Keymap, error) {
	m := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseLine(m, line, lineNo); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading keymap file: %w", err)
	}
	return m, nil
}

func parseLine(m *Keymap, line string, lineNo int) error {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	parts := strings.SplitN(line, "=>", 2)
	if len(parts) != 2 {
		return &ParseFileError{Line: lineNo, Msg: "expected KEY[, KEY...] => Binding"}
	}

	keys, err := parseKeyList(strings.TrimSpace(parts[0]))
	if err != nil {
		return &ParseFileError{Line: lineNo, Msg: err.Error()}
	}

	binding, err := parseBinding(strings.TrimSpace(parts[1]))
	if err != nil {
		return &ParseFileError{Line: lineNo, Msg: err.Error()}
	}

	for _, k := range keys {
		m.Bind(k, binding)
	}
	return nil
}

func parseKeyList(s string) ([]Key, error) {
	var keys []Key
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		k, err := parseKeySpec(tok)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no keys given")
	}
	return keys, nil
}

func parseKeySpec(tok string) (Key, error) {
	var k Key
	for {
		switch {
		case strings.HasPrefix(tok, "CTRL+"):
			k.Ctrl = true
			tok = tok[len("CTRL+"):]
		case strings.HasPrefix(tok, "SHIFT+"):
			k.Shift = true
			tok = tok[len("SHIFT+"):]
		case strings.HasPrefix(tok, "ALT+"):
			k.Alt = true
			tok = tok[len("ALT+"):]
		case strings.HasPrefix(tok, "SUPER+"):
			// SUPER is accepted but has no representation in Key; the
			// binding still applies to the base key.
			tok = tok[len("SUPER+"):]
		default:
			goto base
		}
	}
base:
	if len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		lit := tok[1 : len(tok)-1]
		r := []rune(lit)
		if len(r) != 1 {
			return Key{}, fmt.Errorf("invalid character literal %q", tok)
		}
		k.Type = KeyRune
		k.Rune = r[0]
		return k, nil
	}
	if named, ok := namedKeys[tok]; ok {
		k.Type = named.Type
		k.Ctrl = k.Ctrl || named.Ctrl
		return k, nil
	}
	return Key{}, fmt.Errorf("unknown key %q", tok)
}

func parseBinding(s string) (Binding, error) {
	hidden := false
	if strings.HasSuffix(s, "(hidden)") {
		hidden = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "(hidden)"))
	}

	name := s
	var arg string
	hasArg := false
	if i := strings.Index(s, "("); i >= 0 && strings.HasSuffix(s, ")") {
		name = strings.TrimSpace(s[:i])
		arg = strings.TrimSpace(s[i+1 : len(s)-1])
		hasArg = true
	}

	kind, ok := bindingKinds[name]
	if !ok {
		return Binding{}, fmt.Errorf("unknown binding %q", name)
	}

	b := Binding{Kind: kind, Hidden: hidden}
	if !hasArg {
		return b, nil
	}
	switch kind {
	case BindingScrollUpLines, BindingScrollDownLines, BindingScrollLeftColumns, BindingScrollRightColumns:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return Binding{}, fmt.Errorf("binding %s expects an integer argument: %w", name, err)
		}
		b.Count = n
	case BindingScrollUpScreenFraction, BindingScrollDownScreenFraction,
		BindingScrollLeftScreenFraction, BindingScrollRightScreenFraction:
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return Binding{}, fmt.Errorf("binding %s expects a float argument: %w", name, err)
		}
		b.Frac = f
	default:
		return Binding{}, fmt.Errorf("binding %s does not take an argument", name)
	}
	return b, nil
}
