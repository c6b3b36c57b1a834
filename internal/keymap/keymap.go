// ABOUTME: Keymap is an O(1) key-to-binding lookup table.
// ABOUTME: Modelled on the teacher's keybindings.Manager (global/local merge, string-keyed lookup).

package keymap

import "strings"

// Keymap maps a canonicalized key string ("ctrl+g", "g", "shift+tab") to
// the Binding it triggers.
type Keymap struct {
	bindings map[string]Binding
	keys     map[string]Key
}

// New returns an empty Keymap.
func New() *Keymap {
	return &Keymap{
		bindings: make(map[string]Binding),
		keys:     make(map[string]Key),
	}
}

// Bind registers a binding for k, overwriting any existing entry.
func (m *Keymap) Bind(k Key, b Binding) {
	s := canonicalKey(k)
	m.bindings[s] = b
	m.keys[s] = k
}

// Lookup returns the binding for k, or (Binding{}, false) if unbound.
func (m *Keymap) Lookup(k Key) (Binding, bool) {
	b, ok := m.bindings[canonicalKey(k)]
	return b, ok
}

// Merge copies every binding from other into m, overwriting conflicts.
// Used to layer a project-local keymap file over the built-in default.
func (m *Keymap) Merge(other *Keymap) {
	for s, b := range other.bindings {
		m.bindings[s] = b
		m.keys[s] = other.keys[s]
	}
}

// Clone returns an independent copy of m.
func (m *Keymap) Clone() *Keymap {
	out := New()
	for s, b := range m.bindings {
		out.bindings[s] = b
		out.keys[s] = m.keys[s]
	}
	return out
}

// Keys returns every Key currently bound in m, in no particular order.
func (m *Keymap) Keys() []Key {
	out := make([]Key, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, k)
	}
	return out
}

// canonicalKey renders a Key into a lowercase "mod+key" string, so that
// keys parsed from a keymap file, keys decoded from terminal input and
// programmatic Bind calls address the same table.
func canonicalKey(k Key) string {
	var b strings.Builder
	if k.Ctrl {
		b.WriteString("ctrl+")
	}
	if k.Alt {
		b.WriteString("alt+")
	}
	if k.Shift && k.Type != KeyRune {
		b.WriteString("shift+")
	}
	switch k.Type {
	case KeyRune:
		b.WriteRune(k.Rune)
	default:
		b.WriteString(namedKeyStrings[k.Type])
	}
	return b.String()
}

var namedKeyStrings = map[KeyType]string{
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackTab:   "backtab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pageup",
	KeyPageDown:  "pagedown",
	KeyEscape:    "escape",
	KeyCtrlC:     "c",
	KeyCtrlD:     "d",
	KeyCtrlG:     "g",
	KeyCtrlL:     "l",
	KeyCtrlO:     "o",
	KeyCtrlR:     "r",
	KeyUnknown:   "unknown",
}
