// ABOUTME: Built-in default and error-mode keymaps, grounded on the original
// ABOUTME: streampager keymaps/default.rs and keymaps/error.rs.

package keymap

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultKeymapYAML []byte

// defaultBinding is one entry of default.yaml: a set of key tokens (in
// the same grammar parseKeySpec accepts for user keymap files) sharing
// a single binding.
type defaultBinding struct {
	Keys    []string `yaml:"keys"`
	Binding string   `yaml:"binding"`
}

// DefaultKeymap returns the built-in keymap used when no keymap file
// overrides a binding. Keymap files loaded from
// ${XDG_CONFIG_HOME}/streampager/keymaps/ are merged on top via Merge.
//
// The bindings themselves live in default.yaml rather than as Go
// literals here, parsed with the same key/binding grammar
// parseKeySpec/parseBinding use for a user-supplied keymap file, so the
// built-in defaults and a custom keymap are expressed identically.
func DefaultKeymap() *Keymap {
	var entries []defaultBinding
	if err := yaml.Unmarshal(defaultKeymapYAML, &entries); err != nil {
		panic(fmt.Sprintf("keymap: invalid embedded default.yaml: %v", err))
	}

	m := New()
	for _, e := range entries {
		binding, err := parseBinding(e.Binding)
		if err != nil {
			panic(fmt.Sprintf("keymap: default.yaml binding %q: %v", e.Binding, err))
		}
		for _, tok := range e.Keys {
			k, err := parseKeySpec(tok)
			if err != nil {
				panic(fmt.Sprintf("keymap: default.yaml key %q: %v", tok, err))
			}
			m.Bind(k, binding)
		}
	}
	return m
}

// ErrorKeymap returns the restricted keymap active while the screen's
// one-line error banner is showing: every binding except Cancel and
// Quit collapses to dismissing the error (BindingCancel), mirroring
// keymaps/error.rs in the original implementation.
func ErrorKeymap() *Keymap {
	base := DefaultKeymap()
	m := New()
	for _, k := range base.Keys() {
		b, _ := base.Lookup(k)
		if b.Kind == BindingQuit {
			m.Bind(k, b)
			continue
		}
		m.Bind(k, Binding{Kind: BindingCancel})
	}
	m.Bind(Key{Type: KeyEscape}, Binding{Kind: BindingCancel})
	return m
}
