// ABOUTME: Standard filesystem paths for sp configuration and history.
// ABOUTME: Resolves XDG_CONFIG_HOME/streampager and XDG_DATA_HOME/streampager.

package config

import (
	"os"
	"path/filepath"
)

const dirName = "streampager"

// ConfigDir returns the directory holding streampager.toml, honoring
// XDG_CONFIG_HOME and falling back to ~/.config.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, dirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", dirName)
	}
	return filepath.Join(home, ".config", dirName)
}

// ConfigFile returns the path to streampager.toml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "streampager.toml")
}

// DataDir returns the directory holding prompt history files, honoring
// XDG_DATA_HOME and falling back to ~/.local/share.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", dirName)
	}
	return filepath.Join(home, ".local", "share", dirName)
}

// HistoryDir returns the directory holding per-prompt history files.
func HistoryDir() string {
	return filepath.Join(DataDir(), "history")
}

// HistoryFile returns the history file path for a named prompt (e.g. "search", "goto").
func HistoryFile(name string) string {
	return filepath.Join(HistoryDir(), name+".history")
}

// KeymapFile returns the path to a named keymap file under
// ${XDG_CONFIG_HOME}/streampager/keymaps/NAME (spec.md §6).
func KeymapFile(name string) string {
	return filepath.Join(ConfigDir(), "keymaps", name)
}
