// ABOUTME: Tests for streampager.toml loading and SP_* environment overrides.
// ABOUTME: Validates defaults, file parsing, env precedence, and mode/duration grammar.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if cfg.InterfaceMode != ModeFullscreen {
		t.Errorf("Default().InterfaceMode = %v, want ModeFullscreen", cfg.InterfaceMode)
	}
	if cfg.ReadAheadLines != 1000 {
		t.Errorf("Default().ReadAheadLines = %d, want 1000", cfg.ReadAheadLines)
	}
}

func TestParseInterfaceModeNames(t *testing.T) {
	t.Parallel()
	cases := map[string]InterfaceMode{
		"full":       ModeFullscreen,
		"fullscreen": ModeFullscreen,
		"cat":        ModeCat,
		"direct":     ModeCat,
		"hybrid":     ModeHybrid,
		"delayed":    ModeDelayed,
	}
	for in, want := range cases {
		mode, _, err := ParseInterfaceMode(in)
		if err != nil {
			t.Errorf("ParseInterfaceMode(%q) error: %v", in, err)
			continue
		}
		if mode != want {
			t.Errorf("ParseInterfaceMode(%q) = %v, want %v", in, mode, want)
		}
	}
}

func TestParseInterfaceModeUnknown(t *testing.T) {
	t.Parallel()
	if _, _, err := ParseInterfaceMode("bogus"); err == nil {
		t.Fatal("expected error for unrecognized interface mode")
	}
}

func TestParseInterfaceModeDelayedWithDuration(t *testing.T) {
	t.Parallel()
	mode, dur, err := ParseInterfaceMode("delayed:500ms")
	if err != nil {
		t.Fatalf("ParseInterfaceMode error: %v", err)
	}
	if mode != ModeDelayed || dur != 500*time.Millisecond {
		t.Fatalf("got (%v, %v), want (ModeDelayed, 500ms)", mode, dur)
	}
}

func TestParseInterfaceModeDelayedBareIsInfinite(t *testing.T) {
	t.Parallel()
	mode, dur, err := ParseInterfaceMode("delayed")
	if err != nil {
		t.Fatalf("ParseInterfaceMode error: %v", err)
	}
	if mode != ModeDelayed || dur != 0 {
		t.Fatalf("got (%v, %v), want (ModeDelayed, 0)", mode, dur)
	}
}

func TestParseDelayDuration(t *testing.T) {
	t.Parallel()
	if d, err := ParseDelayDuration("1s"); err != nil || d != time.Second {
		t.Fatalf("ParseDelayDuration(1s) = %v, %v", d, err)
	}
	if d, err := ParseDelayDuration("250ms"); err != nil || d != 250*time.Millisecond {
		t.Fatalf("ParseDelayDuration(250ms) = %v, %v", d, err)
	}
	if _, err := ParseDelayDuration("abc"); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadAppliesFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	confDir := filepath.Join(dir, "streampager")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatal(err)
	}
	toml := "scroll_past_eof = true\nread_ahead_lines = 42\n"
	if err := os.WriteFile(filepath.Join(confDir, "streampager.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.ScrollPastEOF || cfg.ReadAheadLines != 42 {
		t.Fatalf("Load() from file = %+v, want scroll_past_eof=true read_ahead_lines=42", cfg)
	}

	t.Setenv("SP_READ_AHEAD_LINES", "7")
	t.Setenv("SP_SCROLL_PAST_EOF", "false")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ScrollPastEOF || cfg.ReadAheadLines != 7 {
		t.Fatalf("Load() env override = %+v, want scroll_past_eof=false read_ahead_lines=7", cfg)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file: %v", err)
	}
	if cfg.ReadAheadLines != 1000 {
		t.Fatalf("Load() without file = %+v, want defaults", cfg)
	}
}
