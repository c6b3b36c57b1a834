// ABOUTME: streampager.toml settings loading with SP_* environment overrides.
// ABOUTME: TOML-based configuration using github.com/BurntSushi/toml; no JSON.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// InterfaceMode selects how the pager behaves before (and whether it
// ever) enters full-screen mode. See spec.md §4.9/§6.
type InterfaceMode int

const (
	// ModeFullscreen enters the alternate screen immediately.
	ModeFullscreen InterfaceMode = iota
	// ModeCat streams everything to the main screen and never clears it.
	ModeCat
	// ModeHybrid streams until output exceeds one screen, then switches
	// to full-screen.
	ModeHybrid
	// ModeDelayed buffers output until a deadline or screen-height limit,
	// deciding once whether to flush to the main screen or go full-screen.
	ModeDelayed
)

// Config holds the merged streampager.toml + environment settings.
type Config struct {
	InterfaceMode InterfaceMode `toml:"-"`
	// DelayedDuration is the deadline used when InterfaceMode is
	// ModeDelayed; zero means infinite (wait for EOF or screen overflow).
	DelayedDuration time.Duration `toml:"-"`

	ScrollPastEOF bool `toml:"scroll_past_eof"`
	ReadAheadLines int  `toml:"read_ahead_lines"`
}

// fileConfig mirrors the on-disk TOML shape; InterfaceMode/DelayedDuration
// are derived fields computed from SP_INTERFACE_MODE instead, since the
// original streampager config file has no interface-mode key.
type fileConfig struct {
	ScrollPastEOF  *bool `toml:"scroll_past_eof"`
	ReadAheadLines *int  `toml:"read_ahead_lines"`
}

// Default returns the built-in defaults, applied before the config file
// and environment overrides.
func Default() Config {
	return Config{
		InterfaceMode:  ModeFullscreen,
		ScrollPastEOF:  false,
		ReadAheadLines: 1000,
	}
}

// Load reads streampager.toml (if present) and applies SP_* environment
// overrides on top, in that order (env wins over file, file wins over
// Default()). A missing config file is not an error.
func Load() (Config, error) {
	cfg := Default()

	path := ConfigFile()
	if data, err := os.ReadFile(path); err == nil {
		var fc fileConfig
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		if fc.ScrollPastEOF != nil {
			cfg.ScrollPastEOF = *fc.ScrollPastEOF
		}
		if fc.ReadAheadLines != nil {
			cfg.ReadAheadLines = *fc.ReadAheadLines
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("SP_INTERFACE_MODE"); ok {
		mode, dur, err := ParseInterfaceMode(v)
		if err != nil {
			return fmt.Errorf("config: SP_INTERFACE_MODE=%q: %w", v, err)
		}
		cfg.InterfaceMode = mode
		cfg.DelayedDuration = dur
	}
	if v, ok := os.LookupEnv("SP_SCROLL_PAST_EOF"); ok {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("config: SP_SCROLL_PAST_EOF=%q: %w", v, err)
		}
		cfg.ScrollPastEOF = b
	}
	if v, ok := os.LookupEnv("SP_READ_AHEAD_LINES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: SP_READ_AHEAD_LINES=%q: %w", v, err)
		}
		cfg.ReadAheadLines = n
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("not a recognized boolean")
	}
}

// ParseInterfaceMode parses the SP_INTERFACE_MODE grammar:
// full|fullscreen|cat|direct|hybrid|delayed[:DURATION], where DURATION
// is "Nms", "Ns", or absent (infinite deadline).
func ParseInterfaceMode(v string) (InterfaceMode, time.Duration, error) {
	name, rest, hasColon := strings.Cut(v, ":")
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "full", "fullscreen":
		return ModeFullscreen, 0, nil
	case "cat", "direct":
		return ModeCat, 0, nil
	case "hybrid":
		return ModeHybrid, 0, nil
	case "delayed":
		if !hasColon || rest == "" {
			return ModeDelayed, 0, nil
		}
		d, err := ParseDelayDuration(rest)
		if err != nil {
			return ModeDelayed, 0, err
		}
		return ModeDelayed, d, nil
	default:
		return ModeFullscreen, 0, fmt.Errorf("unrecognized interface mode %q", name)
	}
}

// ParseDelayDuration parses the "Nms" / "Ns" duration suffix used by
// delayed-mode's deadline (spec.md §6, grounded on original_source's
// direct.rs delay parsing). A bare empty string means infinite.
func ParseDelayDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, ok := strings.CutSuffix(s, "ms"); ok {
		v, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(v) * time.Millisecond, nil
	}
	if n, ok := strings.CutSuffix(s, "s"); ok {
		v, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(v) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration %q: want Nms or Ns", s)
}
