// ABOUTME: sp is the stream pager front-end: pages files, file descriptors,
// ABOUTME: subprocess output and stdin, per spec.md §6's CLI surface.

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/term"

	"github.com/colinmarc/sp/internal/config"
	"github.com/colinmarc/sp/internal/terminal"
	"github.com/colinmarc/sp/pkg/pager"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sp: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func run(argv []string) error {
	args, err := parseFlags(argv)
	if err != nil {
		return err
	}

	p, err := pager.New()
	if err != nil {
		return err
	}
	defer terminal.RestoreOnPanic(p.Terminal())

	applyMode(p, args)

	if err := applyProgressStream(p, args); err != nil {
		return err
	}

	if len(args.specs) == 0 {
		if err := fallbackToStdin(p); err != nil {
			return err
		}
	} else if err := addSpecs(p, args.specs); err != nil {
		return err
	}

	return p.Run()
}

// applyMode maps --fullscreen/--delayed/--no-alternate onto the
// pager's interface mode, mirroring original_source/src/bin/sp's
// mutually-exclusive (overrides_with_all) handling of the three flags.
func applyMode(p *pager.Pager, args cliArgs) {
	switch {
	case args.noAlternate:
		p.SetInterfaceMode(config.ModeHybrid)
		p.SetNoAlternate(true)
	case args.fullscreen:
		p.SetInterfaceMode(config.ModeFullscreen)
	case args.delayed != "":
		secs, err := strconv.Atoi(args.delayed)
		if err != nil || secs == 0 {
			p.SetInterfaceMode(config.ModeFullscreen)
			return
		}
		p.SetInterfaceMode(config.ModeDelayed)
		p.SetDelayedDuration(time.Duration(secs) * time.Second)
	}
}

// applyProgressStream wires --progress-fd, with PAGER_PROGRESS_FD
// taking priority, matching original_source's env-before-flag order.
func applyProgressStream(p *pager.Pager, args cliArgs) error {
	spec := os.Getenv("PAGER_PROGRESS_FD")
	if spec == "" {
		spec = args.progressFd
	}
	if spec == "" {
		return nil
	}
	fd, err := strconv.Atoi(spec)
	if err != nil {
		return fmt.Errorf("invalid PAGER_PROGRESS_FD/--progress-fd %q: %w", spec, err)
	}
	p.SetProgressStream(os.NewFile(uintptr(fd), "progress"))
	return nil
}

// fallbackToStdin pages stdin with PAGER_ERROR_FD/PAGER_TITLE support
// when no files, descriptors or commands were given, per spec.md §6.
func fallbackToStdin(p *pager.Pager) error {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("expected filename or piped input")
	}

	title := os.Getenv("PAGER_TITLE")
	p.AddStream(os.Stdin, title)

	if spec := os.Getenv("PAGER_ERROR_FD"); spec != "" {
		fd, title, err := parseFdTitle(spec)
		if err == nil {
			if title == spec {
				title = "STDERR"
			}
			p.AddErrorStream(os.NewFile(uintptr(fd), title), title)
		}
	}
	return nil
}

// addSpecs replays the ordered FILE/--fd/--error-fd/--command entries
// against the pager's Add* methods in command-line order, so that
// --error-fd pairs with whichever output immediately precedes it.
func addSpecs(p *pager.Pager, specs []spec) error {
	for _, s := range specs {
		switch s.kind {
		case specFile:
			if _, err := p.AddFile(s.value); err != nil {
				return err
			}
		case specFd:
			fd, title, err := parseFdTitle(s.value)
			if err != nil {
				return err
			}
			p.AddStream(os.NewFile(uintptr(fd), title), title)
		case specErrorFd:
			fd, title, err := parseFdTitle(s.value)
			if err != nil {
				return err
			}
			p.AddErrorStream(os.NewFile(uintptr(fd), title), title)
		case specCommand:
			if _, _, err := p.AddSubprocess("/bin/sh", []string{"-c", s.value}, s.value); err != nil {
				return err
			}
		}
	}
	return nil
}
