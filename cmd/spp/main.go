// ABOUTME: spp runs a command and pages its output, per
// ABOUTME: original_source/src/bin/spp's single-subprocess front-end.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/colinmarc/sp/internal/terminal"
	"github.com/colinmarc/sp/pkg/pager"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "spp: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func run(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("expected command to run")
	}

	p, err := pager.New()
	if err != nil {
		return err
	}
	defer terminal.RestoreOnPanic(p.Terminal())

	title := strings.Join(argv, " ")
	if _, _, err := p.AddSubprocess(argv[0], argv[1:], title); err != nil {
		return err
	}

	return p.Run()
}
