// ABOUTME: Tests for sp's command-line parsing: spec ordering and grammar.

package main

import "testing"

func TestParseFlagsPreservesCommandLineOrder(t *testing.T) {
	t.Parallel()
	args, err := parseFlags([]string{"a.txt", "--fd", "3=three", "b.txt", "--error-fd", "4"})
	if err != nil {
		t.Fatal(err)
	}
	want := []spec{
		{kind: specFile, value: "a.txt"},
		{kind: specFd, value: "3=three"},
		{kind: specFile, value: "b.txt"},
		{kind: specErrorFd, value: "4"},
	}
	if len(args.specs) != len(want) {
		t.Fatalf("specs = %+v, want %+v", args.specs, want)
	}
	for i, s := range want {
		if args.specs[i] != s {
			t.Errorf("specs[%d] = %+v, want %+v", i, args.specs[i], s)
		}
	}
}

func TestParseFlagsCommandShorthand(t *testing.T) {
	t.Parallel()
	args, err := parseFlags([]string{"-c", "echo hi"})
	if err != nil {
		t.Fatal(err)
	}
	if len(args.specs) != 1 || args.specs[0] != (spec{kind: specCommand, value: "echo hi"}) {
		t.Fatalf("specs = %+v", args.specs)
	}
}

func TestParseFlagsModeFlags(t *testing.T) {
	t.Parallel()
	args, err := parseFlags([]string{"--fullscreen", "--delayed", "5", "file.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if !args.fullscreen {
		t.Error("expected fullscreen = true")
	}
	if args.delayed != "5" {
		t.Errorf("delayed = %q, want \"5\"", args.delayed)
	}
	if len(args.specs) != 1 || args.specs[0].value != "file.txt" {
		t.Fatalf("specs = %+v", args.specs)
	}
}

func TestParseFlagsEqualsForm(t *testing.T) {
	t.Parallel()
	args, err := parseFlags([]string{"--fd=7=seven", "--progress-fd=9"})
	if err != nil {
		t.Fatal(err)
	}
	if len(args.specs) != 1 || args.specs[0].value != "7=seven" {
		t.Fatalf("specs = %+v", args.specs)
	}
	if args.progressFd != "9" {
		t.Errorf("progressFd = %q, want \"9\"", args.progressFd)
	}
}

func TestParseFlagsInvalidFd(t *testing.T) {
	t.Parallel()
	if _, err := parseFlags([]string{"--fd", "notanumber"}); err == nil {
		t.Fatal("expected an error for a non-numeric --fd")
	}
}

func TestParseFlagsUnrecognizedFlag(t *testing.T) {
	t.Parallel()
	if _, err := parseFlags([]string{"--bogus"}); err == nil {
		t.Fatal("expected an error for an unrecognized flag")
	}
}

func TestParseFlagsMissingValue(t *testing.T) {
	t.Parallel()
	if _, err := parseFlags([]string{"--fd"}); err == nil {
		t.Fatal("expected an error when --fd has no value")
	}
}

func TestParseFdTitleDefaultsTitleToSpec(t *testing.T) {
	t.Parallel()
	fd, title, err := parseFdTitle("3")
	if err != nil {
		t.Fatal(err)
	}
	if fd != 3 || title != "3" {
		t.Errorf("got (%d, %q), want (3, \"3\")", fd, title)
	}
}

func TestParseFdTitleExplicit(t *testing.T) {
	t.Parallel()
	fd, title, err := parseFdTitle("3=errors")
	if err != nil {
		t.Fatal(err)
	}
	if fd != 3 || title != "errors" {
		t.Errorf("got (%d, %q), want (3, \"errors\")", fd, title)
	}
}
