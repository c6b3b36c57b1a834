// ABOUTME: Subprocess spawns a command, wiring stdout/stderr through two
// ABOUTME: Streamed files with sequential indices, per §4.2's "Subprocess loader".

package file

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/creack/pty"

	"github.com/colinmarc/sp/internal/eventbus"
)

// Subprocess holds the two Streamed files a spawned command's output
// is ingested into, plus the process itself.
type Subprocess struct {
	Stdout *Streamed
	Stderr *Streamed

	cmd    *exec.Cmd
	master *os.File // pty master wired to the child's stdout/stdin
	stderr io.ReadCloser
}

// Spawn starts cmd, attaching its stdout to one end of a pty (so
// programs that check isatty(stdout) behave as they would under an
// interactive pager) and its stderr to a plain pipe. Output is read
// into Streamed files at indices stdoutIndex and stdoutIndex+1; call
// RunAttached to begin ingestion and wait for exit. title names the
// stdout file; an empty title falls back to cmd.Path.
func Spawn(cmd *exec.Cmd, stdoutIndex int, title string) (*Subprocess, error) {
	if title == "" {
		title = cmd.Path
	}

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	master, err := pty.Start(cmd)
	if err != nil {
		return nil, err
	}

	return &Subprocess{
		Stdout: NewStreamed(stdoutIndex, title),
		Stderr: NewStreamed(stdoutIndex+1, title+" (stderr)"),
		cmd:    cmd,
		master: master,
		stderr: stderrPipe,
	}, nil
}

// RunAttached ingests stdout/stderr into bus and waits for the
// process to exit, setting the stdout file's info to "rc: N" or
// "killed!" and emitting RefreshOverlay, per §4.2's "Subprocess
// loader".
func (s *Subprocess) RunAttached(bus *eventbus.EventBus, stdoutFlag, stderrFlag *atomic.Bool) {
	done := make(chan struct{})
	go func() {
		s.Stdout.Run(s.master, bus, stdoutFlag)
		close(done)
	}()
	go s.Stderr.Run(s.stderr, bus, stderrFlag)

	err := s.cmd.Wait()
	<-done

	var info string
	switch exitErr, ok := err.(*exec.ExitError); {
	case err == nil:
		info = "rc: 0"
	case ok && exitErr.ProcessState.Exited():
		info = fmt.Sprintf("rc: %d", exitErr.ExitCode())
	default:
		info = "killed!"
	}
	s.Stdout.setInfo(info)
	bus.Send(eventbus.RefreshOverlay{FileIndex: s.Stdout.Index()})
}

// Close terminates the subprocess and releases its pty master.
func (s *Subprocess) Close() error {
	if s.master != nil {
		s.master.Close()
	}
	if s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}
