// Package worker implements the supervisor loop: one process leases,
// executes, and reports on jobs until asked to shut down (spec.md §4.6).
package worker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/queuectl/queuectl/internal/shellsplit"
)

// JobTimeout is the hard wall-clock limit on a single command execution
// (spec.md §4.6.1).
const JobTimeout = 5 * time.Minute

// stderrExcerptLimit bounds the length of captured stderr folded into a
// failure's error_message.
const stderrExcerptLimit = 2048

// ExecResult is the outcome of running a job's command.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
}

// Succeeded reports whether the command exited zero and did not time out.
func (r ExecResult) Succeeded() bool {
	return !r.TimedOut && r.ExitCode == 0
}

// ErrorMessage builds the bounded diagnostic recorded on a failed job
// (spec.md §4.6.1: "an error_message that includes the failure kind and a
// bounded-length excerpt of captured stderr").
func (r ExecResult) ErrorMessage() string {
	if r.TimedOut {
		return fmt.Sprintf("command timed out after %s", JobTimeout)
	}
	excerpt := r.Stderr
	if len(excerpt) > stderrExcerptLimit {
		excerpt = excerpt[:stderrExcerptLimit] + "...(truncated)"
	}
	return fmt.Sprintf("exit code %d: %s", r.ExitCode, excerpt)
}

// Execute tokenizes and runs command as a subprocess, never through a
// shell, capturing stdout/stderr into buffers rather than inheriting the
// parent's stdio, and enforcing JobTimeout via a sub-context.
func Execute(ctx context.Context, command string) (ExecResult, error) {
	args, err := shellsplit.Split(command)
	if err != nil {
		return ExecResult{}, fmt.Errorf("tokenize command: %w", err)
	}
	if len(args) == 0 {
		return ExecResult{}, fmt.Errorf("command has no tokens")
	}

	runCtx, cancel := context.WithTimeout(ctx, JobTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return ExecResult{TimedOut: true, Stdout: stdout.String(), Stderr: stderr.String()}, nil
	}

	if runErr == nil {
		return ExecResult{ExitCode: 0, Stdout: stdout.String(), Stderr: stderr.String()}, nil
	}

	var exitErr *exec.ExitError
	if ok := errorsAsExitError(runErr, &exitErr); ok {
		return ExecResult{ExitCode: exitErr.ExitCode(), Stdout: stdout.String(), Stderr: stderr.String()}, nil
	}

	// Spawn failure (executable not found, permission denied, ...): no
	// exit code was ever assigned by the OS. Report a distinct, descriptive
	// exit code with the spawn error in stderr, matching shell convention
	// for "command not found".
	return ExecResult{
		ExitCode: 127,
		Stdout:   stdout.String(),
		Stderr:   runErr.Error(),
	}, nil
}

func errorsAsExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}
