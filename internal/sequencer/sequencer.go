// Package sequencer executes a job's ordered command sequence under a
// given environment, with fail-fast semantics: the first command that
// exits non-zero aborts the sequence, and no later command ever runs.
package sequencer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/vk/jobgate/internal/ctxlog"
	"github.com/vk/jobgate/internal/envscope"
)

// CommandFailure describes the first command in a sequence that failed.
type CommandFailure struct {
	// Index is the zero-based position of the command in the sequence.
	Index int

	// Command is the command string as declared.
	Command string

	// ExitCode is the command's exit status, or -1 when the command never
	// produced one (start failure, kill by signal or timeout).
	ExitCode int

	// Output is the combined stdout/stderr captured before the failure.
	Output string

	// Err is the underlying execution error.
	Err error
}

// Error implements the error interface.
func (f *CommandFailure) Error() string {
	return fmt.Sprintf("command %d (%q) failed: %v", f.Index, f.Command, f.Err)
}

// Unwrap exposes the underlying execution error.
func (f *CommandFailure) Unwrap() error {
	return f.Err
}

// Sequencer runs command sequences via the shell.
type Sequencer struct {
	// Timeout bounds each individual command. Zero disables the bound.
	Timeout time.Duration
}

// New creates a Sequencer with the given per-command timeout.
func New(timeout time.Duration) *Sequencer {
	return &Sequencer{Timeout: timeout}
}

// Run executes commands strictly in order under env, stopping at the first
// failure. The environment mapping is the complete environment for every
// command; nothing is inherited from the process beyond what the caller
// put into env. On failure the returned error is a *CommandFailure.
func (s *Sequencer) Run(ctx context.Context, commands []string, env map[string]string) error {
	logger := ctxlog.FromContext(ctx)
	environ := envscope.ToEnviron(env)

	for i, command := range commands {
		logger.Info("▶️ Running command", "index", i, "command", command)

		output, err := s.runOne(ctx, command, environ)
		if len(output) > 0 {
			logger.Debug("Command output.", "index", i, "output", output)
		}
		if err != nil {
			failure := &CommandFailure{
				Index:    i,
				Command:  command,
				ExitCode: exitCode(err),
				Output:   output,
				Err:      err,
			}
			logger.Error("Command failed, aborting sequence.", "index", i, "exit_code", failure.ExitCode, "error", err)
			return failure
		}

		logger.Info("✅ Command finished", "index", i)
	}
	return nil
}

// runOne executes a single command in a shell and returns its combined
// output.
func (s *Sequencer) runOne(ctx context.Context, command string, environ []string) (string, error) {
	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Env = environ

	// Run the command in its own process group so that cancellation kills
	// the shell and everything it spawned (negative PID = the whole
	// group). Killing only the shell would leave forked children alive,
	// still holding the output pipe, and Run would block until they exit
	// on their own.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	// Bound the pipe drain in case a descendant escaped the group into a
	// new session.
	cmd.WaitDelay = time.Second

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err != nil && runCtx.Err() != nil {
		// Prefer the cause over the raw "signal: killed" from the kill.
		err = fmt.Errorf("%w: %v", runCtx.Err(), err)
	}
	return out.String(), err
}

// exitCode extracts the process exit status from an execution error, or -1
// when there is none.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
