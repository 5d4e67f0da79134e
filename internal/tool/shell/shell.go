// Package shell executes model-requested commands on the local machine.
// Results are always text: failures are encoded into the output rather
// than returned as errors, so the model can react to them.
package shell

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// NoOutput is returned when a command produces nothing on either stream,
// so an empty string is never mistaken for success or failure.
const NoOutput = "(no output)"

// DefaultTimeout bounds a single command execution.
const DefaultTimeout = 10 * time.Minute

// Executor runs shell commands and captures combined stdout/stderr.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor. A non-positive timeout selects
// DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Run executes command via the shell and returns its combined output as
// text. Exit failures and timeouts are appended to the captured output
// instead of surfacing as errors.
func (e *Executor) Run(ctx context.Context, command string) string {
	if strings.TrimSpace(command) == "" {
		return NoOutput
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()

	text := strings.TrimRight(string(out), "\n")
	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		text = appendNote(text, fmt.Sprintf("command timed out after %s", e.timeout))
	case err != nil:
		text = appendNote(text, fmt.Sprintf("command failed: %v", err))
	}

	if text == "" {
		return NoOutput
	}
	return text
}

func appendNote(text, note string) string {
	if text == "" {
		return note
	}
	return text + "\n" + note
}
