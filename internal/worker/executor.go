// Package worker drives goal execution. Runners claim ready goals,
// hand them to an Executor, and report outcomes back through the
// scheduler. The execution engine itself stays external: the default
// executor shells out to a configured command with the goal as JSON on
// stdin.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/lbliii/sunwell/internal/goal"
)

// Executor runs a claimed goal to completion and reports the result.
// A non-nil error means execution could not be attempted at all; a
// failed attempt is reported through Result.Success instead.
type Executor interface {
	Execute(ctx context.Context, g *goal.Goal) (*goal.Result, error)
}

// CommandExecutor runs goals by invoking a shell command. The claimed
// goal is written to the command's stdin as JSON; exit status zero
// reports success, anything else failure. Command output is captured
// into the result summary.
type CommandExecutor struct {
	// Command is the shell command line to invoke per goal.
	Command string

	// Timeout bounds a single execution; zero means no bound beyond
	// the caller's context.
	Timeout time.Duration
}

// maxSummaryBytes bounds how much command output is kept in the result.
const maxSummaryBytes = 4096

// Execute runs the configured command for the goal.
func (e *CommandExecutor) Execute(ctx context.Context, g *goal.Goal) (*goal.Result, error) {
	if e.Command == "" {
		return nil, fmt.Errorf("no executor command configured")
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal goal: %w", err)
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", e.Command)
	cmd.Stdin = bytes.NewReader(payload)

	start := time.Now()
	output, runErr := cmd.CombinedOutput()
	elapsed := time.Since(start)

	summary := tail(string(output), maxSummaryBytes)

	if runErr != nil {
		reason := runErr.Error()
		if ctx.Err() != nil {
			reason = fmt.Sprintf("execution aborted: %v", ctx.Err())
		}
		return &goal.Result{
			Success:       false,
			FailureReason: reason,
			Summary:       summary,
			Duration:      elapsed,
		}, nil
	}

	return &goal.Result{
		Success:  true,
		Summary:  summary,
		Duration: elapsed,
	}, nil
}

// tail returns at most n trailing bytes of s, trimmed of surrounding
// whitespace.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
