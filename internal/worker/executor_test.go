package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lbliii/sunwell/internal/goal"
)

func sample() *goal.Goal {
	return &goal.Goal{ID: "t-1", Title: "Sample task", Type: goal.TypeTask, Priority: 0.5}
}

func TestCommandExecutorSuccess(t *testing.T) {
	e := &CommandExecutor{Command: "cat >/dev/null; echo done"}
	res, err := e.Execute(context.Background(), sample())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v, want success", res)
	}
	if res.Summary != "done" {
		t.Errorf("summary = %q, want %q", res.Summary, "done")
	}
	if res.Duration <= 0 {
		t.Errorf("duration = %v, want > 0", res.Duration)
	}
}

func TestCommandExecutorReceivesGoalJSON(t *testing.T) {
	// The command sees the claimed goal as JSON on stdin.
	e := &CommandExecutor{Command: `grep -q '"id":"t-1"'`}
	res, err := e.Execute(context.Background(), sample())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("goal JSON not found on stdin: %+v", res)
	}
}

func TestCommandExecutorFailure(t *testing.T) {
	e := &CommandExecutor{Command: "echo broken; exit 3"}
	res, err := e.Execute(context.Background(), sample())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("want failure result")
	}
	if res.FailureReason == "" {
		t.Error("failure reason empty")
	}
	if !strings.Contains(res.Summary, "broken") {
		t.Errorf("summary = %q, want captured output", res.Summary)
	}
}

func TestCommandExecutorTimeout(t *testing.T) {
	e := &CommandExecutor{Command: "sleep 5", Timeout: 50 * time.Millisecond}
	res, err := e.Execute(context.Background(), sample())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("timed-out command reported success")
	}
	if !strings.Contains(res.FailureReason, "aborted") {
		t.Errorf("failure reason = %q, want abort", res.FailureReason)
	}
}

func TestCommandExecutorNoCommand(t *testing.T) {
	e := &CommandExecutor{}
	if _, err := e.Execute(context.Background(), sample()); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestTailBounds(t *testing.T) {
	long := strings.Repeat("x", 10) + "END"
	if got := tail(long, 5); got != "xxEND" {
		t.Errorf("tail = %q, want trailing bytes", got)
	}
	if got := tail("  short  ", 100); got != "short" {
		t.Errorf("tail = %q, want trimmed input", got)
	}
}
