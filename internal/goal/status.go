package goal

// Status represents the lifecycle state of a goal.
type Status string

const (
	// StatusPending indicates the goal is waiting for its dependencies.
	StatusPending Status = "pending"

	// StatusReady indicates all readiness conditions hold and the goal
	// is eligible for claiming.
	StatusReady Status = "ready"

	// StatusInProgress indicates a worker holds the goal's lease.
	StatusInProgress Status = "in_progress"

	// StatusCompleted indicates the goal finished successfully. Goals
	// never regress from completed.
	StatusCompleted Status = "completed"

	// StatusFailed indicates the worker reported failure. A failed goal
	// may be retried back to pending.
	StatusFailed Status = "failed"

	// StatusBlocked indicates a dependency failed. Blocked goals return
	// to pending when the failed dependency is retried.
	StatusBlocked Status = "blocked"

	// StatusSkipped indicates the goal was abandoned, either explicitly
	// or because an ancestor or dependency was skipped.
	StatusSkipped Status = "skipped"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if this is a recognized status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReady, StatusInProgress, StatusCompleted,
		StatusFailed, StatusBlocked, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if this status represents a final state.
// Failed is not terminal: it can be retried back to pending.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// IsClaimable returns true if the goal may be handed to a worker.
func (s Status) IsClaimable() bool {
	return s == StatusReady
}

// transitions is the legal status transition table. Statuses are
// monotonic forward except pending↔ready (resolver re-evaluation),
// in_progress→pending (lease reclaim), blocked→pending (blocking
// dependency retried), and failed→pending (explicit user retry).
var transitions = map[Status][]Status{
	StatusPending:    {StatusReady, StatusBlocked, StatusSkipped},
	StatusReady:      {StatusPending, StatusInProgress, StatusSkipped},
	StatusInProgress: {StatusCompleted, StatusFailed, StatusPending, StatusSkipped},
	StatusBlocked:    {StatusPending, StatusSkipped},
	StatusFailed:     {StatusPending},
	StatusCompleted:  nil,
	StatusSkipped:    nil,
}

// CanTransition returns true if moving from s to the given status is
// legal. Attempting an illegal transition must surface an
// InvalidTransition error to the caller, never a silent mutation.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
