// Package errors provides centralized error definitions for the
// backlog engine. It defines the scheduler error taxonomy as sentinel
// errors, semantic error types carrying structured context, and
// re-exports the standard library helpers so callers can import only
// this package for all error handling.
//
// The taxonomy:
//
//   - ErrCyclicDependency / CycleError: a mutation would create a
//     dependency cycle; the store is left unchanged.
//   - ErrInvalidTransition / TransitionError: an illegal status
//     change was attempted; the store is left unchanged.
//   - ErrGoalNotFound / NotFoundError: a reference to a nonexistent
//     goal ID.
//   - ErrDuplicateGoal: an add for an ID already in the store.
//   - ErrLeaseExpired: a release arrived after the lease was already
//     reclaimed. Callers treat this as a no-op to tolerate slow
//     workers, not as a failure.
//
// All of these are local, synchronous errors returned to the caller of
// the mutating operation; none are retried internally.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Backlog sentinel errors.
var (
	// ErrGoalNotFound indicates a reference to a goal ID not in the store.
	ErrGoalNotFound = New("goal not found")
	// ErrDuplicateGoal indicates an add for an ID already in the store.
	ErrDuplicateGoal = New("goal already exists")
	// ErrCyclicDependency indicates a mutation that would create a
	// dependency cycle.
	ErrCyclicDependency = New("cyclic dependency")
	// ErrInvalidTransition indicates an illegal status transition.
	ErrInvalidTransition = New("invalid status transition")
	// ErrLeaseExpired indicates a release that arrived after the lease
	// was reclaimed. Treated as a no-op by the scheduler.
	ErrLeaseExpired = New("lease already expired")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// CycleError reports a rejected mutation that would have introduced a
// dependency cycle. Cycle holds the offending goal IDs in edge order,
// with the first ID repeated at the end.
type CycleError struct {
	Cycle []string
}

// Error returns the formatted error message.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Cycle, " -> "))
}

// Is reports whether this error matches ErrCyclicDependency.
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicDependency
}

// TransitionError reports a rejected status change.
type TransitionError struct {
	GoalID string
	From   string
	To     string
}

// Error returns the formatted error message.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition for goal %s: %s -> %s", e.GoalID, e.From, e.To)
}

// Is reports whether this error matches ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NotFoundError reports a reference to a nonexistent goal, naming the
// field that carried the dangling reference (depends_on,
// parent_goal_id, claim, release, ...).
type NotFoundError struct {
	GoalID string
	Field  string
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("goal not found: %s (referenced by %s)", e.GoalID, e.Field)
	}
	return fmt.Sprintf("goal not found: %s", e.GoalID)
}

// Is reports whether this error matches ErrGoalNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrGoalNotFound
}

// ValidationError reports invalid input or state for a mutation. The
// store is left unchanged when one is returned.
type ValidationError struct {
	Message string
	Cause   error
}

// NewValidationError creates a ValidationError wrapping an optional cause.
func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{Message: message, Cause: cause}
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation: %s", e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	return e.Cause != nil && errors.Is(e.Cause, target)
}
