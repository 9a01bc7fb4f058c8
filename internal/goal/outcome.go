package goal

// Outcome is a worker's report on a released goal.
type Outcome string

const (
	// OutcomeSuccess indicates the goal completed successfully.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure indicates the goal failed. Dependents become
	// blocked until the goal is retried.
	OutcomeFailure Outcome = "failure"

	// OutcomeSkip indicates the worker abandoned the goal. Skip
	// propagates to dependents with no alternative satisfied path.
	OutcomeSkip Outcome = "skip"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// IsValid returns true if this is a recognized outcome value.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailure, OutcomeSkip:
		return true
	default:
		return false
	}
}

// Status returns the goal status a released goal transitions to.
func (o Outcome) Status() Status {
	switch o {
	case OutcomeSuccess:
		return StatusCompleted
	case OutcomeFailure:
		return StatusFailed
	default:
		return StatusSkipped
	}
}
