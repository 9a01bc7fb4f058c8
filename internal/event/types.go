package event

import "time"

// Event is the interface all events implement.
type Event interface {
	// EventType returns the event's identifier, in "category.action"
	// form (e.g. "goal.claimed", "backlog.reordered").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides the common fields; embed it in concrete events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// GoalsAddedEvent is emitted after goals are committed to the store,
// whether from a single add or a planner batch.
type GoalsAddedEvent struct {
	baseEvent
	GoalIDs []string
}

// NewGoalsAddedEvent creates a GoalsAddedEvent.
func NewGoalsAddedEvent(goalIDs []string) GoalsAddedEvent {
	return GoalsAddedEvent{baseEvent: newBaseEvent("goal.added"), GoalIDs: goalIDs}
}

// GoalClaimedEvent is emitted when a worker takes a lease on a goal.
type GoalClaimedEvent struct {
	baseEvent
	GoalID   string
	WorkerID string
}

// NewGoalClaimedEvent creates a GoalClaimedEvent.
func NewGoalClaimedEvent(goalID, workerID string) GoalClaimedEvent {
	return GoalClaimedEvent{baseEvent: newBaseEvent("goal.claimed"), GoalID: goalID, WorkerID: workerID}
}

// GoalReleasedEvent is emitted when a worker reports an outcome.
type GoalReleasedEvent struct {
	baseEvent
	GoalID   string
	WorkerID string
	Outcome  string
}

// NewGoalReleasedEvent creates a GoalReleasedEvent.
func NewGoalReleasedEvent(goalID, workerID, outcome string) GoalReleasedEvent {
	return GoalReleasedEvent{
		baseEvent: newBaseEvent("goal.released"),
		GoalID:    goalID, WorkerID: workerID, Outcome: outcome,
	}
}

// GoalsSkippedEvent is emitted with the full batch of goals a skip
// cascaded to, so skips surface as visible status updates.
type GoalsSkippedEvent struct {
	baseEvent
	GoalIDs []string
}

// NewGoalsSkippedEvent creates a GoalsSkippedEvent.
func NewGoalsSkippedEvent(goalIDs []string) GoalsSkippedEvent {
	return GoalsSkippedEvent{baseEvent: newBaseEvent("goal.skipped"), GoalIDs: goalIDs}
}

// GoalRemovedEvent is emitted after an explicit removal.
type GoalRemovedEvent struct {
	baseEvent
	GoalID string
}

// NewGoalRemovedEvent creates a GoalRemovedEvent.
func NewGoalRemovedEvent(goalID string) GoalRemovedEvent {
	return GoalRemovedEvent{baseEvent: newBaseEvent("goal.removed"), GoalID: goalID}
}

// GoalRetriedEvent is emitted when a failed goal is returned to pending.
type GoalRetriedEvent struct {
	baseEvent
	GoalID string
}

// NewGoalRetriedEvent creates a GoalRetriedEvent.
func NewGoalRetriedEvent(goalID string) GoalRetriedEvent {
	return GoalRetriedEvent{baseEvent: newBaseEvent("goal.retried"), GoalID: goalID}
}

// LeaseReclaimedEvent is emitted when expired leases are reset to
// pending by the background reclaim pass.
type LeaseReclaimedEvent struct {
	baseEvent
	GoalIDs []string
}

// NewLeaseReclaimedEvent creates a LeaseReclaimedEvent.
func NewLeaseReclaimedEvent(goalIDs []string) LeaseReclaimedEvent {
	return LeaseReclaimedEvent{baseEvent: newBaseEvent("lease.reclaimed"), GoalIDs: goalIDs}
}

// BacklogReorderedEvent is emitted after the pending subset is reordered.
type BacklogReorderedEvent struct {
	baseEvent
}

// NewBacklogReorderedEvent creates a BacklogReorderedEvent.
func NewBacklogReorderedEvent() BacklogReorderedEvent {
	return BacklogReorderedEvent{baseEvent: newBaseEvent("backlog.reordered")}
}

// TypeReadyChanged identifies ReadyChangedEvent publications; workers
// subscribe to it by name.
const TypeReadyChanged = "backlog.ready_changed"

// ReadyChangedEvent is emitted whenever a mutation may have changed the
// ready set. Workers use it as the wake signal between claim attempts.
type ReadyChangedEvent struct {
	baseEvent
	Ready int
}

// NewReadyChangedEvent creates a ReadyChangedEvent.
func NewReadyChangedEvent(ready int) ReadyChangedEvent {
	return ReadyChangedEvent{baseEvent: newBaseEvent(TypeReadyChanged), Ready: ready}
}
