package backlog

import (
	"time"

	"github.com/lbliii/sunwell/internal/event"
	"github.com/lbliii/sunwell/internal/goal"
)

// EventStore wraps a Store and publishes events on a bus whenever a
// mutation commits. The bus is the in-process wake signal: workers
// subscribe to "backlog.ready_changed" instead of polling blind.
type EventStore struct {
	s   *Store
	bus *event.Bus
}

// NewEventStore creates an EventStore publishing on the given bus.
func NewEventStore(s *Store, bus *event.Bus) *EventStore {
	return &EventStore{s: s, bus: bus}
}

// Store returns the underlying store for read-only queries.
func (es *EventStore) Store() *Store {
	return es.s
}

// Add inserts a goal and publishes GoalsAddedEvent.
func (es *EventStore) Add(g *goal.Goal) error {
	if err := es.s.Add(g); err != nil {
		return err
	}
	es.bus.Publish(event.NewGoalsAddedEvent([]string{g.ID}))
	es.publishReady()
	return nil
}

// BatchAdd inserts a batch atomically and publishes GoalsAddedEvent.
func (es *EventStore) BatchAdd(batch []*goal.Goal) error {
	if err := es.s.BatchAdd(batch); err != nil {
		return err
	}
	ids := make([]string, 0, len(batch))
	for _, g := range batch {
		ids = append(ids, g.ID)
	}
	es.bus.Publish(event.NewGoalsAddedEvent(ids))
	es.publishReady()
	return nil
}

// Remove deletes a goal and publishes GoalRemovedEvent.
func (es *EventStore) Remove(goalID string) error {
	if err := es.s.Remove(goalID); err != nil {
		return err
	}
	es.bus.Publish(event.NewGoalRemovedEvent(goalID))
	es.publishReady()
	return nil
}

// Reorder rewrites the pending ordering and publishes
// BacklogReorderedEvent.
func (es *EventStore) Reorder(ids []string) error {
	if err := es.s.Reorder(ids); err != nil {
		return err
	}
	es.bus.Publish(event.NewBacklogReorderedEvent())
	return nil
}

// Skip abandons a goal and publishes the full skip cascade.
func (es *EventStore) Skip(goalID string) ([]string, error) {
	skipped, err := es.s.Skip(goalID)
	if err != nil {
		return nil, err
	}
	es.bus.Publish(event.NewGoalsSkippedEvent(skipped))
	es.publishReady()
	return skipped, nil
}

// Retry returns a failed goal to pending and publishes GoalRetriedEvent.
func (es *EventStore) Retry(goalID string) error {
	if err := es.s.Retry(goalID); err != nil {
		return err
	}
	es.bus.Publish(event.NewGoalRetriedEvent(goalID))
	es.publishReady()
	return nil
}

// Reload swaps in an externally persisted goal set and wakes workers
// if the ready set changed.
func (es *EventStore) Reload(goals []*goal.Goal) error {
	if err := es.s.Reload(goals); err != nil {
		return err
	}
	es.publishReady()
	return nil
}

// Claim hands out a lease and publishes GoalClaimedEvent.
func (es *EventStore) Claim(workerID string, ttl time.Duration) (*goal.Goal, error) {
	g, err := es.s.Claim(workerID, ttl)
	if err != nil || g == nil {
		return g, err
	}
	es.bus.Publish(event.NewGoalClaimedEvent(g.ID, workerID))
	return g, nil
}

// Release records an outcome and publishes GoalReleasedEvent.
func (es *EventStore) Release(goalID, workerID string, outcome goal.Outcome, failureContext string) error {
	if err := es.s.Release(goalID, workerID, outcome, failureContext); err != nil {
		return err
	}
	es.bus.Publish(event.NewGoalReleasedEvent(goalID, workerID, outcome.String()))
	es.publishReady()
	return nil
}

// ReclaimExpired resets lapsed leases and publishes LeaseReclaimedEvent
// when anything was reclaimed.
func (es *EventStore) ReclaimExpired(now time.Time) []string {
	reclaimed := es.s.ReclaimExpired(now)
	if len(reclaimed) > 0 {
		es.bus.Publish(event.NewLeaseReclaimedEvent(reclaimed))
		es.publishReady()
	}
	return reclaimed
}

func (es *EventStore) publishReady() {
	es.bus.Publish(event.NewReadyChangedEvent(es.s.Status().Ready))
}
