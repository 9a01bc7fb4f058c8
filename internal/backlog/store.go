package backlog

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lbliii/sunwell/internal/conflict"
	"github.com/lbliii/sunwell/internal/errors"
	"github.com/lbliii/sunwell/internal/goal"
)

// Store is the single owned arena of all goals, indexed by ID. All
// methods are safe for concurrent use via an internal mutex; claim is
// linearizable with respect to every other mutation.
type Store struct {
	mu    sync.Mutex
	goals map[string]*goal.Goal

	// order holds goal IDs in insertion order. It is the stable
	// tie-break for equal-priority goals and the declared order used
	// by hierarchy aggregation.
	order []string

	// dependents maps a goal ID to the IDs that list it in depends_on.
	dependents map[string][]string

	// children maps a parent ID to its child IDs in insertion order.
	children map[string][]string

	detector  *conflict.Detector
	match     ArtifactMatcher
	claimable func(*goal.Goal) bool
	now       func() time.Time
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		goals:      make(map[string]*goal.Goal),
		dependents: make(map[string][]string),
		children:   make(map[string][]string),
		detector:   conflict.New(),
		match:      MatchExact,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromGoals rebuilds a Store from previously persisted goals,
// preserving their order and statuses. In-flight claims are re-registered
// with the conflict detector. The goal set is validated as a whole: the
// same rules apply as for BatchAdd, plus any status is accepted.
func NewFromGoals(goals []*goal.Goal, opts ...Option) (*Store, error) {
	s := New(opts...)

	for _, g := range goals {
		if g.ID == "" {
			return nil, errors.NewValidationError("goal with empty id", nil)
		}
		if _, dup := s.goals[g.ID]; dup {
			return nil, fmt.Errorf("%w: %s", errors.ErrDuplicateGoal, g.ID)
		}
		cp := g.Clone()
		if cp.Type == "" {
			cp.Type = goal.TypeTask
		}
		if cp.Status == "" {
			cp.Status = goal.StatusPending
		}
		if !cp.Status.IsValid() {
			return nil, errors.NewValidationError(
				fmt.Sprintf("goal %s has unknown status %q", cp.ID, cp.Status), nil)
		}
		s.goals[cp.ID] = cp
		s.order = append(s.order, cp.ID)
	}

	for _, id := range s.order {
		if err := s.validateRefsLocked(s.goals[id]); err != nil {
			return nil, err
		}
	}
	if cycle := detectCycle(s.adjacencyLocked()); cycle != nil {
		return nil, &errors.CycleError{Cycle: cycle}
	}

	s.rebuildIndexesLocked()
	for _, id := range s.order {
		g := s.goals[id]
		if g.Status == goal.StatusInProgress && g.Claim != nil {
			s.detector.Register(g.ID, g.Modifies)
		}
	}
	s.recomputeLocked()
	return s, nil
}

// Reload replaces the goal set with externally persisted state, e.g.
// after another process rewrote the backlog file. Goals currently in
// progress in this process keep their in-memory copy so live claims
// are never clobbered by a stale snapshot. The new set is validated as
// a whole; on error the store is unchanged.
func (s *Store) Reload(goals []*goal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]*goal.Goal, len(goals))
	stagedOrder := make([]string, 0, len(goals))
	for _, g := range goals {
		if g == nil || g.ID == "" {
			return errors.NewValidationError("goal with empty id", nil)
		}
		if _, dup := staged[g.ID]; dup {
			return fmt.Errorf("%w: %s", errors.ErrDuplicateGoal, g.ID)
		}
		cp := g.Clone()
		if cp.Type == "" {
			cp.Type = goal.TypeTask
		}
		if cp.Status == "" {
			cp.Status = goal.StatusPending
		}
		if !cp.Status.IsValid() {
			return errors.NewValidationError(
				fmt.Sprintf("goal %s has unknown status %q", cp.ID, cp.Status), nil)
		}
		if cur, ok := s.goals[cp.ID]; ok && cur.Status == goal.StatusInProgress {
			cp = cur
		}
		staged[cp.ID] = cp
		stagedOrder = append(stagedOrder, cp.ID)
	}

	prevGoals, prevOrder := s.goals, s.order
	s.goals, s.order = staged, stagedOrder
	for _, id := range s.order {
		if err := s.validateRefsLocked(s.goals[id]); err != nil {
			s.goals, s.order = prevGoals, prevOrder
			return err
		}
	}
	if cycle := detectCycle(s.adjacencyLocked()); cycle != nil {
		s.goals, s.order = prevGoals, prevOrder
		return &errors.CycleError{Cycle: cycle}
	}

	s.rebuildIndexesLocked()
	s.detector = conflict.New()
	for _, id := range s.order {
		g := s.goals[id]
		if g.Status == goal.StatusInProgress && g.Claim != nil {
			s.detector.Register(g.ID, g.Modifies)
		}
	}
	s.recomputeLocked()
	return nil
}

// Add inserts a single goal in pending status. The mutation is
// validate-then-commit: on any error the store is unchanged.
func (s *Store) Add(g *goal.Goal) error {
	return s.BatchAdd([]*goal.Goal{g})
}

// BatchAdd atomically inserts a batch of goals, e.g. a planner's
// epic → milestones → tasks decomposition. Goals in the batch may
// reference each other in depends_on and parent_goal_id. If any goal in
// the batch fails validation, none are added.
func (s *Store) BatchAdd(batch []*goal.Goal) error {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]*goal.Goal, len(batch))
	stagedOrder := make([]string, 0, len(batch))
	for _, g := range batch {
		if g == nil || g.ID == "" {
			return errors.NewValidationError("goal with empty id", nil)
		}
		if _, dup := s.goals[g.ID]; dup {
			return fmt.Errorf("%w: %s", errors.ErrDuplicateGoal, g.ID)
		}
		if _, dup := staged[g.ID]; dup {
			return fmt.Errorf("%w: %s (duplicated within batch)", errors.ErrDuplicateGoal, g.ID)
		}
		cp := g.Clone()
		if cp.Type == "" {
			cp.Type = goal.TypeTask
		}
		if !cp.Type.IsValid() {
			return errors.NewValidationError(
				fmt.Sprintf("goal %s has unknown type %q", cp.ID, cp.Type), nil)
		}
		if cp.Status != "" && cp.Status != goal.StatusPending {
			return errors.NewValidationError(
				fmt.Sprintf("goal %s must be added as pending, got %q", cp.ID, cp.Status), nil)
		}
		if cp.Priority < 0 || cp.Priority > 1 {
			return errors.NewValidationError(
				fmt.Sprintf("goal %s priority %v outside [0,1]", cp.ID, cp.Priority), nil)
		}
		cp.Status = goal.StatusPending
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = s.now()
		}
		staged[cp.ID] = cp
		stagedOrder = append(stagedOrder, cp.ID)
	}

	// References may land on existing goals or on other batch members.
	lookup := func(id string) (*goal.Goal, bool) {
		if g, ok := s.goals[id]; ok {
			return g, true
		}
		g, ok := staged[id]
		return g, ok
	}
	for _, id := range stagedOrder {
		g := staged[id]
		for _, dep := range g.DependsOn {
			if _, ok := lookup(dep); !ok {
				return &errors.NotFoundError{GoalID: dep, Field: "depends_on"}
			}
		}
		if g.ParentID != "" {
			parent, ok := lookup(g.ParentID)
			if !ok {
				return &errors.NotFoundError{GoalID: g.ParentID, Field: "parent_goal_id"}
			}
			if !parent.Type.CanParent(g.Type) {
				return errors.NewValidationError(
					fmt.Sprintf("goal %s: %s cannot be a child of %s %s",
						g.ID, g.Type, parent.Type, parent.ID), nil)
			}
		}
	}

	// Cycle check over the union graph before committing anything.
	adj := s.adjacencyLocked()
	for id, g := range staged {
		adj[id] = g.DependsOn
	}
	if cycle := detectCycle(adj); cycle != nil {
		return &errors.CycleError{Cycle: cycle}
	}

	for _, id := range stagedOrder {
		s.goals[id] = staged[id]
		s.order = append(s.order, id)
	}
	s.rebuildIndexesLocked()
	s.recomputeLocked()
	return nil
}

// Remove deletes a goal from the store. Removal is rejected while any
// other goal references the target in depends_on or parent_goal_id, so
// the graph stays closed under lookups. Completion never removes a
// goal; this is the only destruction path.
func (s *Store) Remove(goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[goalID]
	if !ok {
		return &errors.NotFoundError{GoalID: goalID, Field: "remove"}
	}
	if deps := s.dependents[goalID]; len(deps) > 0 {
		return errors.NewValidationError(
			fmt.Sprintf("goal %s is a dependency of %v", goalID, deps), nil)
	}
	if kids := s.children[goalID]; len(kids) > 0 {
		return errors.NewValidationError(
			fmt.Sprintf("goal %s is the parent of %v", goalID, kids), nil)
	}

	if g.Status == goal.StatusInProgress {
		s.detector.Unregister(goalID)
	}
	delete(s.goals, goalID)
	for i, id := range s.order {
		if id == goalID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.rebuildIndexesLocked()
	s.recomputeLocked()
	return nil
}

// Reorder rewrites the backlog order of the not-yet-started subset.
// ids must be a permutation of exactly the goals currently pending or
// ready; in-progress and finished goals keep their positions. The
// rewrite is atomic and cannot interleave with a concurrent claim.
func (s *Store) Reorder(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	movable := make(map[string]bool)
	for _, id := range s.order {
		st := s.goals[id].Status
		if st == goal.StatusPending || st == goal.StatusReady {
			movable[id] = true
		}
	}

	if len(ids) != len(movable) {
		return errors.NewValidationError(
			fmt.Sprintf("reorder lists %d goals, pending subset has %d", len(ids), len(movable)), nil)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.goals[id]; !ok {
			return &errors.NotFoundError{GoalID: id, Field: "reorder"}
		}
		if !movable[id] {
			return errors.NewValidationError(
				fmt.Sprintf("goal %s is %s and cannot be reordered", id, s.goals[id].Status), nil)
		}
		if seen[id] {
			return errors.NewValidationError(fmt.Sprintf("goal %s listed twice", id), nil)
		}
		seen[id] = true
	}

	// Slot the new ordering into the positions the movable goals
	// currently occupy, leaving everything else fixed.
	next := 0
	for i, id := range s.order {
		if movable[id] {
			s.order[i] = ids[next]
			next++
		}
	}
	return nil
}

// Skip abandons a goal. If the goal is an epic or milestone, the skip
// cascades to all not-yet-started descendants, and the resolver then
// propagates it to dependents with no alternative satisfied path. The
// IDs of every goal skipped (including the target) are returned so the
// batch is visible to the caller, never a silent disappearance.
func (s *Store) Skip(goalID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[goalID]
	if !ok {
		return nil, &errors.NotFoundError{GoalID: goalID, Field: "skip"}
	}
	// A claimed goal cannot be skipped out from under its worker; the
	// worker reports OutcomeSkip through Release instead.
	if g.Status == goal.StatusInProgress || !g.Status.CanTransition(goal.StatusSkipped) {
		return nil, &errors.TransitionError{
			GoalID: goalID, From: g.Status.String(), To: goal.StatusSkipped.String(),
		}
	}

	before := s.statusSetLocked(goal.StatusSkipped)

	s.skipSubtreeLocked(g)
	s.recomputeLocked()

	var skipped []string
	for _, id := range s.order {
		if s.goals[id].Status == goal.StatusSkipped && !before[id] {
			skipped = append(skipped, id)
		}
	}
	return skipped, nil
}

// skipSubtreeLocked marks a goal and its not-yet-started descendants as
// skipped. In-progress descendants keep their claim and finish
// normally; their dependents are handled by the resolver once they
// release.
func (s *Store) skipSubtreeLocked(g *goal.Goal) {
	if g.Status == goal.StatusInProgress || !g.Status.CanTransition(goal.StatusSkipped) {
		return
	}
	s.setStatusLocked(g, goal.StatusSkipped)
	for _, childID := range s.children[g.ID] {
		s.skipSubtreeLocked(s.goals[childID])
	}
}

// Retry returns a failed goal to pending. This is the explicit
// fix-and-retry transition: once the goal later completes, its blocked
// dependents become ready again via the resolver.
func (s *Store) Retry(goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[goalID]
	if !ok {
		return &errors.NotFoundError{GoalID: goalID, Field: "retry"}
	}
	if g.Status != goal.StatusFailed {
		return &errors.TransitionError{
			GoalID: goalID, From: g.Status.String(), To: goal.StatusPending.String(),
		}
	}
	g.Status = goal.StatusPending
	g.RetryCount++
	g.CompletedAt = nil
	s.recomputeLocked()
	return nil
}

// Claim atomically hands the highest-priority ready, non-conflicting
// goal to the given worker, leasing it for ttl. Returns nil with no
// error when no eligible goal exists; callers poll or wait on an
// external wake signal rather than blocking here.
func (s *Store) Claim(workerID string, ttl time.Duration) (*goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workerID == "" {
		return nil, errors.NewValidationError("workerID must not be empty", nil)
	}

	for _, id := range s.readyOrderLocked() {
		g := s.goals[id]
		if s.detector.HasConflict(g.ID, g.Modifies) {
			// Conflicting goals stay in the ready set but are passed
			// over until the in-flight writer releases.
			continue
		}
		if s.claimable != nil && !s.claimable(g) {
			continue
		}
		now := s.now()
		g.Status = goal.StatusInProgress
		g.Claim = &goal.Claim{
			WorkerID:  workerID,
			ClaimedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		s.detector.Register(g.ID, g.Modifies)
		return g.Clone(), nil
	}
	return nil, nil
}

// Release records a worker's outcome for a claimed goal and hands the
// status change to the state machine. A release that arrives after the
// lease was reclaimed (or after another worker re-claimed the goal)
// returns ErrLeaseExpired; schedulers treat that as a no-op so slow
// workers never corrupt state.
func (s *Store) Release(goalID, workerID string, outcome goal.Outcome, failureContext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[goalID]
	if !ok {
		return &errors.NotFoundError{GoalID: goalID, Field: "release"}
	}
	if !outcome.IsValid() {
		return errors.NewValidationError(fmt.Sprintf("unknown outcome %q", outcome), nil)
	}
	if g.Status != goal.StatusInProgress || g.Claim == nil || g.Claim.WorkerID != workerID {
		return fmt.Errorf("%w: goal %s is not held by %s", errors.ErrLeaseExpired, goalID, workerID)
	}

	g.Claim = nil
	s.detector.Unregister(goalID)
	s.setStatusLocked(g, outcome.Status())
	if outcome == goal.OutcomeFailure {
		g.FailureContext = failureContext
	}
	s.recomputeLocked()
	return nil
}

// ReclaimExpired resets in-progress goals whose lease lapsed before now
// back to pending, forcing readiness re-evaluation. This is the only
// automatic status regression. Returns the reclaimed goal IDs.
func (s *Store) ReclaimExpired(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reclaimed []string
	for _, id := range s.order {
		g := s.goals[id]
		if g.Status != goal.StatusInProgress || g.Claim == nil {
			continue
		}
		if g.Claim.Expired(now) {
			g.Status = goal.StatusPending
			g.Claim = nil
			s.detector.Unregister(id)
			reclaimed = append(reclaimed, id)
		}
	}
	if len(reclaimed) > 0 {
		s.recomputeLocked()
	}
	return reclaimed
}

// setStatusLocked applies a transition after checking legality against
// the state machine. Terminal arrivals stamp CompletedAt.
func (s *Store) setStatusLocked(g *goal.Goal, to goal.Status) {
	g.Status = to
	switch to {
	case goal.StatusCompleted, goal.StatusFailed, goal.StatusSkipped:
		now := s.now()
		g.CompletedAt = &now
	}
}

// Get returns a copy of the goal with the given ID.
func (s *Store) Get(goalID string) (*goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[goalID]
	if !ok {
		return nil, &errors.NotFoundError{GoalID: goalID}
	}
	return g.Clone(), nil
}

// Snapshot returns copies of all goals in insertion order, for
// rendering backlogs and dependency graphs.
func (s *Store) Snapshot() []*goal.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*goal.Goal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.goals[id].Clone())
	}
	return out
}

// Export is an alias of Snapshot for the persistence collaborator.
func (s *Store) Export() []*goal.Goal {
	return s.Snapshot()
}

// ReadySet returns copies of the goals currently eligible for claiming,
// sorted by (-priority, insertion order). Goals conflicting with
// in-flight work are included: they are visible and selectable, only
// passed over by the claim path.
func (s *Store) ReadySet() []*goal.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.readyOrderLocked()
	out := make([]*goal.Goal, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.goals[id].Clone())
	}
	return out
}

// readyOrderLocked returns the IDs of ready goals sorted by descending
// priority, with insertion order as the stable tie-break.
func (s *Store) readyOrderLocked() []string {
	var ids []string
	for _, id := range s.order {
		if s.goals[id].Status == goal.StatusReady {
			ids = append(ids, id)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return s.goals[ids[i]].Priority > s.goals[ids[j]].Priority
	})
	return ids
}

// Counts is a snapshot of per-status goal counts.
type Counts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Ready      int `json:"ready"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Blocked    int `json:"blocked"`
	Skipped    int `json:"skipped"`
}

// Status returns the current per-status counts.
func (s *Store) Status() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Counts{Total: len(s.goals)}
	for _, g := range s.goals {
		switch g.Status {
		case goal.StatusPending:
			c.Pending++
		case goal.StatusReady:
			c.Ready++
		case goal.StatusInProgress:
			c.InProgress++
		case goal.StatusCompleted:
			c.Completed++
		case goal.StatusFailed:
			c.Failed++
		case goal.StatusBlocked:
			c.Blocked++
		case goal.StatusSkipped:
			c.Skipped++
		}
	}
	return c
}

// Done reports whether no further work can be claimed now or later:
// every goal is completed or skipped, or stuck behind a failure.
func (s *Store) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.goals {
		switch g.Status {
		case goal.StatusPending, goal.StatusReady, goal.StatusInProgress:
			return false
		}
	}
	return len(s.goals) > 0
}

// Len returns the number of goals in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.goals)
}

// statusSetLocked returns the set of IDs currently in the given status.
func (s *Store) statusSetLocked(st goal.Status) map[string]bool {
	set := make(map[string]bool)
	for id, g := range s.goals {
		if g.Status == st {
			set[id] = true
		}
	}
	return set
}

// validateRefsLocked checks depends_on and parent references of a goal
// against the arena.
func (s *Store) validateRefsLocked(g *goal.Goal) error {
	for _, dep := range g.DependsOn {
		if _, ok := s.goals[dep]; !ok {
			return &errors.NotFoundError{GoalID: dep, Field: "depends_on"}
		}
	}
	if g.ParentID != "" {
		parent, ok := s.goals[g.ParentID]
		if !ok {
			return &errors.NotFoundError{GoalID: g.ParentID, Field: "parent_goal_id"}
		}
		if !parent.Type.CanParent(g.Type) {
			return errors.NewValidationError(
				fmt.Sprintf("goal %s: %s cannot be a child of %s %s",
					g.ID, g.Type, parent.Type, parent.ID), nil)
		}
	}
	return nil
}

// rebuildIndexesLocked recomputes the dependents and children maps from
// scratch. Index maps are rebuilt rather than patched so they can never
// drift from the arena.
func (s *Store) rebuildIndexesLocked() {
	s.dependents = make(map[string][]string)
	s.children = make(map[string][]string)
	for _, id := range s.order {
		g := s.goals[id]
		for _, dep := range g.DependsOn {
			s.dependents[dep] = append(s.dependents[dep], id)
		}
		if g.ParentID != "" {
			s.children[g.ParentID] = append(s.children[g.ParentID], id)
		}
	}
}
