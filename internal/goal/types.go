// Package goal defines the core data types for the backlog engine.
//
// A Goal is the sole work entity. Epics, milestones, and tasks are all
// goals distinguished by a Type tag: the tag determines hierarchy role,
// not behavior. Goals carry three declaration channels that the rest of
// the engine interprets:
//
//   - DependsOn: explicit goal-ID ordering edges (must form a DAG)
//   - Requires/Produces: abstract artifact names forming a second,
//     content-addressed dependency channel
//   - Modifies: resource names used only for concurrency conflict
//     detection, never for ordering
//
// These are pure data types with no behavior beyond the status
// transition table; all graph interpretation lives in the backlog
// package.
package goal

import "time"

// Type is the hierarchy level of a goal.
type Type string

const (
	// TypeEpic is an ambitious multi-phase goal decomposed into milestones.
	TypeEpic Type = "epic"

	// TypeMilestone is a coherent phase within an epic.
	TypeMilestone Type = "milestone"

	// TypeTask is a concrete, atomic work item. This is the default.
	TypeTask Type = "task"
)

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if this is a recognized goal type.
func (t Type) IsValid() bool {
	switch t {
	case TypeEpic, TypeMilestone, TypeTask:
		return true
	default:
		return false
	}
}

// CanParent returns true if a goal of this type may be the parent of a
// goal of the given child type. The hierarchy is strict:
// epic ⊃ milestone ⊃ task.
func (t Type) CanParent(child Type) bool {
	switch t {
	case TypeEpic:
		return child == TypeMilestone
	case TypeMilestone:
		return child == TypeTask
	default:
		return false
	}
}

// Category classifies what kind of work a goal represents. Categories
// have no scheduling effect beyond priority scoring and display.
type Category string

const (
	CategoryFix         Category = "fix"
	CategoryImprove     Category = "improve"
	CategoryAdd         Category = "add"
	CategoryRefactor    Category = "refactor"
	CategoryDocument    Category = "document"
	CategoryTest        Category = "test"
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
)

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Complexity is the estimated effort of a goal. Lower complexity goals
// score higher under the default priority policy (quick wins first).
type Complexity string

const (
	ComplexityTrivial  Complexity = "trivial"
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// String returns the string representation of the complexity.
func (c Complexity) String() string {
	return string(c)
}

// Claim records temporary exclusive ownership of a goal by one worker.
// It is present only while the goal is in progress.
type Claim struct {
	// WorkerID identifies the claiming worker.
	WorkerID string `json:"worker_id"`

	// ClaimedAt is when the claim was taken.
	ClaimedAt time.Time `json:"claimed_at"`

	// ExpiresAt is the lease expiry. A claim past this instant is
	// considered abandoned and eligible for reclaim.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired returns true if the lease has lapsed as of now.
func (c *Claim) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Goal is a unit of work at any hierarchy level.
type Goal struct {
	// ID uniquely identifies the goal. Immutable once created.
	ID string `json:"id"`

	// Title is a short human-readable name.
	Title string `json:"title"`

	// Description contains detailed instructions for the executor.
	Description string `json:"description,omitempty"`

	// Type is the hierarchy level: epic, milestone, or task.
	Type Type `json:"goal_type"`

	// ParentID optionally references the enclosing milestone or epic.
	// It is a lookup reference, not ownership.
	ParentID string `json:"parent_goal_id,omitempty"`

	// Category classifies the work for priority scoring and display.
	Category Category `json:"category,omitempty"`

	// Complexity is the estimated effort.
	Complexity Complexity `json:"complexity,omitempty"`

	// Priority is in [0,1]; higher runs first among otherwise-ready
	// goals. Insertion order breaks ties.
	Priority float64 `json:"priority"`

	// DependsOn lists goal IDs that must complete before this goal is
	// ready. Forms the edges of the dependency graph.
	DependsOn []string `json:"depends_on,omitempty"`

	// Requires lists artifact names that must be produced by completed
	// goals before this goal is ready. An empty set is trivially
	// satisfied.
	Requires []string `json:"requires,omitempty"`

	// Produces lists artifact names this goal yields on completion.
	Produces []string `json:"produces,omitempty"`

	// Modifies lists resource names this goal will write. Used purely
	// for conflict detection between concurrently running goals.
	Modifies []string `json:"modifies,omitempty"`

	// MilestoneProduces lists the artifacts a milestone as a whole
	// yields. Only meaningful for milestone goals; counted alongside
	// Produces when satisfying Requires.
	MilestoneProduces []string `json:"milestone_produces,omitempty"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Claim is the active lease, present only while in progress.
	Claim *Claim `json:"claim,omitempty"`

	// AutoApprovable hints whether the goal may execute without gated
	// approval. The trust policy makes the final decision.
	AutoApprovable bool `json:"auto_approvable"`

	// BlockedBy references the failed dependency that blocked this
	// goal, enabling fix-and-retry workflows.
	BlockedBy string `json:"blocked_by,omitempty"`

	// FailureContext holds error context from the most recent failure.
	FailureContext string `json:"failure_context,omitempty"`

	// RetryCount is the number of user-triggered retries so far.
	RetryCount int `json:"retry_count,omitempty"`

	// CreatedAt is when the goal entered the backlog.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when the goal reached completed, failed, or
	// skipped.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsEpic returns true if this goal is an epic.
func (g *Goal) IsEpic() bool { return g.Type == TypeEpic }

// IsMilestone returns true if this goal is a milestone.
func (g *Goal) IsMilestone() bool { return g.Type == TypeMilestone }

// IsTask returns true if this goal is a task.
func (g *Goal) IsTask() bool { return g.Type == TypeTask }

// HasDependencies returns true if this goal depends on other goals.
func (g *Goal) HasDependencies() bool {
	return len(g.DependsOn) > 0
}

// ClaimedBy returns the worker holding the goal's lease, or "" when
// unclaimed.
func (g *Goal) ClaimedBy() string {
	if g.Claim == nil {
		return ""
	}
	return g.Claim.WorkerID
}

// Clone returns a deep copy of the goal. The store hands out clones so
// callers can never mutate arena state through a returned pointer.
func (g *Goal) Clone() *Goal {
	cp := *g
	cp.DependsOn = cloneStrings(g.DependsOn)
	cp.Requires = cloneStrings(g.Requires)
	cp.Produces = cloneStrings(g.Produces)
	cp.Modifies = cloneStrings(g.Modifies)
	cp.MilestoneProduces = cloneStrings(g.MilestoneProduces)
	if g.Claim != nil {
		claim := *g.Claim
		cp.Claim = &claim
	}
	if g.CompletedAt != nil {
		done := *g.CompletedAt
		cp.CompletedAt = &done
	}
	return &cp
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Result reports the outcome of executing a goal.
type Result struct {
	// Success is whether the goal completed successfully.
	Success bool `json:"success"`

	// FailureReason describes why the goal failed, if it did.
	FailureReason string `json:"failure_reason,omitempty"`

	// Summary is a human-readable description of what was done.
	Summary string `json:"summary,omitempty"`

	// Duration is how long execution took.
	Duration time.Duration `json:"duration_seconds,omitempty"`

	// FilesChanged lists files modified during execution.
	FilesChanged []string `json:"files_changed,omitempty"`

	// ArtifactsCreated lists artifact names actually produced.
	ArtifactsCreated []string `json:"artifacts_created,omitempty"`
}
