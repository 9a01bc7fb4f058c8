// Package trust decides which goals may be executed without human
// approval. The default policy only waives approval for goals that are
// both low-risk by category and low-effort by complexity, and that
// were marked approvable at generation time.
package trust

import "github.com/lbliii/sunwell/internal/goal"

// Policy decides whether a goal can run without human approval.
type Policy interface {
	IsAutoApprovable(g *goal.Goal) bool
}

// CategoryPolicy gates auto-approval on the goal's category and
// complexity. A goal must satisfy all three conditions: its category
// is in Categories, its complexity is in Complexities, and its own
// AutoApprovable hint is set.
type CategoryPolicy struct {
	Categories   map[goal.Category]bool
	Complexities map[goal.Complexity]bool
}

// DefaultPolicy returns the standard gate: only trivial or simple
// fixes and test work are auto-approvable.
func DefaultPolicy() *CategoryPolicy {
	return &CategoryPolicy{
		Categories: map[goal.Category]bool{
			goal.CategoryFix:  true,
			goal.CategoryTest: true,
		},
		Complexities: map[goal.Complexity]bool{
			goal.ComplexityTrivial: true,
			goal.ComplexitySimple:  true,
		},
	}
}

// IsAutoApprovable reports whether the goal can run without approval.
func (p *CategoryPolicy) IsAutoApprovable(g *goal.Goal) bool {
	if g == nil || !g.AutoApprovable {
		return false
	}
	return p.Categories[g.Category] && p.Complexities[g.Complexity]
}

// AllowAll approves every goal. Used when the operator opts out of
// approval gating entirely.
type AllowAll struct{}

func (AllowAll) IsAutoApprovable(*goal.Goal) bool { return true }

// DenyAll approves nothing; every goal needs a human.
type DenyAll struct{}

func (DenyAll) IsAutoApprovable(*goal.Goal) bool { return false }
