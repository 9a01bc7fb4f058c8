package backlog

import (
	"sort"

	"github.com/lbliii/sunwell/internal/goal"
)

// Policy holds the priority scoring weights and admission limits used
// when goals are generated or ingested without an explicit priority.
// It has no effect on goals whose priority the caller set directly.
type Policy struct {
	// MaxGoals caps how many goals Admit returns. Zero means no cap.
	MaxGoals int

	// PriorityThreshold drops goals scoring below it.
	PriorityThreshold float64

	// CategoryWeights scales a goal's base priority by its category.
	CategoryWeights map[goal.Category]float64

	// ComplexityWeights scales by estimated complexity, favoring quick
	// wins.
	ComplexityWeights map[goal.Complexity]float64

	// LeafBoost is added for goals with no dependencies, so completing
	// them unblocks the most downstream work.
	LeafBoost float64
}

// DefaultPolicy returns the standard scoring policy: security and
// fixes first, documentation last, trivial work over complex work.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxGoals:          20,
		PriorityThreshold: 0.2,
		CategoryWeights: map[goal.Category]float64{
			goal.CategorySecurity:    1.0,
			goal.CategoryFix:         0.9,
			goal.CategoryPerformance: 0.8,
			goal.CategoryTest:        0.7,
			goal.CategoryAdd:         0.6,
			goal.CategoryImprove:     0.5,
			goal.CategoryRefactor:    0.4,
			goal.CategoryDocument:    0.3,
		},
		ComplexityWeights: map[goal.Complexity]float64{
			goal.ComplexityTrivial:  1.0,
			goal.ComplexitySimple:   0.9,
			goal.ComplexityModerate: 0.7,
			goal.ComplexityComplex:  0.5,
		},
		LeafBoost: 0.1,
	}
}

// Score computes the adjusted priority for a goal: the base priority
// scaled by category and complexity weights, boosted for dependency
// leaves, clamped to [0,1].
func (p *Policy) Score(g *goal.Goal) float64 {
	category := 0.5
	if w, ok := p.CategoryWeights[g.Category]; ok {
		category = w
	}
	complexity := 0.7
	if w, ok := p.ComplexityWeights[g.Complexity]; ok {
		complexity = w
	}

	score := g.Priority * category * complexity
	if !g.HasDependencies() {
		score += p.LeafBoost
	}
	return clamp01(score)
}

// Admit scores, filters, and orders candidate goals: goals under the
// priority threshold are dropped, the rest are sorted by descending
// score (stable, so generation order breaks ties) and capped at
// MaxGoals. The returned goals carry their adjusted priority.
func (p *Policy) Admit(candidates []*goal.Goal) []*goal.Goal {
	var out []*goal.Goal
	for _, g := range candidates {
		cp := g.Clone()
		cp.Priority = p.Score(g)
		if cp.Priority < p.PriorityThreshold {
			continue
		}
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	if p.MaxGoals > 0 && len(out) > p.MaxGoals {
		out = out[:p.MaxGoals]
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
