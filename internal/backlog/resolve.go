package backlog

import "github.com/lbliii/sunwell/internal/goal"

// recomputeLocked is the dependency resolver. It re-evaluates every
// goal's derived status from the committed state of the arena:
//
//   - pending → ready when all depends_on are completed and every
//     required artifact is produced by a completed goal
//   - ready → pending when a readiness condition no longer holds
//   - pending/ready → blocked when a dependency failed (recording the
//     failed ID so a fix-and-retry workflow can surface it)
//   - blocked → pending when no dependency is failed any longer
//   - pending/ready/blocked → skipped when a dependency was skipped, or
//     when a required artifact can only ever come from skipped goals
//
// These are the only resolver-driven transitions; completed, failed,
// in_progress, and skipped goals are never touched here. The loop runs
// to a fixpoint so skip cascades settle in one call; it is bounded by
// the goal count since every iteration that changes anything moves at
// least one goal into a terminal or blocked state.
func (s *Store) recomputeLocked() {
	for range s.order {
		if !s.resolvePassLocked() {
			return
		}
	}
}

// resolvePassLocked performs one resolver sweep in insertion order and
// reports whether anything changed.
func (s *Store) resolvePassLocked() bool {
	produced := s.producedArtifactsLocked()
	changed := false

	for _, id := range s.order {
		g := s.goals[id]
		switch g.Status {
		case goal.StatusPending, goal.StatusReady, goal.StatusBlocked:
		default:
			continue
		}

		if dep := s.skippedDepLocked(g); dep != "" || s.requiresUnsatisfiableLocked(g, produced) {
			s.setStatusLocked(g, goal.StatusSkipped)
			g.BlockedBy = ""
			changed = true
			continue
		}

		if dep := s.failedDepLocked(g); dep != "" {
			if g.Status != goal.StatusBlocked || g.BlockedBy != dep {
				g.Status = goal.StatusBlocked
				g.BlockedBy = dep
				changed = true
			}
			continue
		}
		if g.Status == goal.StatusBlocked {
			g.Status = goal.StatusPending
			g.BlockedBy = ""
			changed = true
		}

		ready := s.depsCompletedLocked(g) && s.requiresSatisfiedLocked(g, produced)
		switch {
		case ready && g.Status == goal.StatusPending:
			g.Status = goal.StatusReady
			changed = true
		case !ready && g.Status == goal.StatusReady:
			g.Status = goal.StatusPending
			changed = true
		}
	}
	return changed
}

// producedArtifactsLocked returns the artifact names yielded by all
// completed goals, including milestone-level artifacts.
func (s *Store) producedArtifactsLocked() []string {
	var out []string
	for _, id := range s.order {
		g := s.goals[id]
		if g.Status != goal.StatusCompleted {
			continue
		}
		out = append(out, g.Produces...)
		out = append(out, g.MilestoneProduces...)
	}
	return out
}

func (s *Store) depsCompletedLocked(g *goal.Goal) bool {
	for _, dep := range g.DependsOn {
		d, ok := s.goals[dep]
		if !ok || d.Status != goal.StatusCompleted {
			return false
		}
	}
	return true
}

func (s *Store) failedDepLocked(g *goal.Goal) string {
	for _, dep := range g.DependsOn {
		if d, ok := s.goals[dep]; ok && d.Status == goal.StatusFailed {
			return dep
		}
	}
	return ""
}

func (s *Store) skippedDepLocked(g *goal.Goal) string {
	for _, dep := range g.DependsOn {
		if d, ok := s.goals[dep]; ok && d.Status == goal.StatusSkipped {
			return dep
		}
	}
	return ""
}

// requiresSatisfiedLocked reports whether every required artifact name
// is matched by something already produced. An empty requires set is
// trivially satisfied on this axis.
func (s *Store) requiresSatisfiedLocked(g *goal.Goal, produced []string) bool {
	for _, req := range g.Requires {
		if !s.artifactAvailableLocked(req, produced) {
			return false
		}
	}
	return true
}

func (s *Store) artifactAvailableLocked(required string, produced []string) bool {
	for _, art := range produced {
		if s.match(required, art) {
			return true
		}
	}
	return false
}

// requiresUnsatisfiableLocked reports whether some required artifact
// can no longer arrive: it is not yet produced, at least one goal
// declares it, and every declaring goal is skipped. A requirement with
// no declared producer is left pending rather than skipped: it may be
// satisfied by goals added later. This is the "no alternative satisfied
// path" rule for skip propagation over the artifact channel.
func (s *Store) requiresUnsatisfiableLocked(g *goal.Goal, produced []string) bool {
	for _, req := range g.Requires {
		if s.artifactAvailableLocked(req, produced) {
			continue
		}
		declared := false
		allSkipped := true
		for _, id := range s.order {
			p := s.goals[id]
			if p.ID == g.ID {
				continue
			}
			if !s.declaresArtifactLocked(p, req) {
				continue
			}
			declared = true
			if p.Status != goal.StatusSkipped {
				allSkipped = false
				break
			}
		}
		if declared && allSkipped {
			return true
		}
	}
	return false
}

func (s *Store) declaresArtifactLocked(g *goal.Goal, required string) bool {
	for _, art := range g.Produces {
		if s.match(required, art) {
			return true
		}
	}
	for _, art := range g.MilestoneProduces {
		if s.match(required, art) {
			return true
		}
	}
	return false
}
