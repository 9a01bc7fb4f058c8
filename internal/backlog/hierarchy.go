package backlog

import (
	"github.com/lbliii/sunwell/internal/errors"
	"github.com/lbliii/sunwell/internal/goal"
)

// Progress is the aggregated state of an epic. It is purely derived:
// computing it never mutates any status, and two calls with no
// intervening mutation return identical results.
type Progress struct {
	// EpicID is the epic being reported.
	EpicID string `json:"epic_id"`

	// CompletedMilestones counts milestones whose tasks are all
	// completed or skipped.
	CompletedMilestones int `json:"completed_milestones"`

	// TotalMilestones is the number of milestones under the epic.
	TotalMilestones int `json:"total_milestones"`

	// PercentComplete is CompletedMilestones over TotalMilestones.
	// Tasks count toward the epic only through their milestone.
	PercentComplete float64 `json:"percent_complete"`

	// CurrentMilestoneID is the first milestone in declared order that
	// is not yet complete, or "" when none remain, in which case the
	// epic itself is eligible for completion.
	CurrentMilestoneID string `json:"current_milestone_id,omitempty"`

	// CurrentTasksCompleted and CurrentTasksTotal describe the current
	// milestone's task progress.
	CurrentTasksCompleted int `json:"current_milestone_tasks_completed"`
	CurrentTasksTotal     int `json:"current_milestone_tasks_total"`
}

// Complete reports whether every milestone of the epic is done.
func (p Progress) Complete() bool {
	return p.TotalMilestones > 0 && p.CompletedMilestones == p.TotalMilestones
}

// Progress aggregates milestone and task completion for an epic. Cost
// is O(children of the epic plus their tasks), not O(all goals), so it
// is cheap to recompute on every status change.
func (s *Store) Progress(epicID string) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	epic, ok := s.goals[epicID]
	if !ok {
		return Progress{}, &errors.NotFoundError{GoalID: epicID, Field: "progress"}
	}
	if !epic.IsEpic() {
		return Progress{}, errors.NewValidationError(
			"progress is aggregated per epic, got "+epic.Type.String()+" "+epicID, nil)
	}

	p := Progress{EpicID: epicID}
	for _, childID := range s.children[epicID] {
		m := s.goals[childID]
		if !m.IsMilestone() {
			continue
		}
		p.TotalMilestones++

		done, tasksDone, tasksTotal := s.milestoneProgressLocked(m)
		if done {
			p.CompletedMilestones++
			continue
		}
		if p.CurrentMilestoneID == "" {
			p.CurrentMilestoneID = m.ID
			p.CurrentTasksCompleted = tasksDone
			p.CurrentTasksTotal = tasksTotal
		}
	}

	if p.TotalMilestones > 0 {
		p.PercentComplete = 100 * float64(p.CompletedMilestones) / float64(p.TotalMilestones)
	}
	return p, nil
}

// milestoneProgressLocked reports whether a milestone is complete and
// its task tally. A milestone is complete when every task under it is
// completed or skipped; a milestone with no tasks yet (awaiting
// decomposition) counts as complete only if the milestone goal itself
// reached a terminal state.
func (s *Store) milestoneProgressLocked(m *goal.Goal) (done bool, tasksDone, tasksTotal int) {
	for _, taskID := range s.children[m.ID] {
		t := s.goals[taskID]
		if !t.IsTask() {
			continue
		}
		tasksTotal++
		if t.Status.IsTerminal() {
			tasksDone++
		}
	}
	if tasksTotal == 0 {
		return m.Status.IsTerminal(), 0, 0
	}
	return tasksDone == tasksTotal, tasksDone, tasksTotal
}
