package planner

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lbliii/sunwell/internal/errors"
	"github.com/lbliii/sunwell/internal/goal"
)

// Plan is a hand-written or tool-generated decomposition document.
// Milestone and task lists are ordered; numeric references in
// "requires" fields are 1-indexed positions in the milestone list.
type Plan struct {
	Epic       PlanEpic        `yaml:"epic"`
	Milestones []PlanMilestone `yaml:"milestones"`
	Tasks      []PlanTask      `yaml:"tasks"`
}

// PlanEpic describes the root goal of the plan. A plan without an epic
// yields a flat batch of tasks.
type PlanEpic struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// PlanMilestone describes one phase of the epic.
type PlanMilestone struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Produces    []string `yaml:"produces"`
	Requires    []int    `yaml:"requires"` // 1-indexed milestone positions
}

// PlanTask describes a concrete work item. Milestone references the
// 1-indexed position of the enclosing milestone; zero means the task
// has no parent.
type PlanTask struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Milestone   int      `yaml:"milestone"`
	Category    string   `yaml:"category"`
	Complexity  string   `yaml:"complexity"`
	Priority    *float64 `yaml:"priority"`
	DependsOn   []string `yaml:"depends_on"`
	Requires    []string `yaml:"requires"`
	Produces    []string `yaml:"produces"`
	Modifies    []string `yaml:"modifies"`
	AutoApprove bool     `yaml:"auto_approve"`
}

// LoadPlan reads and parses a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.NewValidationError("parse plan file", err)
	}
	return &p, nil
}

// Goals converts the plan into a single goal batch in declaration
// order: epic first, then milestones, then tasks. Task dependency IDs
// may reference plan-local milestones by "milestone:N" or other tasks
// by their IDs.
func (p *Plan) Goals() ([]*goal.Goal, error) {
	var out []*goal.Goal

	var epicID string
	milestoneIDs := make(map[int]string, len(p.Milestones))

	if p.Epic.Title != "" {
		epic, _ := Decompose(p.Epic.Title, p.Epic.Description, nil)
		epicID = epic.ID
		out = append(out, epic)
	} else if len(p.Milestones) > 0 {
		return nil, errors.NewValidationError("plan has milestones but no epic", nil)
	}

	for i, m := range p.Milestones {
		index := i + 1
		if m.Title == "" {
			return nil, errors.NewValidationError(
				fmt.Sprintf("milestone %d has no title", index), nil)
		}

		id := MilestoneID(epicID, index, m.Title)
		milestoneIDs[index] = id

		var dependsOn []string
		for _, ref := range m.Requires {
			depID, ok := milestoneIDs[ref]
			if !ok || ref >= index {
				return nil, errors.NewValidationError(
					fmt.Sprintf("milestone %d requires unknown or later milestone %d", index, ref), nil)
			}
			dependsOn = append(dependsOn, depID)
		}

		out = append(out, &goal.Goal{
			ID:                id,
			Title:             m.Title,
			Description:       m.Description,
			Type:              goal.TypeMilestone,
			ParentID:          epicID,
			Category:          goal.CategoryAdd,
			Complexity:        goal.ComplexityComplex,
			Priority:          1.0 - float64(index)*milestonePriorityStep,
			Status:            goal.StatusPending,
			DependsOn:         dependsOn,
			MilestoneProduces: append([]string(nil), m.Produces...),
		})
	}

	for i, t := range p.Tasks {
		g, err := p.taskGoal(i, t, milestoneIDs)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, nil
}

func (p *Plan) taskGoal(i int, t PlanTask, milestoneIDs map[int]string) (*goal.Goal, error) {
	if t.Title == "" {
		return nil, errors.NewValidationError(
			fmt.Sprintf("task %d has no title", i+1), nil)
	}

	id := t.ID
	if id == "" {
		id = "task-" + uuid.NewString()[:8]
	}

	var parentID string
	if t.Milestone != 0 {
		mid, ok := milestoneIDs[t.Milestone]
		if !ok {
			return nil, errors.NewValidationError(
				fmt.Sprintf("task %q references unknown milestone %d", t.Title, t.Milestone), nil)
		}
		parentID = mid
	}

	category := goal.Category(strings.ToLower(t.Category))
	if t.Category == "" {
		category = goal.CategoryAdd
	}
	complexity := goal.Complexity(strings.ToLower(t.Complexity))
	if t.Complexity == "" {
		complexity = goal.ComplexityModerate
	}

	priority := 0.5
	if t.Priority != nil {
		priority = *t.Priority
	}

	dependsOn := make([]string, 0, len(t.DependsOn))
	for _, dep := range t.DependsOn {
		// "milestone:N" resolves to the Nth milestone's generated ID.
		if n, ok := strings.CutPrefix(dep, "milestone:"); ok {
			var idx int
			if _, err := fmt.Sscanf(n, "%d", &idx); err == nil {
				if mid, ok := milestoneIDs[idx]; ok {
					dependsOn = append(dependsOn, mid)
					continue
				}
			}
			return nil, errors.NewValidationError(
				fmt.Sprintf("task %q depends on unknown milestone reference %q", t.Title, dep), nil)
		}
		dependsOn = append(dependsOn, dep)
	}

	return &goal.Goal{
		ID:             id,
		Title:          t.Title,
		Description:    t.Description,
		Type:           goal.TypeTask,
		ParentID:       parentID,
		Category:       category,
		Complexity:     complexity,
		Priority:       priority,
		Status:         goal.StatusPending,
		DependsOn:      dependsOn,
		Requires:       append([]string(nil), t.Requires...),
		Produces:       append([]string(nil), t.Produces...),
		Modifies:       append([]string(nil), t.Modifies...),
		AutoApprovable: t.AutoApprove,
	}, nil
}
