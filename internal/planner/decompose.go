package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/lbliii/sunwell/internal/goal"
)

// Milestone priorities descend slightly with index so earlier
// milestones win ties.
const milestonePriorityStep = 0.01

// EpicID returns the stable ID for an epic derived from its title.
// The same title always yields the same ID so re-running decomposition
// is idempotent.
func EpicID(title string) string {
	return "epic-" + shortHash(title, 6)
}

// MilestoneID returns the stable ID for a milestone within an epic.
func MilestoneID(epicID string, index int, title string) string {
	return "milestone-" + shortHash(fmt.Sprintf("%s:%d:%s", epicID, index, title), 4)
}

// shortHash returns the first n bytes of the SHA-256 digest, hex
// encoded.
func shortHash(s string, n int) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:n])
}

// Decompose converts a parsed milestone list into an epic goal plus
// its milestone goals. Requires indices are resolved to milestone IDs;
// references to unknown indices are dropped.
//
// Milestones are created complex and not auto-approvable: they bound
// large chunks of work and need human confirmation before execution.
func Decompose(epicTitle, epicDescription string, parsed []ParsedMilestone) (*goal.Goal, []*goal.Goal) {
	epicID := EpicID(epicTitle)

	if epicDescription == "" {
		epicDescription = epicTitle
	}

	epic := &goal.Goal{
		ID:          epicID,
		Title:       truncate(epicTitle, 100),
		Description: epicDescription,
		Type:        goal.TypeEpic,
		Category:    goal.CategoryAdd,
		Complexity:  goal.ComplexityComplex,
		Priority:    1.0,
		Status:      goal.StatusPending,
	}

	indexToID := make(map[int]string, len(parsed))
	for _, m := range parsed {
		indexToID[m.Index] = MilestoneID(epicID, m.Index, m.Title)
	}

	milestones := make([]*goal.Goal, 0, len(parsed))
	for _, m := range parsed {
		var dependsOn []string
		for _, idx := range m.Requires {
			if id, ok := indexToID[idx]; ok {
				dependsOn = append(dependsOn, id)
			}
		}

		milestones = append(milestones, &goal.Goal{
			ID:                indexToID[m.Index],
			Title:             m.Title,
			Description:       m.Description,
			Type:              goal.TypeMilestone,
			ParentID:          epicID,
			Category:          goal.CategoryAdd,
			Complexity:        goal.ComplexityComplex,
			Priority:          1.0 - float64(m.Index)*milestonePriorityStep,
			Status:            goal.StatusPending,
			DependsOn:         dependsOn,
			MilestoneProduces: append([]string(nil), m.Produces...),
		})
	}

	return epic, milestones
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
