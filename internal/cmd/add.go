package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lbliii/sunwell/internal/goal"
)

var addFlags struct {
	id          string
	goalType    string
	parent      string
	description string
	category    string
	complexity  string
	priority    float64
	dependsOn   []string
	requires    []string
	produces    []string
	modifies    []string
	autoApprove bool
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a goal to the backlog",
	Long: `Add a single goal to the backlog. The goal starts pending; the
resolver promotes it to ready once its dependencies and required
artifacts are satisfied.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addFlags.id, "id", "", "goal ID (generated if empty)")
	addCmd.Flags().StringVar(&addFlags.goalType, "type", "task", "goal type: epic, milestone, or task")
	addCmd.Flags().StringVar(&addFlags.parent, "parent", "", "parent goal ID")
	addCmd.Flags().StringVar(&addFlags.description, "description", "", "goal description")
	addCmd.Flags().StringVar(&addFlags.category, "category", "add", "work category (fix, improve, add, refactor, document, test, security, performance)")
	addCmd.Flags().StringVar(&addFlags.complexity, "complexity", "moderate", "estimated complexity (trivial, simple, moderate, complex)")
	addCmd.Flags().Float64Var(&addFlags.priority, "priority", 0.5, "priority in [0,1]")
	addCmd.Flags().StringSliceVar(&addFlags.dependsOn, "depends-on", nil, "goal IDs this goal depends on")
	addCmd.Flags().StringSliceVar(&addFlags.requires, "requires", nil, "artifact names this goal requires")
	addCmd.Flags().StringSliceVar(&addFlags.produces, "produces", nil, "artifact names this goal produces")
	addCmd.Flags().StringSliceVar(&addFlags.modifies, "modifies", nil, "resources this goal modifies")
	addCmd.Flags().BoolVar(&addFlags.autoApprove, "auto-approve", false, "mark the goal auto-approvable")
}

func runAdd(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	id := addFlags.id
	if id == "" {
		id = "task-" + uuid.NewString()[:8]
	}

	g := &goal.Goal{
		ID:             id,
		Title:          args[0],
		Description:    addFlags.description,
		Type:           goal.Type(strings.ToLower(addFlags.goalType)),
		ParentID:       addFlags.parent,
		Category:       goal.Category(strings.ToLower(addFlags.category)),
		Complexity:     goal.Complexity(strings.ToLower(addFlags.complexity)),
		Priority:       addFlags.priority,
		Status:         goal.StatusPending,
		DependsOn:      addFlags.dependsOn,
		Requires:       addFlags.requires,
		Produces:       addFlags.produces,
		Modifies:       addFlags.modifies,
		AutoApprovable: addFlags.autoApprove,
	}

	if err := sess.store.Add(g); err != nil {
		return err
	}
	if err := sess.save(); err != nil {
		return err
	}

	added, err := sess.store.Get(id)
	if err != nil {
		return err
	}
	fmt.Printf("added %s (%s, %s)\n", added.ID, added.Type, added.Status)
	return nil
}
