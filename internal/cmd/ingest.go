package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lbliii/sunwell/internal/goal"
	"github.com/lbliii/sunwell/internal/planner"
)

var ingestFlags struct {
	plan  string
	text  string
	title string
	admit bool
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest goals from a plan file or milestone text",
	Long: `Load goals in bulk. --plan reads a YAML plan file; --text reads
a free-form planning document and extracts its MILESTONE blocks,
decomposing them into an epic with milestone children. --admit filters
the ingested goals through the priority policy first.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFlags.plan, "plan", "", "YAML plan file to load")
	ingestCmd.Flags().StringVar(&ingestFlags.text, "text", "", "planning text file with MILESTONE blocks")
	ingestCmd.Flags().StringVar(&ingestFlags.title, "title", "", "epic title for --text ingest (defaults to the first milestone's title)")
	ingestCmd.Flags().BoolVar(&ingestFlags.admit, "admit", false, "apply the priority policy before adding")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if (ingestFlags.plan == "") == (ingestFlags.text == "") {
		return fmt.Errorf("exactly one of --plan or --text is required")
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	var goals []*goal.Goal
	switch {
	case ingestFlags.plan != "":
		plan, err := planner.LoadPlan(ingestFlags.plan)
		if err != nil {
			return err
		}
		goals, err = plan.Goals()
		if err != nil {
			return err
		}
	case ingestFlags.text != "":
		data, err := os.ReadFile(ingestFlags.text)
		if err != nil {
			return fmt.Errorf("read plan text: %w", err)
		}
		parsed := planner.ParseMilestones(string(data))
		if len(parsed) == 0 {
			return fmt.Errorf("no milestone blocks found in %s", ingestFlags.text)
		}
		title := ingestFlags.title
		if title == "" {
			title = parsed[0].Title
		}
		epic, milestones := planner.Decompose(title, "", parsed)
		goals = append([]*goal.Goal{epic}, milestones...)
	}

	if ingestFlags.admit {
		policy := policyFor(sess.cfg)
		admitted := policy.Admit(goals)
		if len(admitted) < len(goals) {
			fmt.Printf("policy dropped %d of %d goals\n", len(goals)-len(admitted), len(goals))
		}
		goals = admitted
	}

	if err := sess.store.BatchAdd(goals); err != nil {
		return err
	}
	if err := sess.save(); err != nil {
		return err
	}

	fmt.Printf("ingested %d goals\n", len(goals))
	return nil
}
