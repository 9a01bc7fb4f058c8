package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress [epic-id]",
	Short: "Show aggregated progress for an epic",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgress,
}

func init() {
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	p, err := sess.store.Progress(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Epic: %s\n", p.EpicID)
	fmt.Printf("Milestones: %d/%d (%.1f%%)\n", p.CompletedMilestones, p.TotalMilestones, p.PercentComplete)
	if p.Complete() {
		fmt.Println("All milestones complete")
		return nil
	}
	if p.CurrentMilestoneID != "" {
		fmt.Printf("Current milestone: %s (%d/%d tasks)\n", p.CurrentMilestoneID, p.CurrentTasksCompleted, p.CurrentTasksTotal)
	}
	return nil
}
