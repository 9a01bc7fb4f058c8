package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder [goal-id...]",
	Short: "Reorder the backlog",
	Long: `Set the declared order of the backlog. The argument list must
name every goal exactly once; declared order breaks priority ties in
the ready set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReorder,
}

func init() {
	rootCmd.AddCommand(reorderCmd)
}

func runReorder(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.store.Reorder(args); err != nil {
		return err
	}
	if err := sess.save(); err != nil {
		return err
	}

	fmt.Printf("reordered %d goals\n", len(args))
	return nil
}
