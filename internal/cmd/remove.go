package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove [goal-id]",
	Short: "Remove a goal from the backlog",
	Long: `Remove a goal. Fails if other goals depend on it or list it as
their parent.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.store.Remove(args[0]); err != nil {
		return err
	}
	if err := sess.save(); err != nil {
		return err
	}

	fmt.Printf("removed %s\n", args[0])
	return nil
}
