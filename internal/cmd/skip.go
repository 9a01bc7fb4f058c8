package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var skipCmd = &cobra.Command{
	Use:   "skip [goal-id]",
	Short: "Skip a goal and everything under it",
	Long: `Skip a goal. Its incomplete subtree is skipped with it, and
dependents whose requirements can no longer be produced become
blocked.`,
	Args: cobra.ExactArgs(1),
	RunE: runSkip,
}

func init() {
	rootCmd.AddCommand(skipCmd)
}

func runSkip(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	skipped, err := sess.store.Skip(args[0])
	if err != nil {
		return err
	}
	if err := sess.save(); err != nil {
		return err
	}

	fmt.Printf("skipped %s\n", strings.Join(skipped, ", "))
	return nil
}
