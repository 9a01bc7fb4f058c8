package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry [goal-id]",
	Short: "Retry a failed goal",
	Long: `Reset a failed goal to pending so the resolver can promote it
again. Goals blocked on its failure unblock on the next resolve pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetry,
}

func init() {
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.store.Retry(args[0]); err != nil {
		return err
	}
	if err := sess.save(); err != nil {
		return err
	}

	g, err := sess.store.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("retrying %s (%s, attempt %d)\n", g.ID, g.Status, g.RetryCount+1)
	return nil
}
