package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backlog status counts and the ready set",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	counts := sess.store.Status()

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Status", "Count"})
	tw.AppendRow(table.Row{"pending", counts.Pending})
	tw.AppendRow(table.Row{"ready", counts.Ready})
	tw.AppendRow(table.Row{"in_progress", counts.InProgress})
	tw.AppendRow(table.Row{"completed", counts.Completed})
	tw.AppendRow(table.Row{"failed", counts.Failed})
	tw.AppendRow(table.Row{"blocked", counts.Blocked})
	tw.AppendRow(table.Row{"skipped", counts.Skipped})
	tw.AppendFooter(table.Row{"total", counts.Total})
	tw.Render()

	ready := sess.store.ReadySet()
	if len(ready) == 0 {
		fmt.Println("\nready: none")
		return nil
	}
	fmt.Println("\nready:")
	for _, g := range ready {
		fmt.Printf("  %s  %.2f  %s\n", g.ID, g.Priority, g.Title)
	}
	return nil
}
