package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lbliii/sunwell/internal/goal"
)

var listFlags struct {
	status   string
	goalType string
	parent   string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals in the backlog",
	Long: `List goals in declared order. Filters narrow the output by
status, type, or parent.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFlags.status, "status", "", "filter by status")
	listCmd.Flags().StringVar(&listFlags.goalType, "type", "", "filter by goal type")
	listCmd.Flags().StringVar(&listFlags.parent, "parent", "", "filter by parent goal ID")
}

func runList(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	goals := sess.store.Snapshot()
	var rows []*goal.Goal
	for _, g := range goals {
		if listFlags.status != "" && string(g.Status) != strings.ToLower(listFlags.status) {
			continue
		}
		if listFlags.goalType != "" && string(g.Type) != strings.ToLower(listFlags.goalType) {
			continue
		}
		if listFlags.parent != "" && g.ParentID != listFlags.parent {
			continue
		}
		rows = append(rows, g)
	}

	if len(rows) == 0 {
		fmt.Println("no goals")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Type", "Title", "Status", "Priority", "Worker"})
	for _, g := range rows {
		tw.AppendRow(table.Row{g.ID, g.Type, truncateTitle(g.Title, 48), g.Status, fmt.Sprintf("%.2f", g.Priority), g.ClaimedBy()})
	}
	tw.Render()
	return nil
}

func truncateTitle(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
