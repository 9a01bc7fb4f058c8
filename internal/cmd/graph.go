package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the backlog as a Mermaid diagram",
	Long: `Print the dependency graph in Mermaid flowchart syntax. Nodes
are styled by status; edges show depends_on, artifact flow, and
parent links.`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	fmt.Println(sess.store.Mermaid())
	return nil
}
