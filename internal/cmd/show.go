package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [goal-id]",
	Short: "Show the full state of one goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	g, err := sess.store.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID: %s\n", g.ID)
	fmt.Printf("Title: %s\n", g.Title)
	fmt.Printf("Type: %s\n", g.Type)
	fmt.Printf("Status: %s\n", g.Status)
	fmt.Printf("Priority: %.2f\n", g.Priority)
	if g.ParentID != "" {
		fmt.Printf("Parent: %s\n", g.ParentID)
	}
	if g.Category != "" {
		fmt.Printf("Category: %s\n", g.Category)
	}
	if g.Complexity != "" {
		fmt.Printf("Complexity: %s\n", g.Complexity)
	}
	if g.Description != "" {
		fmt.Printf("Description: %s\n", g.Description)
	}
	if len(g.DependsOn) > 0 {
		fmt.Printf("Depends on: %s\n", strings.Join(g.DependsOn, ", "))
	}
	if len(g.Requires) > 0 {
		fmt.Printf("Requires: %s\n", strings.Join(g.Requires, ", "))
	}
	if len(g.Produces) > 0 {
		fmt.Printf("Produces: %s\n", strings.Join(g.Produces, ", "))
	}
	if len(g.Modifies) > 0 {
		fmt.Printf("Modifies: %s\n", strings.Join(g.Modifies, ", "))
	}
	fmt.Printf("Auto-approvable: %v\n", g.AutoApprovable)
	if g.Claim != nil {
		fmt.Printf("Claimed by: %s (expires %s)\n", g.Claim.WorkerID, g.Claim.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
	if g.BlockedBy != "" {
		fmt.Printf("Blocked by: %s\n", g.BlockedBy)
	}
	if g.FailureContext != "" {
		fmt.Printf("Failure context: %s\n", g.FailureContext)
	}
	if g.RetryCount > 0 {
		fmt.Printf("Retries: %d\n", g.RetryCount)
	}
	fmt.Printf("Created: %s\n", g.CreatedAt.Format("2006-01-02 15:04:05"))
	if g.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", g.CompletedAt.Format("2006-01-02 15:04:05"))
	}

	children := sess.store.Children(g.ID)
	if len(children) > 0 {
		fmt.Printf("Children: %s\n", strings.Join(children, ", "))
	}
	dependents := sess.store.Dependents(g.ID)
	if len(dependents) > 0 {
		fmt.Printf("Dependents: %s\n", strings.Join(dependents, ", "))
	}
	return nil
}
