package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects with their budgets",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("\n  No projects found.")
		return nil
	}

	fmt.Println()
	fmt.Printf("  %-36s  %-24s  %14s  %s\n", "ID", "NAME", "BUDGET", "START")
	for _, p := range projects {
		fmt.Printf("  %-36s  %-24s  %14s  %s\n",
			p.ID, truncate(p.Name, 24), euro(p.TotalBudget), p.StartDate.Format("2006-01-02"))
	}
	fmt.Println()
	return nil
}
