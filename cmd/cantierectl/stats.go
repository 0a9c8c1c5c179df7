package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <project-id>",
	Short: "Show budget statistics for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	stats, err := client.ProjectStats(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %s\n", stats.ProjectName)
	fmt.Println()
	fmt.Printf("  Budget:          %s\n", euro(stats.TotalBudget))
	fmt.Printf("  Spent:           %s (%.1f%%)\n", euro(stats.TotalSpent), stats.PercentUsed)
	fmt.Printf("  Remaining:       %s\n", euro(stats.Remaining))
	fmt.Println()
	fmt.Printf("  Labor:           %s\n", euro(stats.LaborSpent))
	fmt.Printf("  Materials:       %s\n", euro(stats.MaterialsSpent))
	fmt.Printf("  Equipment:       %s\n", euro(stats.EquipmentSpent))
	fmt.Printf("  Subcontractors:  %s\n", euro(stats.SubcontractorsSpent))
	fmt.Printf("  Overhead:        %s\n", euro(stats.OverheadSpent))
	fmt.Println()
	fmt.Printf("  Complete:        %d%%\n", stats.PercentComplete)
	fmt.Printf("  Spent today:     %s\n", euro(stats.SpentToday))
	fmt.Printf("  Daily burn:      %s\n", euro(stats.DailyBurnRate))
	fmt.Printf("  Projected cost:  %s\n", euro(stats.ProjectedFinalCost))
	fmt.Printf("  Variance:        %s\n", euro(stats.Variance))
	if stats.DaysRemaining > 0 {
		fmt.Printf("  Days remaining:  %d\n", stats.DaysRemaining)
	}

	if len(stats.ByCategory) > 0 {
		fmt.Println()
		fmt.Println("  By category:")
		for _, c := range stats.ByCategory {
			fmt.Printf("    %-20s %s\n", truncate(c.Name, 20), euro(c.Spent))
		}
	}
	fmt.Println()
	return nil
}
