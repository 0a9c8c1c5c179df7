package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagScanProject string
	flagScanSince   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Queue an inbox scan for receipts",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&flagScanProject, "project", "p", "", "Project the found receipts belong to (required)")
	scanCmd.Flags().StringVar(&flagScanSince, "since", "", "Only scan mail after this date (YYYY-MM-DD)")
	_ = scanCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	var since time.Time
	if flagScanSince != "" {
		since, err = time.Parse("2006-01-02", flagScanSince)
		if err != nil {
			return fmt.Errorf("invalid --since %q, want YYYY-MM-DD", flagScanSince)
		}
	}

	accepted, err := client.TriggerScan(context.Background(), flagScanProject, since)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Scan queued on connection %s\n", accepted.ConnectionID)
	fmt.Printf("  Project: %s\n", accepted.ProjectID)
	fmt.Printf("  Since:   %s\n", accepted.Since.Format(time.RFC3339))
	fmt.Println()
	return nil
}
