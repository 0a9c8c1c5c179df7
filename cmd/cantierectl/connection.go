package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cantiere/internal/apiclient"
)

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Show the active Gmail connection",
	RunE:  runConnection,
}

func init() {
	rootCmd.AddCommand(connectionCmd)
}

func runConnection(_ *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	conn, err := client.ActiveConnection(context.Background())
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			fmt.Println("\n  No active Gmail connection.")
			return nil
		}
		return err
	}

	fmt.Println()
	fmt.Printf("  Gmail:      %s\n", conn.GmailEmail)
	fmt.Printf("  Status:     %s\n", conn.SyncStatus)
	if conn.LastSyncAt.IsZero() {
		fmt.Println("  Last sync:  never")
	} else {
		fmt.Printf("  Last sync:  %s\n", conn.LastSyncAt.Format(time.RFC3339))
	}
	if conn.LastError != "" {
		fmt.Printf("  Last error: %s\n", conn.LastError)
	}
	fmt.Println()
	return nil
}
