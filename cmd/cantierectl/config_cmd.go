package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Config file: %s\n", configPath())
	if configExists() {
		fmt.Println("  Status:      loaded")
	} else {
		fmt.Println("  Status:      using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [api]")
	fmt.Printf("    Base URL: %s\n", cfg.API.BaseURL)
	if cfg.API.Token != "" {
		fmt.Printf("    Token:    %s\n", maskToken(cfg.API.Token))
	} else {
		fmt.Println("    Token:    not configured")
	}
	fmt.Println()

	fmt.Println("  Flags --api-url/--token and CANTIERE_API_URL/CANTIERE_API_TOKEN override the file.")
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}
	if flagToken != "" {
		cfg.API.Token = flagToken
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", configPath())
	return nil
}

// maskToken hides the middle of a token for display.
func maskToken(tok string) string {
	if len(tok) <= 8 {
		return "********"
	}
	return tok[:4] + "..." + tok[len(tok)-4:]
}
