// cantierectl is the operator CLI for a running cantiere server: project
// listings, budget statistics, CSV export, Gmail connection status, and
// inbox scan triggers, all over the HTTP API.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"cantiere/internal/apiclient"
)

var (
	flagAPIURL string
	flagToken  string
)

var rootCmd = &cobra.Command{
	Use:   "cantierectl",
	Short: "Operator CLI for the cantiere construction budget tracker",
	Long:  "Talk to a running cantiere server: budget statistics, CSV export,\nGmail connection status, and inbox scan triggers.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "API bearer token (overrides config)")
}

// newClient builds the API client, resolving flags over environment over
// the config file.
func newClient() (*apiclient.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	baseURL := firstNonEmpty(flagAPIURL, os.Getenv("CANTIERE_API_URL"), cfg.API.BaseURL)
	token := firstNonEmpty(flagToken, os.Getenv("CANTIERE_API_TOKEN"), cfg.API.Token)

	client := apiclient.NewClient(baseURL, token)
	if client == nil {
		return nil, errors.New("no API URL configured (set --api-url, CANTIERE_API_URL, or run `cantierectl config init`)")
	}
	return client, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
