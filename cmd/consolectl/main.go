package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"penalty-console/internal/adapters/apiclient"
	adapterlogger "penalty-console/internal/adapters/logger"
	"penalty-console/internal/adapters/rest"
)

var (
	apiBaseURL string
	token      string
	logLevel   string
	timeout    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "consolectl",
	Short: "Operate the penalty console API from a terminal",
	Long: `consolectl signs in against the console's REST API and reads its catalogs.

Available subcommands:
  login  - Authenticate and print a bearer token
  list   - Print one page of a catalog
  export - Write a catalog to an .xlsx spreadsheet`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", os.Getenv("API_BASE_URL"), "API base URL (or set API_BASE_URL env)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CONSOLE_TOKEN"), "Bearer token from 'consolectl login' (or set CONSOLE_TOKEN env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level for API diagnostics")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
}

// repositories builds the REST resources for one command run, authenticated with --token
// when it is set.
func repositories(cmd *cobra.Command) (context.Context, context.CancelFunc, *rest.Repositories, error) {
	if apiBaseURL == "" {
		return nil, nil, nil, errors.New("missing API base URL: pass --api or set API_BASE_URL")
	}
	client := apiclient.New(apiBaseURL, adapterlogger.NewWithWriter(cmd.ErrOrStderr(), adapterlogger.ParseLevel(logLevel)),
		apiclient.WithTimeout(timeout))
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	if token != "" {
		ctx = apiclient.WithSession(ctx, "consolectl", token)
	}
	return ctx, cancel, rest.NewRepositories(client), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
