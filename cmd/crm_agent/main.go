// Package main provides the entry point for the real-estate CRM API server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "crm_agent",
	Short: "Real-estate CRM HTTP API server",
	Long: `crm_agent serves the CRM REST API and runs its model-backed operations from the
command line: listing/client matching, property valuation and commission math.

Settings come from an optional JSON or YAML file (--config) overlaid by
environment variables; a .env file in the working directory is loaded first.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (environment variables override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print human-readable output and debug logs")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
