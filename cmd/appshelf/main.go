// Package main is the appshelf command: the HTTP service and a few
// offline helpers around the catalog feed.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "appshelf",
	Short:         "Browse a community catalog of educational applications",
	Long:          "AppShelf serves a filterable, paginated catalog of educational applications read from a published spreadsheet, with per-visitor favorites and shareable links.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
}
