package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/appshelf/internal/app"
	"github.com/MrSnakeDoc/appshelf/internal/config"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long:  "Serve the catalog API. Configuration comes from APPSHELF_* environment variables, a .env file and the optional APPSHELF_CONFIG_FILE overlay.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}
