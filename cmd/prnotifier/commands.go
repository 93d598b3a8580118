package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/RezaEskandarii/prnotifier/app"
	"github.com/RezaEskandarii/prnotifier/types/config"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath  string
	historyPage int
	historySize int

	rootCmd = &cobra.Command{
		Use:          "prnotifier",
		Short:        "Scheduled pull request reminders and escalations",
		SilenceUsage: true,
	}

	tickCmd = &cobra.Command{
		Use:   "tick",
		Short: "Run every due schedule once and print the tick summary",
		Args:  cobra.NoArgs,
		RunE:  runTick, // Defined in cmd_run.go
	}

	refreshTokensCmd = &cobra.Command{
		Use:   "refresh-tokens",
		Short: "Refresh provider tokens that are about to expire",
		Args:  cobra.NoArgs,
		RunE:  runRefreshTokens, // Defined in cmd_run.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run ticks and token refresh sweeps on their intervals and serve /metrics",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrate, // Defined in cmd_admin.go
	}

	historyCmd = &cobra.Command{
		Use:   "history [schedule-id]",
		Short: "List the most recent executions of a schedule",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory, // Defined in cmd_admin.go
	}

	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "Print execution events from the message broker as they arrive",
		Args:  cobra.NoArgs,
		RunE:  runEvents, // Defined in cmd_serve.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the TOML configuration file")

	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page number")
	historyCmd.Flags().IntVar(&historySize, "page-size", 20, "executions per page")

	rootCmd.AddCommand(tickCmd, refreshTokensCmd, serveCmd, migrateCmd, historyCmd, eventsCmd)
}

// newContainer loads the configuration and wires the application for one command.
func newContainer(ctx context.Context) (*app.Container, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	return app.NewContainer(ctx, cfg, app.WithLogger(logger))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
