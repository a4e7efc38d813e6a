package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rswy/investment-analysis/pkg/config"
	"github.com/rswy/investment-analysis/pkg/database"
	"github.com/rswy/investment-analysis/pkg/logger"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "invest",
	Short: "Investment data pipeline",
	Long: `Investment analysis batch pipeline.

Ingests external fund reports and master reference prices, reconciles
fund-reported prices against the master series, and attributes monthly
performance across funds.

Usage:
  go run ./cmd/invest [command]

Examples:
  go run ./cmd/invest pipeline
  go run ./cmd/invest ingest
  go run ./cmd/invest reconcile
  go run ./cmd/invest perform
  go run ./cmd/invest status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initDeps loads config and wires the logger and database connection.
// Every subcommand starts here.
func initDeps() (*config.Config, *logger.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return cfg, log, db, nil
}
