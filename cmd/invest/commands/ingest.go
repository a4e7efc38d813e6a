package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rswy/investment-analysis/internal/pipeline"
)

// ingestCmd loads the store without running the engines
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load master reference prices and fund reports into the store",
	Long: `Bootstraps the store schema, executes the master reference SQL
script, and preprocesses every fund report CSV in the configured
directory into the positions table.

Fund reports that cannot be parsed are logged and skipped; the rest of
the batch continues.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pipeline.New(cfg, log, db).Ingest(context.Background()); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Println("Ingestion completed")
	return nil
}
