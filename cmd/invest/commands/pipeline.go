package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rswy/investment-analysis/internal/pipeline"
)

// pipelineCmd runs the full batch end to end
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full pipeline (ingest, reconcile, perform)",
	Long: `Runs the complete monthly batch:

1. Bootstrap the store and load master reference prices
2. Preprocess and store external fund reports
3. Reconcile fund-reported prices against the master series
4. Attribute monthly performance and name each month's best fund

The reconciliation and attribution engines run in parallel.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pipeline.New(cfg, log, db).Run(context.Background()); err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Printf("Pipeline completed. Reports written to %s\n", cfg.Output.Dir)
	return nil
}
