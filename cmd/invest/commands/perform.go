package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rswy/investment-analysis/internal/pipeline"
)

// performCmd runs the performance attribution engine on an already-loaded store
var performCmd = &cobra.Command{
	Use:   "perform",
	Short: "Attribute monthly performance and name each month's best fund",
	Long: `Aggregates stored positions per fund and month, computes each
fund's monthly rate of return from the previous month's closing value,
and names the best-performing fund for every month.

A fund's first observed month has no rate of return and is excluded
from selection.

Requires a loaded store; run 'invest ingest' first.`,
	RunE: runPerform,
}

func init() {
	rootCmd.AddCommand(performCmd)
}

func runPerform(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pipeline.New(cfg, log, db).Attribute(context.Background()); err != nil {
		return fmt.Errorf("perform: %w", err)
	}

	fmt.Printf("Best performers report written to %s/%s\n", cfg.Output.Dir, cfg.Output.BestPerformersFile)
	return nil
}
