package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rswy/investment-analysis/internal/pipeline"
)

// reconcileCmd runs the price reconciliation engine on an already-loaded store
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile fund-reported prices against master reference prices",
	Long: `Compares every stored fund position's reported price against the
master reference series for its identifier.

When no reference observation exists on the report date, the most
recent earlier observation is carried forward. Positions with no
reference price at all stay unmatched and are reported with empty
master price and difference columns.

Requires a loaded store; run 'invest ingest' first.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pipeline.New(cfg, log, db).Reconcile(context.Background()); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	fmt.Printf("Reconciliation report written to %s/%s\n", cfg.Output.Dir, cfg.Output.ReconciliationFile)
	return nil
}
