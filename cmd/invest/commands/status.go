package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rswy/investment-analysis/internal/store"
)

// statusCmd reports store health and row counts
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database health and stored row counts",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	fmt.Println("Database:")
	fmt.Printf("  Healthy:       %v\n", status.Healthy)
	fmt.Printf("  Response Time: %s\n", status.ResponseTime)
	fmt.Printf("  Connections:   %d/%d (idle %d)\n",
		status.Stats.AcquiredConns, status.Stats.MaxConns, status.Stats.IdleConns)

	if err := store.Bootstrap(ctx, db.Pool, cfg.Tables); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	positions := store.NewPositionRepository(db.Pool, cfg.Tables)
	references := store.NewReferencePriceRepository(db.Pool, cfg.Tables)

	positionCount, err := positions.Count(ctx)
	if err != nil {
		return fmt.Errorf("count positions: %w", err)
	}
	referenceCount, err := references.Count(ctx)
	if err != nil {
		return fmt.Errorf("count reference prices: %w", err)
	}

	fmt.Println("Store:")
	fmt.Printf("  Fund positions:   %d\n", positionCount)
	fmt.Printf("  Reference prices: %d\n", referenceCount)

	return nil
}
