package store

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rswy/investment-analysis/pkg/config"
)

// Bootstrap creates the pipeline tables if they do not exist. Reruns are
// safe: the pipeline always re-reads from a clean state of these tables.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, tables config.TableConfig) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				fund_name      TEXT NOT NULL,
				eom_date       DATE NOT NULL,
				financial_type TEXT,
				symbol         TEXT,
				security_name  TEXT,
				sedol          TEXT,
				isin           TEXT,
				price          NUMERIC,
				quantity       NUMERIC,
				realised_p_l   NUMERIC,
				market_value   NUMERIC
			)`, tables.FundPositions),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				datetime DATE NOT NULL,
				symbol   TEXT NOT NULL,
				price    NUMERIC
			)`, tables.EquityPrices),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				datetime DATE NOT NULL,
				isin     TEXT NOT NULL,
				price    NUMERIC
			)`, tables.BondPrices),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}

	return nil
}

// ExecScript executes a SQL script file against the store. Used to load the
// master reference price tables delivered as INSERT scripts.
func ExecScript(ctx context.Context, pool *pgxpool.Pool, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read SQL script %s: %w", path, err)
	}

	if _, err := pool.Exec(ctx, string(script)); err != nil {
		return fmt.Errorf("execute SQL script %s: %w", path, err)
	}

	return nil
}
