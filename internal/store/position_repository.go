package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rswy/investment-analysis/internal/contracts"
	"github.com/rswy/investment-analysis/pkg/config"
)

// PositionRepository implements contracts.PositionRepository on Postgres
type PositionRepository struct {
	pool   *pgxpool.Pool
	tables config.TableConfig
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(pool *pgxpool.Pool, tables config.TableConfig) *PositionRepository {
	return &PositionRepository{pool: pool, tables: tables}
}

// SaveBatch inserts preprocessed fund report rows
func (r *PositionRepository) SaveBatch(ctx context.Context, positions []contracts.FundPosition) error {
	if len(positions) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			fund_name, eom_date, financial_type, symbol, security_name,
			sedol, isin, price, quantity, realised_p_l, market_value
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.FundPositions)

	batch := &pgx.Batch{}
	for _, p := range positions {
		batch.Queue(query,
			p.FundName, p.EOMDate, p.FinancialType, p.Symbol, p.SecurityName,
			p.Sedol, p.ISIN, p.Price, p.Quantity, p.RealisedPL, p.MarketValue,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range positions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save positions batch: %w", err)
		}
	}
	return results.Close()
}

// ListPositions returns the distinct position rows feeding reconciliation.
// The identifier falls back from symbol to ISIN, then to empty string so the
// column is never null.
func (r *PositionRepository) ListPositions(ctx context.Context) ([]contracts.PositionRow, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT
			eom_date,
			COALESCE(financial_type, '') AS financial_type,
			COALESCE(NULLIF(symbol, ''), NULLIF(isin, ''), '') AS identifier,
			fund_name,
			price
		FROM %s
	`, r.tables.FundPositions)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var positions []contracts.PositionRow
	for rows.Next() {
		var p contracts.PositionRow
		if err := rows.Scan(&p.EOMDate, &p.FinancialType, &p.Identifier, &p.FundName, &p.ReportedPrice); err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// AggregateByFundMonth sums market value and realized P/L per (fund, month)
func (r *PositionRepository) AggregateByFundMonth(ctx context.Context) ([]contracts.FundMonthlyPerformance, error) {
	query := fmt.Sprintf(`
		SELECT
			fund_name,
			eom_date,
			SUM(market_value)  AS fund_mv_end,
			SUM(realised_p_l)  AS realized_p_l
		FROM %s
		GROUP BY fund_name, eom_date
		ORDER BY eom_date ASC, fund_name ASC
	`, r.tables.FundPositions)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregate by fund and month: %w", err)
	}
	defer rows.Close()

	var aggregates []contracts.FundMonthlyPerformance
	for rows.Next() {
		var a contracts.FundMonthlyPerformance
		if err := rows.Scan(&a.FundName, &a.EOMDate, &a.FundMVEnd, &a.RealizedPL); err != nil {
			return nil, fmt.Errorf("scan fund month aggregate: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}

// Count returns the number of stored position rows
func (r *PositionRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.FundPositions)
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count positions: %w", err)
	}
	return count, nil
}
