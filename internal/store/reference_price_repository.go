package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rswy/investment-analysis/internal/contracts"
	"github.com/rswy/investment-analysis/pkg/config"
)

// ReferencePriceRepository implements contracts.ReferencePriceRepository on
// Postgres. Equity and bond observations live in separate tables keyed by
// symbol and ISIN respectively; ListAll presents them as one series.
type ReferencePriceRepository struct {
	pool   *pgxpool.Pool
	tables config.TableConfig
}

// NewReferencePriceRepository creates a new reference price repository
func NewReferencePriceRepository(pool *pgxpool.Pool, tables config.TableConfig) *ReferencePriceRepository {
	return &ReferencePriceRepository{pool: pool, tables: tables}
}

// SaveBatch inserts reference price observations into the table matching
// their asset class
func (r *ReferencePriceRepository) SaveBatch(ctx context.Context, prices []contracts.ReferencePrice) error {
	if len(prices) == 0 {
		return nil
	}

	equityQuery := fmt.Sprintf(`INSERT INTO %s (datetime, symbol, price) VALUES ($1, $2, $3)`, r.tables.EquityPrices)
	bondQuery := fmt.Sprintf(`INSERT INTO %s (datetime, isin, price) VALUES ($1, $2, $3)`, r.tables.BondPrices)

	batch := &pgx.Batch{}
	for _, p := range prices {
		switch p.AssetClass {
		case contracts.AssetClassEquity:
			batch.Queue(equityQuery, p.EOMDate, p.Identifier, p.MasterPrice)
		case contracts.AssetClassBond:
			batch.Queue(bondQuery, p.EOMDate, p.Identifier, p.MasterPrice)
		default:
			return fmt.Errorf("unknown asset class %q for identifier %s", p.AssetClass, p.Identifier)
		}
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range prices {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save reference prices batch: %w", err)
		}
	}
	return results.Close()
}

// ListAll returns all reference prices across asset classes
func (r *ReferencePriceRepository) ListAll(ctx context.Context) ([]contracts.ReferencePrice, error) {
	query := fmt.Sprintf(`
		SELECT datetime, symbol AS identifier, price, '%s' AS asset_class FROM %s
		UNION ALL
		SELECT datetime, isin   AS identifier, price, '%s' AS asset_class FROM %s
	`, contracts.AssetClassEquity, r.tables.EquityPrices,
		contracts.AssetClassBond, r.tables.BondPrices)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reference prices: %w", err)
	}
	defer rows.Close()

	var prices []contracts.ReferencePrice
	for rows.Next() {
		var p contracts.ReferencePrice
		if err := rows.Scan(&p.EOMDate, &p.Identifier, &p.MasterPrice, &p.AssetClass); err != nil {
			return nil, fmt.Errorf("scan reference price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// Count returns the number of stored reference price rows across both tables
func (r *ReferencePriceRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf(`
		SELECT (SELECT COUNT(*) FROM %s) + (SELECT COUNT(*) FROM %s)
	`, r.tables.EquityPrices, r.tables.BondPrices)
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reference prices: %w", err)
	}
	return count, nil
}
