package contracts

import (
	"context"
)

// PositionRepository manages the fund_positions table
type PositionRepository interface {
	// SaveBatch inserts preprocessed fund report rows
	SaveBatch(ctx context.Context, positions []FundPosition) error

	// ListPositions returns the distinct position rows feeding reconciliation,
	// with the identifier resolved to symbol-else-ISIN
	ListPositions(ctx context.Context) ([]PositionRow, error)

	// AggregateByFundMonth sums market value and realized P/L per
	// (fund, month), ordered by date then fund
	AggregateByFundMonth(ctx context.Context) ([]FundMonthlyPerformance, error)

	// Count returns the number of stored position rows
	Count(ctx context.Context) (int, error)
}

// ReferencePriceRepository manages the master reference price tables
type ReferencePriceRepository interface {
	// SaveBatch inserts reference price observations into the table matching
	// their asset class
	SaveBatch(ctx context.Context, prices []ReferencePrice) error

	// ListAll returns all reference prices across asset classes
	ListAll(ctx context.Context) ([]ReferencePrice, error)

	// Count returns the number of stored reference price rows
	Count(ctx context.Context) (int, error)
}
