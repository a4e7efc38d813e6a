package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset classes for master reference prices.
const (
	AssetClassEquity = "EQUITY"
	AssetClassBond   = "BOND"
)

// FundPosition is one preprocessed row of a fund report, as stored in the
// fund_positions table. Price may be null when the report carried a missing
// or non-numeric value; RealisedPL and Quantity default to zero.
type FundPosition struct {
	FundName      string
	EOMDate       time.Time
	FinancialType string
	Symbol        string
	SecurityName  string
	Sedol         string
	ISIN          string
	Price         decimal.NullDecimal
	Quantity      decimal.Decimal
	RealisedPL    decimal.Decimal
	MarketValue   decimal.Decimal
}

// PositionRow is one row of the position query feeding reconciliation.
// Identifier is the symbol when present, otherwise the ISIN, and is never
// null (missing identifiers collapse to the empty string).
type PositionRow struct {
	EOMDate       time.Time
	FinancialType string
	Identifier    string
	FundName      string
	ReportedPrice decimal.NullDecimal
}

// ReferencePrice is one master price observation. Observations form a time
// series per identifier and arrive unordered; dates are not restricted to
// month-ends.
type ReferencePrice struct {
	Identifier  string
	EOMDate     time.Time
	MasterPrice decimal.NullDecimal
	AssetClass  string
}

// ReconciliationResult is one output row of the reconciliation engine,
// one per input position. MasterPriceFilled is null when no reference price
// exists at or before the position date; PriceDifference is null whenever
// either price is null.
type ReconciliationResult struct {
	FundName          string
	EOMDate           time.Time
	FinancialType     string
	Identifier        string
	ReportedPrice     decimal.NullDecimal
	MasterPriceFilled decimal.NullDecimal
	PriceDifference   decimal.NullDecimal
}

// ReconciliationSummary aggregates the outcome of a reconciliation run.
type ReconciliationSummary struct {
	TotalPositions     int
	PositionsWithDiffs int
	UnmatchedPositions int
	MaxAbsDifference   decimal.NullDecimal
	MeanAbsDifference  decimal.NullDecimal
}

// FundMonthlyPerformance is the per-fund, per-month aggregate feeding the
// attribution engine. FundMVStart is the previous month's FundMVEnd for the
// same fund and is null for the fund's first observed month; RateOfReturn is
// null wherever FundMVStart is null or zero.
type FundMonthlyPerformance struct {
	FundName     string
	EOMDate      time.Time
	FundMVEnd    decimal.Decimal
	RealizedPL   decimal.Decimal
	FundMVStart  decimal.NullDecimal
	RateOfReturn decimal.NullDecimal
}

// BestPerformerResult names the fund with the highest rate of return for one
// calendar month.
type BestPerformerResult struct {
	EOMDate             time.Time
	BestPerformingFund  string
	HighestRateOfReturn decimal.Decimal
}

// DateOnly truncates a timestamp to its calendar date in UTC. All date
// comparisons in the engines operate on this normalized form.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
