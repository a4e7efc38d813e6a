package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rswy/investment-analysis/internal/contracts"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ndec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var tolerance = dec("0.0001")

func position(fund, identifier string, d time.Time, price decimal.NullDecimal) contracts.PositionRow {
	return contracts.PositionRow{
		EOMDate:       d,
		FinancialType: "EQUITY",
		Identifier:    identifier,
		FundName:      fund,
		ReportedPrice: price,
	}
}

func reference(identifier string, d time.Time, price decimal.NullDecimal) contracts.ReferencePrice {
	return contracts.ReferencePrice{
		Identifier:  identifier,
		EOMDate:     d,
		MasterPrice: price,
		AssetClass:  contracts.AssetClassEquity,
	}
}

func TestReconcileExactDateMatch(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), ndec("150.0")),
	}
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 31), ndec("150.0")),
	}

	results, summary := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	require.True(t, results[0].MasterPriceFilled.Valid)
	assert.True(t, results[0].MasterPriceFilled.Decimal.Equal(dec("150.0")))

	require.True(t, results[0].PriceDifference.Valid)
	assert.True(t, results[0].PriceDifference.Decimal.IsZero())

	assert.Equal(t, 0, summary.PositionsWithDiffs)
	assert.Equal(t, 0, summary.UnmatchedPositions)
}

func TestReconcileNegativeDifference(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Bond Fund", "BOND1", date(2023, time.January, 31), ndec("95.0")),
	}
	references := []contracts.ReferencePrice{
		{Identifier: "BOND1", EOMDate: date(2023, time.January, 31), MasterPrice: ndec("96.0"), AssetClass: contracts.AssetClassBond},
	}

	results, summary := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	require.True(t, results[0].PriceDifference.Valid)
	assert.True(t, results[0].PriceDifference.Decimal.Equal(dec("-1.0")))
	assert.Equal(t, 1, summary.PositionsWithDiffs)
}

func TestReconcileLastAvailablePrice(t *testing.T) {
	// No observation on the report date; the mid-month price carries forward.
	positions := []contracts.PositionRow{
		position("Alpha Fund", "GOOGL", date(2023, time.January, 31), ndec("2100.0")),
	}
	references := []contracts.ReferencePrice{
		reference("GOOGL", date(2023, time.January, 15), ndec("2000.0")),
	}

	results, _ := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	require.True(t, results[0].MasterPriceFilled.Valid)
	assert.True(t, results[0].MasterPriceFilled.Decimal.Equal(dec("2000.0")))
	require.True(t, results[0].PriceDifference.Valid)
	assert.True(t, results[0].PriceDifference.Decimal.Equal(dec("100.0")))
}

func TestReconcileNeverUsesLaterPrice(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "MSFT", date(2023, time.January, 31), ndec("300.0")),
	}
	references := []contracts.ReferencePrice{
		reference("MSFT", date(2023, time.January, 10), ndec("290.0")),
		reference("MSFT", date(2023, time.February, 5), ndec("310.0")),
	}

	results, _ := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	require.True(t, results[0].MasterPriceFilled.Valid)
	assert.True(t, results[0].MasterPriceFilled.Decimal.Equal(dec("290.0")),
		"filled price must be the most recent at or before the report date, got %s",
		results[0].MasterPriceFilled.Decimal)
}

func TestReconcileReportBeforeFirstObservation(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "TSLA", date(2023, time.January, 31), ndec("180.0")),
	}
	references := []contracts.ReferencePrice{
		reference("TSLA", date(2023, time.February, 15), ndec("190.0")),
	}

	results, summary := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	assert.False(t, results[0].MasterPriceFilled.Valid)
	assert.False(t, results[0].PriceDifference.Valid)
	assert.Equal(t, 1, summary.UnmatchedPositions)
}

func TestReconcileUnknownIdentifier(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "UNKNOWN", date(2023, time.January, 31), ndec("42.0")),
		position("Beta Fund", "UNKNOWN", date(2023, time.February, 28), ndec("43.0")),
	}
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 31), ndec("150.0")),
	}

	results, summary := Reconcile(positions, references, tolerance)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.False(t, r.MasterPriceFilled.Valid)
		assert.False(t, r.PriceDifference.Valid)
	}
	assert.Equal(t, 2, summary.UnmatchedPositions)
}

func TestReconcileNullReportedPrice(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), decimal.NullDecimal{}),
	}
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 31), ndec("150.0")),
	}

	results, summary := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	// The master price still fills, but the difference stays null.
	require.True(t, results[0].MasterPriceFilled.Valid)
	assert.False(t, results[0].PriceDifference.Valid)
	assert.Equal(t, 0, summary.PositionsWithDiffs)
	assert.Equal(t, 0, summary.UnmatchedPositions)
}

func TestReconcileEmptyInputs(t *testing.T) {
	results, summary := Reconcile(nil, nil, tolerance)

	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 0, summary.TotalPositions)
	assert.False(t, summary.MaxAbsDifference.Valid)
	assert.False(t, summary.MeanAbsDifference.Valid)
}

func TestReconcileDifferenceIsExact(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), ndec("150.07")),
		position("Beta Fund", "AAPL", date(2023, time.January, 31), ndec("149.93")),
	}
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 31), ndec("150.00")),
	}

	results, _ := Reconcile(positions, references, tolerance)
	require.Len(t, results, 2)

	for _, r := range results {
		require.True(t, r.PriceDifference.Valid)
		expected := r.ReportedPrice.Decimal.Sub(r.MasterPriceFilled.Decimal)
		assert.True(t, r.PriceDifference.Decimal.Equal(expected))
	}
}

func TestReconcileDuplicateObservationsLastWins(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), ndec("151.0")),
	}
	// Two observations on the same date: the later input row supersedes.
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 31), ndec("150.0")),
		reference("AAPL", date(2023, time.January, 31), ndec("151.0")),
	}

	results, _ := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	require.True(t, results[0].MasterPriceFilled.Valid)
	assert.True(t, results[0].MasterPriceFilled.Decimal.Equal(dec("151.0")))
}

func TestReconcileNullObservationDoesNotOverwrite(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), ndec("150.0")),
	}
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 10), ndec("149.0")),
		reference("AAPL", date(2023, time.January, 20), decimal.NullDecimal{}),
	}

	results, _ := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	// A null observation must not clear the carried-forward price.
	require.True(t, results[0].MasterPriceFilled.Valid)
	assert.True(t, results[0].MasterPriceFilled.Decimal.Equal(dec("149.0")))
}

func TestReconcileIdentifierNormalization(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", " AAPL ", date(2023, time.January, 31), ndec("150.0")),
	}
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 31), ndec("150.0")),
	}

	results, _ := Reconcile(positions, references, tolerance)
	require.Len(t, results, 1)

	assert.Equal(t, "AAPL", results[0].Identifier)
	assert.True(t, results[0].MasterPriceFilled.Valid)
}

func TestReconcileSummaryStatistics(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), ndec("150.0")),  // diff 0
		position("Beta Fund", "GOOGL", date(2023, time.January, 31), ndec("2103.0")), // diff 3
		position("Gamma Fund", "MSFT", date(2023, time.January, 31), ndec("301.0")),  // diff 1
		position("Delta Fund", "NOREF", date(2023, time.January, 31), ndec("10.0")),  // unmatched
	}
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 31), ndec("150.0")),
		reference("GOOGL", date(2023, time.January, 31), ndec("2100.0")),
		reference("MSFT", date(2023, time.January, 31), ndec("300.0")),
	}

	_, summary := Reconcile(positions, references, tolerance)

	assert.Equal(t, 4, summary.TotalPositions)
	assert.Equal(t, 2, summary.PositionsWithDiffs)
	assert.Equal(t, 1, summary.UnmatchedPositions)

	require.True(t, summary.MaxAbsDifference.Valid)
	assert.True(t, summary.MaxAbsDifference.Decimal.Equal(dec("3")))

	// Mean over the three matched positions: (0 + 3 + 1) / 3
	require.True(t, summary.MeanAbsDifference.Valid)
	assert.True(t, summary.MeanAbsDifference.Decimal.Equal(dec("4").Div(dec("3"))))
}

func TestReconcileToleranceBoundary(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), ndec("150.0001")),
		position("Beta Fund", "AAPL", date(2023, time.January, 31), ndec("150.0002")),
	}
	references := []contracts.ReferencePrice{
		reference("AAPL", date(2023, time.January, 31), ndec("150.0")),
	}

	_, summary := Reconcile(positions, references, tolerance)

	// |diff| must strictly exceed the tolerance to count as a break.
	assert.Equal(t, 1, summary.PositionsWithDiffs)
}

func TestReconcileIsDeterministic(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), ndec("150.5")),
		position("Beta Fund", "GOOGL", date(2023, time.February, 28), ndec("2050.0")),
		position("Alpha Fund", "BOND1", date(2023, time.January, 31), decimal.NullDecimal{}),
	}
	references := []contracts.ReferencePrice{
		reference("GOOGL", date(2023, time.January, 15), ndec("2000.0")),
		reference("AAPL", date(2023, time.January, 31), ndec("150.0")),
		reference("GOOGL", date(2023, time.February, 10), ndec("2040.0")),
	}

	first, firstSummary := Reconcile(positions, references, tolerance)
	second, secondSummary := Reconcile(positions, references, tolerance)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSummary, secondSummary)
}

func TestReconcilePreservesPositionOrder(t *testing.T) {
	positions := []contracts.PositionRow{
		position("Zeta Fund", "MSFT", date(2023, time.March, 31), ndec("310.0")),
		position("Alpha Fund", "AAPL", date(2023, time.January, 31), ndec("150.0")),
	}

	results, _ := Reconcile(positions, nil, tolerance)
	require.Len(t, results, 2)

	assert.Equal(t, "Zeta Fund", results[0].FundName)
	assert.Equal(t, "Alpha Fund", results[1].FundName)
}
