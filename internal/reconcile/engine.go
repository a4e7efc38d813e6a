package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rswy/investment-analysis/internal/contracts"
	"github.com/rswy/investment-analysis/pkg/logger"
)

// Options holds reconciliation thresholds
type Options struct {
	// Absolute differences above this value count as price breaks.
	// Prices are never compared with exact equality.
	Tolerance decimal.Decimal
}

// Engine compares fund-reported prices against master reference prices,
// falling back to the last available reference price when no observation
// exists on the report date.
type Engine struct {
	positions  contracts.PositionRepository
	references contracts.ReferencePriceRepository
	opts       Options
	logger     *logger.Logger
}

// NewEngine creates a new reconciliation engine
func NewEngine(positions contracts.PositionRepository, references contracts.ReferencePriceRepository, opts Options, log *logger.Logger) *Engine {
	return &Engine{
		positions:  positions,
		references: references,
		opts:       opts,
		logger:     log,
	}
}

// Run loads positions and reference prices from the store and reconciles
// them. The output has exactly one row per position, in position order.
func (e *Engine) Run(ctx context.Context) ([]contracts.ReconciliationResult, contracts.ReconciliationSummary, error) {
	positions, err := e.positions.ListPositions(ctx)
	if err != nil {
		return nil, contracts.ReconciliationSummary{}, fmt.Errorf("list positions: %w", err)
	}

	references, err := e.references.ListAll(ctx)
	if err != nil {
		return nil, contracts.ReconciliationSummary{}, fmt.Errorf("list reference prices: %w", err)
	}

	results, summary := Reconcile(positions, references, e.opts.Tolerance)

	if summary.UnmatchedPositions > 0 {
		e.logger.WithField("count", summary.UnmatchedPositions).
			Warn("Positions have no master price (exact or last available)")
	}

	e.logger.WithFields(map[string]interface{}{
		"total_positions":      summary.TotalPositions,
		"positions_with_diffs": summary.PositionsWithDiffs,
		"unmatched_positions":  summary.UnmatchedPositions,
		"max_abs_diff":         nullDecimalString(summary.MaxAbsDifference),
		"mean_abs_diff":        nullDecimalString(summary.MeanAbsDifference),
	}).Info("Price reconciliation completed")

	return results, summary, nil
}

// timelinePoint is one entry of an identifier's merged price timeline:
// either a reference observation carrying a price, or a fund report date
// marking where a filled price is needed.
type timelinePoint struct {
	identifier string
	date       time.Time
	price      decimal.NullDecimal
	fundReport bool
}

// priceKey addresses a filled price by identifier and report date
type priceKey struct {
	identifier string
	date       time.Time
}

// Reconcile produces one result per position row. For each identifier the
// reference observations and report dates are merged into a single
// chronological timeline and the most recent non-null reference price is
// carried forward; report dates before the first observation stay null.
// Null prices propagate into null differences, never into zeros.
func Reconcile(positions []contracts.PositionRow, references []contracts.ReferencePrice, tolerance decimal.Decimal) ([]contracts.ReconciliationResult, contracts.ReconciliationSummary) {
	points := make([]timelinePoint, 0, len(references)+len(positions))
	for _, r := range references {
		points = append(points, timelinePoint{
			identifier: normalizeIdentifier(r.Identifier),
			date:       contracts.DateOnly(r.EOMDate),
			price:      r.MasterPrice,
		})
	}
	for _, p := range positions {
		points = append(points, timelinePoint{
			identifier: normalizeIdentifier(p.Identifier),
			date:       contracts.DateOnly(p.EOMDate),
			fundReport: true,
		})
	}

	// The stable sort keeps reference observations ahead of same-date report
	// points, so a report on an observation date picks up that exact price.
	// Duplicate observations on one date resolve to the last input row.
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].identifier != points[j].identifier {
			return points[i].identifier < points[j].identifier
		}
		return points[i].date.Before(points[j].date)
	})

	filled := make(map[priceKey]decimal.NullDecimal)
	var lastAvailable decimal.NullDecimal
	currentID := ""
	started := false

	for _, pt := range points {
		if !started || pt.identifier != currentID {
			currentID = pt.identifier
			lastAvailable = decimal.NullDecimal{}
			started = true
		}
		if pt.price.Valid {
			lastAvailable = pt.price
		}
		if pt.fundReport {
			filled[priceKey{pt.identifier, pt.date}] = lastAvailable
		}
	}

	results := make([]contracts.ReconciliationResult, 0, len(positions))
	summary := contracts.ReconciliationSummary{TotalPositions: len(positions)}

	sumAbs := decimal.Zero
	diffCount := 0

	for _, p := range positions {
		identifier := normalizeIdentifier(p.Identifier)
		date := contracts.DateOnly(p.EOMDate)
		master := filled[priceKey{identifier, date}]

		result := contracts.ReconciliationResult{
			FundName:          p.FundName,
			EOMDate:           date,
			FinancialType:     p.FinancialType,
			Identifier:        identifier,
			ReportedPrice:     p.ReportedPrice,
			MasterPriceFilled: master,
		}

		if p.ReportedPrice.Valid && master.Valid {
			diff := p.ReportedPrice.Decimal.Sub(master.Decimal)
			result.PriceDifference = decimal.NewNullDecimal(diff)

			abs := diff.Abs()
			if abs.GreaterThan(tolerance) {
				summary.PositionsWithDiffs++
			}
			if !summary.MaxAbsDifference.Valid || abs.GreaterThan(summary.MaxAbsDifference.Decimal) {
				summary.MaxAbsDifference = decimal.NewNullDecimal(abs)
			}
			sumAbs = sumAbs.Add(abs)
			diffCount++
		}

		if !master.Valid {
			summary.UnmatchedPositions++
		}

		results = append(results, result)
	}

	if diffCount > 0 {
		summary.MeanAbsDifference = decimal.NewNullDecimal(sumAbs.Div(decimal.NewFromInt(int64(diffCount))))
	}

	return results, summary
}

// normalizeIdentifier trims surrounding whitespace. Matching is otherwise
// case-sensitive and exact.
func normalizeIdentifier(s string) string {
	return strings.TrimSpace(s)
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "null"
	}
	return d.Decimal.String()
}
