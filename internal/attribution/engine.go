package attribution

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rswy/investment-analysis/internal/contracts"
	"github.com/rswy/investment-analysis/pkg/logger"
)

// Engine computes the monthly rate of return per fund and names the best
// performer for each month.
type Engine struct {
	positions contracts.PositionRepository
	logger    *logger.Logger
}

// NewEngine creates a new attribution engine
func NewEngine(positions contracts.PositionRepository, log *logger.Logger) *Engine {
	return &Engine{
		positions: positions,
		logger:    log,
	}
}

// Run aggregates positions per (fund, month), computes each fund's lagged
// rate of return, and selects one winner per month. An empty aggregate is a
// warning, not an error.
func (e *Engine) Run(ctx context.Context) ([]contracts.BestPerformerResult, error) {
	aggregate, err := e.positions.AggregateByFundMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate fund performance: %w", err)
	}

	if len(aggregate) == 0 {
		e.logger.Warn("No fund performance data found for attribution")
		return []contracts.BestPerformerResult{}, nil
	}

	performance := ComputeRatesOfReturn(aggregate)
	best := SelectBestPerformers(performance)

	e.logger.WithFields(map[string]interface{}{
		"fund_months": len(performance),
		"months":      len(best),
	}).Info("Performance attribution completed")

	return best, nil
}

// ComputeRatesOfReturn orders the aggregate by fund then date and derives
// each month's starting market value from the previous month's closing value
// for the same fund. The first observed month per fund has no predecessor and
// keeps a null start; its rate of return stays null as well. A zero starting
// value also yields a null rate, never a division error.
//
// RoR = (fund_mv_end - fund_mv_start + realized_p_l) / fund_mv_start
func ComputeRatesOfReturn(aggregate []contracts.FundMonthlyPerformance) []contracts.FundMonthlyPerformance {
	rows := make([]contracts.FundMonthlyPerformance, len(aggregate))
	copy(rows, aggregate)

	for i := range rows {
		rows[i].EOMDate = contracts.DateOnly(rows[i].EOMDate)
		rows[i].FundMVStart = decimal.NullDecimal{}
		rows[i].RateOfReturn = decimal.NullDecimal{}
	}

	// Sort on the parsed date, never on its textual form.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].FundName != rows[j].FundName {
			return rows[i].FundName < rows[j].FundName
		}
		return rows[i].EOMDate.Before(rows[j].EOMDate)
	})

	for i := range rows {
		if i == 0 || rows[i].FundName != rows[i-1].FundName {
			continue
		}
		rows[i].FundMVStart = decimal.NewNullDecimal(rows[i-1].FundMVEnd)

		start := rows[i].FundMVStart.Decimal
		if start.IsZero() {
			continue
		}
		ror := rows[i].FundMVEnd.Sub(start).Add(rows[i].RealizedPL).Div(start)
		rows[i].RateOfReturn = decimal.NewNullDecimal(ror)
	}

	return rows
}

// SelectBestPerformers drops rows with an undefined rate of return and picks
// the highest-returning fund per month. Ties resolve to the lexically
// smallest fund name so selection never depends on row arrival order.
func SelectBestPerformers(performance []contracts.FundMonthlyPerformance) []contracts.BestPerformerResult {
	best := make(map[time.Time]contracts.BestPerformerResult)

	for _, row := range performance {
		if !row.RateOfReturn.Valid {
			continue
		}

		ror := row.RateOfReturn.Decimal
		current, seen := best[row.EOMDate]
		replace := !seen ||
			ror.GreaterThan(current.HighestRateOfReturn) ||
			(ror.Equal(current.HighestRateOfReturn) && row.FundName < current.BestPerformingFund)

		if replace {
			best[row.EOMDate] = contracts.BestPerformerResult{
				EOMDate:             row.EOMDate,
				BestPerformingFund:  row.FundName,
				HighestRateOfReturn: ror,
			}
		}
	}

	results := make([]contracts.BestPerformerResult, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].EOMDate.Before(results[j].EOMDate)
	})

	return results
}
