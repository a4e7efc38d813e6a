package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/rswy/investment-analysis/internal/contracts"
	"github.com/rswy/investment-analysis/pkg/logger"
)

// CSVExporter writes pipeline outputs as CSV reports. Null values are written
// as empty cells so downstream tools distinguish them from zero.
type CSVExporter struct {
	dir    string
	logger *logger.Logger
}

// NewCSVExporter creates a new CSV exporter writing into dir
func NewCSVExporter(dir string, log *logger.Logger) *CSVExporter {
	return &CSVExporter{dir: dir, logger: log}
}

// WriteReconciliation writes the per-position reconciliation report
func (e *CSVExporter) WriteReconciliation(filename string, results []contracts.ReconciliationResult) error {
	header := []string{
		"fund_name", "eom_date", "financial_type", "identifier",
		"reported_price", "master_price_filled", "price_difference",
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.FundName,
			r.EOMDate.Format("2006-01-02"),
			r.FinancialType,
			r.Identifier,
			nullCell(r.ReportedPrice),
			nullCell(r.MasterPriceFilled),
			nullCell(r.PriceDifference),
		})
	}

	return e.write(filename, header, rows)
}

// WriteBestPerformers writes the month-by-month best performer report
func (e *CSVExporter) WriteBestPerformers(filename string, performers []contracts.BestPerformerResult) error {
	header := []string{"eom_date", "best_performing_fund", "highest_ror"}

	rows := make([][]string, 0, len(performers))
	for _, p := range performers {
		rows = append(rows, []string{
			p.EOMDate.Format("2006-01-02"),
			p.BestPerformingFund,
			p.HighestRateOfReturn.String(),
		})
	}

	return e.write(filename, header, rows)
}

func (e *CSVExporter) write(filename string, header []string, rows [][]string) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(e.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	e.logger.WithFields(map[string]interface{}{
		"file": path,
		"rows": len(rows),
	}).Info("Report exported")

	return nil
}

func nullCell(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
