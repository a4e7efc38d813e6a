package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rswy/investment-analysis/internal/contracts"
	"github.com/rswy/investment-analysis/pkg/logger"
)

var (
	columnSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	identifierNoise  = regexp.MustCompile(`X_|SEC-|FIN-`)
)

// Preprocessor standardizes external fund report CSVs into FundPosition rows.
// Data-quality gaps become nulls or dropped rows with a warning; only files
// that cannot be attributed or parsed at all fail.
type Preprocessor struct {
	logger *logger.Logger
}

// NewPreprocessor creates a new preprocessor
func NewPreprocessor(log *logger.Logger) *Preprocessor {
	return &Preprocessor{logger: log}
}

// LoadDirectory preprocesses every fund report CSV in dir. A file that fails
// to parse is logged and skipped; the rest of the batch continues.
func (p *Preprocessor) LoadDirectory(dir string) ([]contracts.FundPosition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fund report directory: %w", err)
	}

	var all []contracts.FundPosition
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			p.logger.WithField("file", entry.Name()).Debug("Skipping non-CSV file")
			continue
		}

		positions, err := p.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			p.logger.WithError(err).WithField("file", entry.Name()).
				Error("Failed to process fund report, skipping file")
			continue
		}
		all = append(all, positions...)
	}

	p.logger.WithField("positions", len(all)).Info("Fund report preprocessing completed")
	return all, nil
}

// LoadFile preprocesses a single fund report CSV. The fund name and report
// date come from the filename and apply to every row.
func (p *Preprocessor) LoadFile(path string) ([]contracts.FundPosition, error) {
	fund, eomDate, err := ExtractFundInfo(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fund report: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse fund report %s: %w", path, err)
	}
	if len(records) < 2 {
		return []contracts.FundPosition{}, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[standardizeColumn(name)] = i
	}
	if _, ok := columns["market_value"]; !ok {
		return nil, fmt.Errorf("fund report %s has no market_value column", path)
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	positions := make([]contracts.FundPosition, 0, len(records)-1)
	dropped := 0

	for _, row := range records[1:] {
		marketValue := parseNullDecimal(field(row, "market_value"))
		if !marketValue.Valid {
			dropped++
			continue
		}

		positions = append(positions, contracts.FundPosition{
			FundName:      fund,
			EOMDate:       eomDate,
			FinancialType: field(row, "financial_type"),
			Symbol:        cleanIdentifier(field(row, "symbol")),
			SecurityName:  cleanIdentifier(field(row, "security_name")),
			Sedol:         field(row, "sedol"),
			ISIN:          field(row, "isin"),
			Price:         parseNullDecimal(field(row, "price")),
			Quantity:      parseDecimalOrZero(field(row, "quantity")),
			RealisedPL:    parseDecimalOrZero(field(row, "realised_p_l")),
			MarketValue:   marketValue.Decimal,
		})
	}

	if dropped > 0 {
		p.logger.WithFields(map[string]interface{}{
			"fund":    fund,
			"date":    eomDate.Format("2006-01-02"),
			"dropped": dropped,
		}).Warn("DQ alert: rows with missing market_value dropped")
	}

	return positions, nil
}

// standardizeColumn lowercases a header and collapses separator runs to
// underscores: "Realised P/L" becomes "realised_p_l"
func standardizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = columnSeparators.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// cleanIdentifier strips feed-specific prefixes such as X_, SEC- and FIN-
func cleanIdentifier(s string) string {
	return strings.TrimSpace(identifierNoise.ReplaceAllString(s, ""))
}

// parseNullDecimal coerces a report field to a decimal; missing or
// non-numeric values become null, never zero and never an error
func parseNullDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(value)
}

// parseDecimalOrZero coerces a report field to a decimal, defaulting to zero.
// Only used for fields that are summed, where absence means "nothing".
func parseDecimalOrZero(s string) decimal.Decimal {
	parsed := parseNullDecimal(s)
	if !parsed.Valid {
		return decimal.Zero
	}
	return parsed.Decimal
}
