package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Fund report files arrive with the fund name and report date embedded in the
// filename, in several competing conventions:
//
//	Fund Name.2023-01-31.csv
//	rpt-FundName.2023-01-31.csv
//	Fund Name.01-31-2023 - details.csv
//	TT_monthly_FundName.20230131.csv
var datePatterns = []*regexp.Regexp{
	// YYYY-MM-DD or YYYY.MM.DD
	regexp.MustCompile(`(?P<year>\d{4})[-.](?P<month>\d{1,2})[-.](?P<day>\d{1,2})`),
	// MM-DD-YYYY or DD-MM-YYYY (ambiguous, resolved in normalizeDate)
	regexp.MustCompile(`(?P<first>\d{1,2})[-.](?P<second>\d{1,2})[-.](?P<year>\d{4})`),
	// YYYYMMDD
	regexp.MustCompile(`(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})`),
	// MM_DD_YYYY or DD_MM_YYYY
	regexp.MustCompile(`(?P<first>\d{1,2})_(?P<second>\d{1,2})_(?P<year>\d{4})`),
}

// Report-style prefixes and decorations stripped from extracted fund names
var fundNameNoise = []string{
	"Fund ",
	"Report-of-",
	"mend-report ",
	"rpt-",
	"TT_monthly_",
}

// ExtractFundInfo extracts the fund name and end-of-month report date from a
// fund report filename. The date is normalized to UTC midnight regardless of
// the filename convention. Filenames without a recognizable date are a
// structural error: the file cannot be attributed to a reporting period.
func ExtractFundInfo(filename string) (string, time.Time, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	for _, re := range datePatterns {
		loc := re.FindStringSubmatchIndex(base)
		if loc == nil {
			continue
		}

		parts := submatchInts(re, base)

		var eom time.Time
		var err error
		if _, ambiguous := parts["first"]; ambiguous {
			// Try month-first, then day-first.
			eom, err = normalizeDate(parts["year"], parts["first"], parts["second"])
			if err != nil {
				eom, err = normalizeDate(parts["year"], parts["second"], parts["first"])
			}
		} else {
			eom, err = normalizeDate(parts["year"], parts["month"], parts["day"])
		}
		if err != nil {
			return "", time.Time{}, fmt.Errorf("filename %q: %w", filename, err)
		}

		fund := cleanFundName(base[:loc[0]])
		if fund == "" {
			return "", time.Time{}, fmt.Errorf("filename %q: no fund name before date", filename)
		}

		return fund, eom, nil
	}

	return "", time.Time{}, fmt.Errorf("no date pattern found in filename %q", filename)
}

// submatchInts returns the named capture groups of the first match as ints
func submatchInts(re *regexp.Regexp, s string) map[string]int {
	match := re.FindStringSubmatch(s)
	parts := make(map[string]int)
	for i, name := range re.SubexpNames() {
		if name == "" || i >= len(match) {
			continue
		}
		value, err := strconv.Atoi(match[i])
		if err != nil {
			continue
		}
		parts[name] = value
	}
	return parts
}

// normalizeDate validates date components, swapping month and day when the
// month position clearly holds a day value
func normalizeDate(year, month, day int) (time.Time, error) {
	if month > 12 {
		month, day = day, month
	}

	if year < 1900 || year > 2100 {
		return time.Time{}, fmt.Errorf("year %d outside valid range (1900-2100)", year)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d outside valid range (1-12)", month)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day %d outside valid range (1-31)", day)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// cleanFundName strips report-style prefixes and surrounding separators
func cleanFundName(s string) string {
	for _, noise := range fundNameNoise {
		s = strings.ReplaceAll(s, noise, "")
	}
	return strings.Trim(s, " .-_")
}
