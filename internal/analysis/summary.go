package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"cobranza/internal/config"
	"cobranza/internal/dataset"
	apperrors "cobranza/internal/errors"
)

// SummaryRow is one (year, bank) aggregate.
type SummaryRow struct {
	Year     int
	Bank     string
	Total    decimal.Decimal
	Attempts int
}

// SummaryHeaders is the header row of the summary CSV.
var SummaryHeaders = []string{config.ColYear, config.ColName, config.ColTotal, config.ColAttempts}

type yearBank struct {
	year int
	bank string
}

// SummarizeByYearBank groups the enriched table by (año, nombre). Every
// row counts as an attempt; missing amounts add nothing to the total and
// an amount that does not parse is a parsing error. Rows without a bank
// name or year are not grouped.
func SummarizeByYearBank(t *dataset.Table) ([]SummaryRow, error) {
	if err := dataset.RequireColumns(t, config.ColYear, config.ColName, config.ColCollected); err != nil {
		return nil, err
	}
	yearCol, _ := t.ColumnIndex(config.ColYear)
	nameCol, _ := t.ColumnIndex(config.ColName)
	amountCol, _ := t.ColumnIndex(config.ColCollected)

	groups := make(map[yearBank]*SummaryRow)
	for i := 0; i < t.Len(); i++ {
		bank := t.Value(i, nameCol)
		if strings.TrimSpace(bank) == "" {
			continue
		}
		year, ok := t.Int(i, yearCol)
		if !ok {
			continue
		}
		key := yearBank{int(year), bank}
		row, exists := groups[key]
		if !exists {
			row = &SummaryRow{Year: int(year), Bank: bank, Total: decimal.Zero}
			groups[key] = row
		}
		amount, err := collectedAmount(t, i, amountCol)
		if err != nil {
			return nil, err
		}
		row.Attempts++
		row.Total = row.Total.Add(amount)
	}

	out := make([]SummaryRow, 0, len(groups))
	for _, row := range groups {
		out = append(out, *row)
	}
	SortSummary(out)
	return out, nil
}

// collectedAmount reads montocobrado on row i. An empty cell is zero.
func collectedAmount(t *dataset.Table, i, col int) (decimal.Decimal, error) {
	raw := t.Value(i, col)
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	amount, ok := t.Decimal(i, col)
	if !ok {
		return decimal.Zero, apperrors.NewParsingError(
			fmt.Sprintf("invalid %s %q on row %d", config.ColCollected, raw, i+1), nil).
			WithContext("table", t.Name)
	}
	return amount, nil
}

// SortSummary orders rows ascending by (year, bank).
func SortSummary(rows []SummaryRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Bank < rows[j].Bank
	})
}

// SummaryRecords renders rows as CSV records matching SummaryHeaders.
func SummaryRecords(rows []SummaryRow) [][]string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			strconv.Itoa(r.Year),
			r.Bank,
			r.Total.String(),
			strconv.Itoa(r.Attempts),
		}
	}
	return records
}

// SummaryFromTable reads a summary previously written with SummaryHeaders.
func SummaryFromTable(t *dataset.Table) ([]SummaryRow, error) {
	if err := dataset.RequireColumns(t, config.ColYear, config.ColName, config.ColTotal); err != nil {
		return nil, err
	}
	yearCol, _ := t.ColumnIndex(config.ColYear)
	nameCol, _ := t.ColumnIndex(config.ColName)
	totalCol, _ := t.ColumnIndex(config.ColTotal)
	attemptsCol, hasAttempts := t.ColumnIndex(config.ColAttempts)

	rows := make([]SummaryRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		year, ok := t.Int(i, yearCol)
		if !ok {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("invalid %s %q on row %d", config.ColYear, t.Value(i, yearCol), i+1), nil).
				WithContext("table", t.Name)
		}
		total, ok := t.Decimal(i, totalCol)
		if !ok && strings.TrimSpace(t.Value(i, totalCol)) != "" {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("invalid %s %q on row %d", config.ColTotal, t.Value(i, totalCol), i+1), nil).
				WithContext("table", t.Name)
		}
		row := SummaryRow{Year: int(year), Bank: t.Value(i, nameCol), Total: total}
		if hasAttempts {
			if n, ok := t.Int(i, attemptsCol); ok {
				row.Attempts = int(n)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
