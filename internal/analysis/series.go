package analysis

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"cobranza/internal/config"
	"cobranza/internal/dataset"
)

// MonthlyPoint is the amount collected in one calendar month.
type MonthlyPoint struct {
	Month string
	Total decimal.Decimal
}

// BankTotal is the amount collected by one bank across all years.
type BankTotal struct {
	Bank  string
	Total decimal.Decimal
}

// ReasonCount is how often a bank response description occurs.
type ReasonCount struct {
	Description string
	Count       int
}

// DefaultTopN is the number of banks and responses charted.
const DefaultTopN = 10

// MonthlySeries sums montocobrado per mes, ascending by month. Rows
// without a month bucket are excluded and an amount that does not parse is
// a parsing error. Run BucketMonths first.
func MonthlySeries(t *dataset.Table) ([]MonthlyPoint, error) {
	if err := dataset.RequireColumns(t, config.ColMonth, config.ColCollected); err != nil {
		return nil, err
	}
	monthCol, _ := t.ColumnIndex(config.ColMonth)
	amountCol, _ := t.ColumnIndex(config.ColCollected)

	totals := make(map[string]decimal.Decimal)
	for i := 0; i < t.Len(); i++ {
		month := t.Value(i, monthCol)
		if month == "" {
			continue
		}
		amount, err := collectedAmount(t, i, amountCol)
		if err != nil {
			return nil, err
		}
		sum, ok := totals[month]
		if !ok {
			sum = decimal.Zero
		}
		totals[month] = sum.Add(amount)
	}

	out := make([]MonthlyPoint, 0, len(totals))
	for m, total := range totals {
		out = append(out, MonthlyPoint{Month: m, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// TopBanks sums the summary totals per bank over all years and returns the
// n largest, ties broken by bank name.
func TopBanks(rows []SummaryRow, n int) []BankTotal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range rows {
		sum, ok := totals[r.Bank]
		if !ok {
			sum = decimal.Zero
		}
		totals[r.Bank] = sum.Add(r.Total)
	}

	out := make([]BankTotal, 0, len(totals))
	for bank, total := range totals {
		out = append(out, BankTotal{Bank: bank, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Bank < out[j].Bank
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RejectionReasons counts the descripcion values of the enriched table and
// returns the n most frequent, ties broken by text. Empty descriptions are
// not counted.
func RejectionReasons(t *dataset.Table, n int) ([]ReasonCount, error) {
	col, err := t.MustColumn(config.ColDescription)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		d := t.Value(i, col)
		if strings.TrimSpace(d) == "" {
			continue
		}
		counts[d]++
	}

	out := make([]ReasonCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, ReasonCount{Description: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Description < out[j].Description
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
