// Package scenario compares the observed yearly collection (Escenario A)
// with a what-if where a set of target banks collect a fixed fraction more
// (Escenario B).
package scenario

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"cobranza/internal/analysis"
	"cobranza/internal/config"
	"cobranza/internal/infrastructure"
)

// Scenario labels used in the comparison output.
const (
	LabelA = "Escenario A"
	LabelB = "Escenario B"
)

// ComparisonHeaders is the header row of the comparison CSV.
var ComparisonHeaders = []string{config.ColYear, config.ColTotal, config.ColScenario}

// Options configures the what-if.
type Options struct {
	TargetBanks []string
	Uplift      float64
}

// ComparisonRow is the yearly total of one scenario.
type ComparisonRow struct {
	Year     int
	Total    decimal.Decimal
	Scenario string
}

// Result is the outcome of Compare.
type Result struct {
	Rows      []ComparisonRow
	Affected  int
	Unmatched []string
}

// ApplyUplift returns a copy of rows where the total of every row whose
// bank is in targets is multiplied by (1 + uplift). Names are matched
// exactly. It also reports how many rows changed and which targets matched
// no row.
func ApplyUplift(rows []analysis.SummaryRow, targets []string, uplift float64) ([]analysis.SummaryRow, int, []string) {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(uplift))

	targetSet := make(map[string]bool, len(targets))
	for _, t := range targets {
		targetSet[t] = true
	}
	seen := make(map[string]bool, len(targets))

	out := make([]analysis.SummaryRow, len(rows))
	affected := 0
	for i, r := range rows {
		out[i] = r
		if targetSet[r.Bank] {
			out[i].Total = r.Total.Mul(factor)
			seen[r.Bank] = true
			affected++
		}
	}

	var unmatched []string
	for _, t := range targets {
		if !seen[t] {
			unmatched = append(unmatched, t)
			seen[t] = true
		}
	}
	return out, affected, unmatched
}

// SummarizeByYear sums totals per year, ascending, and labels each row.
func SummarizeByYear(rows []analysis.SummaryRow, label string) []ComparisonRow {
	totals := make(map[int]decimal.Decimal)
	for _, r := range rows {
		sum, ok := totals[r.Year]
		if !ok {
			sum = decimal.Zero
		}
		totals[r.Year] = sum.Add(r.Total)
	}

	out := make([]ComparisonRow, 0, len(totals))
	for year, total := range totals {
		out = append(out, ComparisonRow{Year: year, Total: total, Scenario: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Compare builds both scenarios from the year/bank summary and returns
// them concatenated, Escenario A first. Targets that match no bank are
// logged and otherwise ignored.
func Compare(ctx context.Context, rows []analysis.SummaryRow, opts Options) Result {
	logger := infrastructure.LoggerWithContext(ctx)

	adjusted, affected, unmatched := ApplyUplift(rows, opts.TargetBanks, opts.Uplift)
	for _, name := range unmatched {
		logger.WarnContext(ctx, "Target bank not present in summary",
			slog.String("bank", name))
	}

	a := SummarizeByYear(rows, LabelA)
	b := SummarizeByYear(adjusted, LabelB)

	for i := range a {
		delta := b[i].Total.Sub(a[i].Total)
		logger.InfoContext(ctx, "Scenario delta",
			slog.Int("year", a[i].Year),
			slog.String("escenario_a", a[i].Total.StringFixed(2)),
			slog.String("escenario_b", b[i].Total.StringFixed(2)),
			slog.String("delta", delta.StringFixed(2)))
	}
	logger.InfoContext(ctx, "Scenario comparison built",
		slog.Int("summary_rows", len(rows)),
		slog.Int("affected_rows", affected),
		slog.Float64("uplift", opts.Uplift),
		slog.Int("unmatched_targets", len(unmatched)))

	return Result{
		Rows:      append(a, b...),
		Affected:  affected,
		Unmatched: unmatched,
	}
}

// Records renders comparison rows as CSV records matching ComparisonHeaders.
func Records(rows []ComparisonRow) [][]string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{strconv.Itoa(r.Year), r.Total.String(), r.Scenario}
	}
	return records
}

// Series splits comparison rows by scenario label, keeping label order of
// first appearance.
func Series(rows []ComparisonRow) (labels []string, byLabel map[string][]ComparisonRow) {
	byLabel = make(map[string][]ComparisonRow)
	for _, r := range rows {
		if _, ok := byLabel[r.Scenario]; !ok {
			labels = append(labels, r.Scenario)
		}
		byLabel[r.Scenario] = append(byLabel[r.Scenario], r)
	}
	return labels, byLabel
}
