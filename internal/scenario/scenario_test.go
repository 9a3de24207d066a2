package scenario

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cobranza/internal/analysis"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleSummary() []analysis.SummaryRow {
	return []analysis.SummaryRow{
		{Year: 2022, Bank: "BANORTE", Total: dec("500"), Attempts: 5},
		{Year: 2022, Bank: "HSBC", Total: dec("100"), Attempts: 1},
		{Year: 2023, Bank: "BANORTE", Total: dec("1000000"), Attempts: 10},
		{Year: 2023, Bank: "SANTANDER", Total: dec("250.50"), Attempts: 3},
	}
}

func TestApplyUplift(t *testing.T) {
	rows := sampleSummary()

	out, affected, unmatched := ApplyUplift(rows, []string{"BANORTE", "SANTANDER", "BBVA MEXICO"}, 0.2)

	assert.Equal(t, 3, affected)
	assert.Equal(t, []string{"BBVA MEXICO"}, unmatched)
	assert.True(t, out[2].Total.Equal(decimal.NewFromInt(1200000)), "got %s", out[2].Total)
	assert.True(t, out[0].Total.Equal(dec("600")))
	assert.True(t, out[1].Total.Equal(dec("100")), "non-target rows unchanged")
	assert.True(t, out[3].Total.Equal(dec("300.6")))

	assert.True(t, rows[2].Total.Equal(dec("1000000")), "input not modified")
}

func TestApplyUpliftCaseSensitive(t *testing.T) {
	out, affected, unmatched := ApplyUplift(sampleSummary(), []string{"banorte"}, 0.2)
	assert.Equal(t, 0, affected)
	assert.Equal(t, []string{"banorte"}, unmatched)
	assert.True(t, out[0].Total.Equal(dec("500")))
}

func TestApplyUpliftDuplicateTargets(t *testing.T) {
	_, affected, unmatched := ApplyUplift(sampleSummary(), []string{"X", "X", "HSBC"}, 0.5)
	assert.Equal(t, 1, affected)
	assert.Equal(t, []string{"X"}, unmatched)
}

func TestSummarizeByYear(t *testing.T) {
	rows := SummarizeByYear(sampleSummary(), LabelA)
	require.Len(t, rows, 2)
	assert.Equal(t, 2022, rows[0].Year)
	assert.True(t, rows[0].Total.Equal(dec("600")))
	assert.Equal(t, 2023, rows[1].Year)
	assert.True(t, rows[1].Total.Equal(dec("1000250.50")))
	assert.Equal(t, LabelA, rows[1].Scenario)
}

func TestCompare(t *testing.T) {
	res := Compare(context.Background(), sampleSummary(), Options{
		TargetBanks: []string{"BANORTE"},
		Uplift:      0.2,
	})

	require.Len(t, res.Rows, 4)
	assert.Equal(t, []string{LabelA, LabelA, LabelB, LabelB},
		[]string{res.Rows[0].Scenario, res.Rows[1].Scenario, res.Rows[2].Scenario, res.Rows[3].Scenario})
	assert.True(t, res.Rows[2].Total.Equal(dec("700")))
	assert.True(t, res.Rows[3].Total.Equal(dec("1200250.50")))
	assert.Equal(t, 2, res.Affected)
	assert.Empty(t, res.Unmatched)

	assert.Equal(t, []string{"2022", "600", LabelA}, Records(res.Rows)[0])

	labels, byLabel := Series(res.Rows)
	assert.Equal(t, []string{LabelA, LabelB}, labels)
	assert.Len(t, byLabel[LabelB], 2)
}

func TestCompareEmpty(t *testing.T) {
	res := Compare(context.Background(), nil, Options{TargetBanks: []string{"BANORTE"}, Uplift: 0.2})
	assert.Empty(t, res.Rows)
	assert.Equal(t, []string{"BANORTE"}, res.Unmatched)
}
