package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"cobranza/internal/analysis"
	"cobranza/internal/scenario"
)

var smallSize = Size{Width: 4 * vg.Inch, Height: 2 * vg.Inch}

func renderPNG(t *testing.T, p *plot.Plot) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(p, &buf, smallSize))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.InDelta(t, 4*96, cfg.Width, 1)
	assert.InDelta(t, 2*96, cfg.Height, 1)
}

func TestMonthlyCollection(t *testing.T) {
	p, err := MonthlyCollection([]analysis.MonthlyPoint{
		{Month: "2022-01", Total: decimal.NewFromInt(100)},
		{Month: "2022-02", Total: decimal.NewFromInt(250)},
	})
	require.NoError(t, err)
	assert.Equal(t, TitleMonthly, p.Title.Text)
	renderPNG(t, p)
}

func TestMonthlyCollectionInvalidMonth(t *testing.T) {
	_, err := MonthlyCollection([]analysis.MonthlyPoint{{Month: "enero", Total: decimal.Zero}})
	assert.Error(t, err)
}

func TestTopBanks(t *testing.T) {
	p, err := TopBanks([]analysis.BankTotal{
		{Bank: "BANORTE", Total: decimal.NewFromInt(300)},
		{Bank: "HSBC", Total: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	assert.Equal(t, TitleTopBanks, p.Title.Text)
	renderPNG(t, p)
}

func TestRejectionReasons(t *testing.T) {
	p, err := RejectionReasons([]analysis.ReasonCount{
		{Description: "Fondos insuficientes", Count: 9},
		{Description: "Cuenta cancelada", Count: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, TitleRejection, p.Title.Text)
	renderPNG(t, p)
}

func TestRejectionReasonsUniformCounts(t *testing.T) {
	p, err := RejectionReasons([]analysis.ReasonCount{
		{Description: "A", Count: 2},
		{Description: "B", Count: 2},
	})
	require.NoError(t, err)
	renderPNG(t, p)
}

func TestScenarioComparison(t *testing.T) {
	p, err := ScenarioComparison([]scenario.ComparisonRow{
		{Year: 2022, Total: decimal.NewFromInt(10), Scenario: scenario.LabelA},
		{Year: 2023, Total: decimal.NewFromInt(20), Scenario: scenario.LabelA},
		{Year: 2022, Total: decimal.NewFromInt(12), Scenario: scenario.LabelB},
		{Year: 2023, Total: decimal.NewFromInt(24), Scenario: scenario.LabelB},
	})
	require.NoError(t, err)
	assert.Equal(t, TitleScenario, p.Title.Text)
	renderPNG(t, p)
}

func TestEmptyInputsStillRender(t *testing.T) {
	monthly, err := MonthlyCollection(nil)
	require.NoError(t, err)
	banks, err := TopBanks(nil)
	require.NoError(t, err)
	reasons, err := RejectionReasons(nil)
	require.NoError(t, err)
	comparison, err := ScenarioComparison(nil)
	require.NoError(t, err)

	for _, p := range []*plot.Plot{monthly, banks, reasons, comparison} {
		renderPNG(t, p)
	}
}
