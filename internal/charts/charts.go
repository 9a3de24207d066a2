// Package charts renders the EDA and scenario figures as PNG images with
// gonum/plot. Each builder returns a *plot.Plot; Render encodes it.
// Empty inputs produce a titled chart without data.
package charts

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"cobranza/internal/analysis"
	"cobranza/internal/scenario"
)

// Chart titles.
const (
	TitleMonthly   = "Cobranza mensual total"
	TitleTopBanks  = "Top 10 bancos por cobranza total"
	TitleRejection = "Motivos de rechazo más frecuentes"
	TitleScenario  = "Comparación de cobranza total por año entre escenarios A y B"
)

// Size is the rendered image size.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultSize is 12x6 inches.
var DefaultSize = Size{Width: 12 * vg.Inch, Height: 6 * vg.Inch}

// Render encodes p as PNG into w.
func Render(p *plot.Plot, w io.Writer, size Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	wt, err := p.WriterTo(size.Width, size.Height, "png")
	if err != nil {
		return fmt.Errorf("create png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// MonthlyCollection plots collected amount per month.
func MonthlyCollection(points []analysis.MonthlyPoint) (*plot.Plot, error) {
	p := newPlot(TitleMonthly, "Mes", "Monto cobrado")
	p.Add(plotter.NewGrid())
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	if len(points) == 0 {
		return p, nil
	}

	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		month, err := time.Parse("2006-01", pt.Month)
		if err != nil {
			return nil, fmt.Errorf("invalid month %q: %w", pt.Month, err)
		}
		xys = append(xys, plotter.XY{X: float64(month.Unix()), Y: pt.Total.InexactFloat64()})
	}

	line, marks, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(0)
	marks.GlyphStyle.Color = plotutil.Color(0)
	marks.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, marks)
	return p, nil
}

// TopBanks draws a horizontal bar per bank, largest at the top.
func TopBanks(banks []analysis.BankTotal) (*plot.Plot, error) {
	p := newPlot(TitleTopBanks, "Total cobrado", "Banco")
	if len(banks) == 0 {
		return p, nil
	}

	n := len(banks)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, b := range banks {
		values[n-1-i] = b.Total.InexactFloat64()
		names[n-1-i] = b.Bank
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)
	return p, nil
}

// reasonGrid lays out reason counts as a single-row grid.
type reasonGrid []analysis.ReasonCount

func (g reasonGrid) Dims() (c, r int)   { return len(g), 1 }
func (g reasonGrid) Z(c, _ int) float64 { return float64(g[c].Count) }
func (g reasonGrid) X(c int) float64    { return float64(c) }
func (g reasonGrid) Y(_ int) float64    { return 0 }

// RejectionReasons draws a one-row heat map of response frequencies with
// each cell annotated by its count.
func RejectionReasons(reasons []analysis.ReasonCount) (*plot.Plot, error) {
	p := newPlot(TitleRejection, "Descripción", "")
	p.HideY()
	if len(reasons) == 0 {
		return p, nil
	}

	grid := reasonGrid(reasons)
	heat := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if heat.Min == heat.Max {
		heat.Max = heat.Min + 1
	}
	p.Add(heat)

	xys := make(plotter.XYs, len(reasons))
	labels := make([]string, len(reasons))
	names := make([]string, len(reasons))
	for i, r := range reasons {
		xys[i] = plotter.XY{X: float64(i), Y: 0}
		labels[i] = strconv.Itoa(r.Count)
		names[i] = r.Description
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = draw.XCenter
		annotations.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(annotations)

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// ScenarioComparison draws one line with point markers per scenario over
// the years present in rows.
func ScenarioComparison(rows []scenario.ComparisonRow) (*plot.Plot, error) {
	p := newPlot(TitleScenario, "Año", "Total cobrado")
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	if len(rows) == 0 {
		return p, nil
	}

	years := make(map[int]bool)
	labels, byLabel := scenario.Series(rows)
	for i, label := range labels {
		series := byLabel[label]
		xys := make(plotter.XYs, len(series))
		for j, r := range series {
			xys[j] = plotter.XY{X: float64(r.Year), Y: r.Total.InexactFloat64()}
			years[r.Year] = true
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(label, line, points)
	}

	ticks := make([]plot.Tick, 0, len(years))
	for y := range years {
		ticks = append(ticks, plot.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Value < ticks[j].Value })
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Padding = vg.Points(10)
	return p, nil
}
