package pipeline

import (
	"context"

	"cobranza/internal/analysis"
	"cobranza/internal/charts"
	"cobranza/internal/dataset"
	"cobranza/internal/scenario"
)

// RunScenario reads the year/bank summary written by the EDA, builds the
// A/B comparison and renders it. The comparison table is written when a
// file name is configured.
func (r *Runner) RunScenario(ctx context.Context) (*scenario.Result, error) {
	files := r.paths.Files
	summaryPath := r.files.Path(files.Summary)

	var (
		rows   []analysis.SummaryRow
		result scenario.Result
	)

	err := r.stage(ctx, "load", func(ctx context.Context) (map[string]any, error) {
		if err := r.validator.ValidateCSVFile(summaryPath); err != nil {
			return nil, err
		}
		if err := r.prepareOutput(); err != nil {
			return nil, err
		}
		t, err := dataset.ReadCSV(summaryPath, "resumen")
		if err != nil {
			return nil, err
		}
		if rows, err = analysis.SummaryFromTable(t); err != nil {
			return nil, err
		}
		r.manifest.AddInput("summary", r.paths.OutputDir, statFiles([]string{summaryPath}), len(rows))
		return map[string]any{"rows": len(rows)}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "compare", func(ctx context.Context) (map[string]any, error) {
		result = scenario.Compare(ctx, rows, scenario.Options{
			TargetBanks: r.cfg.Scenario.TargetBanks,
			Uplift:      r.cfg.Scenario.Uplift,
		})
		meta := map[string]any{
			"affected_rows": result.Affected,
			"unmatched":     result.Unmatched,
			"uplift":        r.cfg.Scenario.Uplift,
		}
		if files.ScenarioTable == "" {
			return meta, nil
		}
		return meta, r.writeCSV(ctx, files.ScenarioTable, scenario.ComparisonHeaders, scenario.Records(result.Rows))
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "chart", func(ctx context.Context) (map[string]any, error) {
		p, err := charts.ScenarioComparison(result.Rows)
		if err != nil {
			return nil, err
		}
		return nil, r.writeChart(ctx, files.ScenarioChart, p)
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
