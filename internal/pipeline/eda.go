package pipeline

import (
	"context"
	"log/slog"

	"cobranza/internal/analysis"
	"cobranza/internal/charts"
	"cobranza/internal/dataset"
	"cobranza/internal/exporter"
	"cobranza/internal/infrastructure"
	"cobranza/internal/loader"
)

// EDAResult holds the tables behind the EDA outputs
type EDAResult struct {
	Joins         []analysis.JoinStep
	Summary       []analysis.SummaryRow
	Monthly       []analysis.MonthlyPoint
	TopBanks      []analysis.BankTotal
	Reasons       []analysis.ReasonCount
	UnparsedDates int
}

// RunEDA loads the catalogs and yearly transactions, joins them, writes the
// year/bank summary and renders the three EDA charts.
func (r *Runner) RunEDA(ctx context.Context) (*EDAResult, error) {
	files := r.paths.Files
	res := &EDAResult{}

	var (
		cats     *loader.Catalogs
		tx       *dataset.Table
		enriched *dataset.Table
	)

	err := r.stage(ctx, "validate", func(ctx context.Context) (map[string]any, error) {
		if err := r.validator.ValidateEDAInputs(r.paths); err != nil {
			return nil, err
		}
		return nil, r.prepareOutput()
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "load", func(ctx context.Context) (map[string]any, error) {
		var err error
		if cats, err = r.loader.LoadCatalogs(ctx); err != nil {
			return nil, err
		}
		if tx, err = r.loader.LoadTransactions(ctx); err != nil {
			return nil, err
		}

		catalogRows := 0
		catalogPaths := make([]string, 0, 5)
		for _, t := range cats.Tables() {
			infrastructure.RecordRows(ctx, r.otel.Metrics.RowsLoaded, t.Name, t.Len())
			catalogRows += t.Len()
		}
		for _, name := range []string{files.Banks, files.BankResponses, files.Issuers, files.CollectionLists, files.ListIssuers} {
			catalogPaths = append(catalogPaths, r.paths.CatalogFile(name))
		}
		txPaths := make([]string, 0, len(files.Years))
		for _, year := range files.Years {
			txPaths = append(txPaths, r.paths.TransactionFile(year))
		}
		infrastructure.RecordRows(ctx, r.otel.Metrics.RowsLoaded, tx.Name, tx.Len())

		r.manifest.AddInput("catalogs", r.paths.CatalogDir, statFiles(catalogPaths), catalogRows)
		r.manifest.AddInput("transactions", r.paths.DataDir, statFiles(txPaths), tx.Len())
		return map[string]any{"catalog_rows": catalogRows, "transaction_rows": tx.Len()}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "join", func(ctx context.Context) (map[string]any, error) {
		var err error
		enriched, res.Joins, err = analysis.Enrich(ctx, tx, cats)
		if err != nil {
			return nil, err
		}
		unmatched := make(map[string]any, len(res.Joins))
		for _, j := range res.Joins {
			unmatched[j.Right] = j.Unmatched
		}
		return map[string]any{"rows": enriched.Len(), "unmatched": unmatched}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "summary", func(ctx context.Context) (map[string]any, error) {
		var err error
		if res.Summary, err = analysis.SummarizeByYearBank(enriched); err != nil {
			return nil, err
		}
		if err := r.writeCSV(ctx, files.Summary, analysis.SummaryHeaders, analysis.SummaryRecords(res.Summary)); err != nil {
			return nil, err
		}
		return map[string]any{"groups": len(res.Summary)}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "series", func(ctx context.Context) (map[string]any, error) {
		unparsed, err := analysis.BucketMonths(enriched)
		if err != nil {
			return nil, err
		}
		res.UnparsedDates = unparsed
		if unparsed > 0 {
			r.otel.Metrics.UnparsedDates.Add(ctx, int64(unparsed))
			r.logger.WarnContext(ctx, "Charge dates could not be parsed and were left out of the monthly series",
				slog.Int("rows", unparsed))
		}

		if res.Monthly, err = analysis.MonthlySeries(enriched); err != nil {
			return nil, err
		}
		res.TopBanks = analysis.TopBanks(res.Summary, analysis.DefaultTopN)
		if res.Reasons, err = analysis.RejectionReasons(enriched, analysis.DefaultTopN); err != nil {
			return nil, err
		}
		return map[string]any{"months": len(res.Monthly), "unparsed_dates": unparsed}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "charts", func(ctx context.Context) (map[string]any, error) {
		monthly, err := charts.MonthlyCollection(res.Monthly)
		if err != nil {
			return nil, err
		}
		if err := r.writeChart(ctx, files.MonthlyChart, monthly); err != nil {
			return nil, err
		}

		top, err := charts.TopBanks(res.TopBanks)
		if err != nil {
			return nil, err
		}
		if err := r.writeChart(ctx, files.TopBanksChart, top); err != nil {
			return nil, err
		}

		reasons, err := charts.RejectionReasons(res.Reasons)
		if err != nil {
			return nil, err
		}
		return nil, r.writeChart(ctx, files.RejectionChart, reasons)
	})
	if err != nil {
		return nil, err
	}

	if files.SummaryWorkbook != "" {
		err = r.stage(ctx, "workbook", func(ctx context.Context) (map[string]any, error) {
			if err := r.workbook.Write(files.SummaryWorkbook, edaSheets(res)); err != nil {
				return nil, err
			}
			r.recordOutput(ctx, files.SummaryWorkbook, 0)
			return nil, nil
		})
		if err != nil {
			return nil, err
		}
	}

	if r.publisher != nil {
		err = r.stage(ctx, "publish", func(ctx context.Context) (map[string]any, error) {
			records := analysis.SummaryRecords(res.Summary)
			return map[string]any{"rows": len(records)}, r.publisher.Publish(ctx, analysis.SummaryHeaders, records)
		})
		if err != nil {
			return nil, err
		}
	}

	r.logger.InfoContext(ctx, "EDA completed",
		slog.Int("summary_rows", len(res.Summary)),
		slog.Int("months", len(res.Monthly)),
		slog.Int("unparsed_dates", res.UnparsedDates))
	return res, nil
}

// edaSheets lays out the EDA tables as workbook sheets
func edaSheets(res *EDAResult) []exporter.Sheet {
	summary := exporter.Sheet{Name: "resumen", Headers: analysis.SummaryHeaders}
	for _, s := range res.Summary {
		summary.Rows = append(summary.Rows, []any{s.Year, s.Bank, s.Total.InexactFloat64(), s.Attempts})
	}

	monthly := exporter.Sheet{Name: "mensual", Headers: []string{"mes", "total_cobrado"}}
	for _, m := range res.Monthly {
		monthly.Rows = append(monthly.Rows, []any{m.Month, m.Total.InexactFloat64()})
	}

	top := exporter.Sheet{Name: "top_bancos", Headers: []string{"nombre", "total_cobrado"}}
	for _, b := range res.TopBanks {
		top.Rows = append(top.Rows, []any{b.Bank, b.Total.InexactFloat64()})
	}

	reasons := exporter.Sheet{Name: "motivos", Headers: []string{"descripcion", "conteo"}}
	for _, rc := range res.Reasons {
		reasons.Rows = append(reasons.Rows, []any{rc.Description, rc.Count})
	}

	return []exporter.Sheet{summary, monthly, top, reasons}
}
