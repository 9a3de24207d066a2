package pipeline

import (
	"context"
	"log/slog"

	"cobranza/internal/dataset"
	"cobranza/internal/exporter"
	"cobranza/internal/files"
	"cobranza/internal/infrastructure"
	"cobranza/internal/model"
)

// fitOptions maps the model configuration onto training options
func (r *Runner) fitOptions() model.FitOptions {
	mc := r.cfg.Model
	return model.FitOptions{
		Features:     model.FeatureColumns,
		TestFraction: mc.TestFraction,
		Seed:         mc.Seed,
		MaxBins:      mc.MaxBins,
		FinalRounds:  mc.FinalRounds,
		Search: model.SearchOptions{
			Trials:         mc.Trials,
			MaxConcurrency: mc.MaxConcurrency,
			Seed:           mc.Seed,
			Space:          model.DefaultSearchSpace(),
			Train: model.TrainOptions{
				Rounds:              mc.TrialRounds,
				EarlyStoppingRounds: mc.EarlyStoppingRounds,
				MinDataInLeaf:       mc.MinDataInLeaf,
			},
		},
	}
}

// RunTrainer concatenates the training shards, searches hyperparameters,
// fits the final model and writes one recommendation per credit.
func (r *Runner) RunTrainer(ctx context.Context) (*model.FitResult, error) {
	names := r.paths.Files

	var (
		shards *dataset.Table
		result *model.FitResult
	)

	err := r.stage(ctx, "load", func(ctx context.Context) (map[string]any, error) {
		if err := r.validator.ValidateInputDirectory(r.paths.ShardDir, r.paths.ShardPatterns()...); err != nil {
			return nil, err
		}
		if err := r.prepareOutput(); err != nil {
			return nil, err
		}
		var err error
		if shards, err = r.loader.LoadShards(ctx); err != nil {
			return nil, err
		}
		infrastructure.RecordRows(ctx, r.otel.Metrics.RowsLoaded, shards.Name, shards.Len())

		found, err := files.NewDiscovery(r.paths.ShardDir).FindFilesByPattern("", r.paths.ShardPatterns()...)
		if err != nil {
			return nil, err
		}
		r.manifest.AddInput("shards", r.paths.ShardDir, found, shards.Len())
		return map[string]any{"shards": len(found), "rows": shards.Len()}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "train", func(ctx context.Context) (map[string]any, error) {
		onTrial := func(t model.Trial) {
			r.otel.Metrics.TrialsCompleted.Add(ctx, 1)
			r.logger.InfoContext(ctx, "Search trial finished",
				slog.Int("trial", t.Number),
				slog.Float64("rmse", t.RMSE),
				slog.Int("best_iteration", t.BestIteration))
		}
		var err error
		if result, err = model.Fit(ctx, shards, r.fitOptions(), onTrial); err != nil {
			return nil, err
		}
		best := result.Search.Best
		return map[string]any{
			"best_trial": best.Number,
			"best_rmse":  best.RMSE,
			"train_rows": result.TrainRows,
			"test_rows":  result.TestRows,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "recommend", func(ctx context.Context) (map[string]any, error) {
		records, err := model.RecommendationRecords(shards, result.Recommendations)
		if err != nil {
			return nil, err
		}
		if err := r.writeCSV(ctx, names.Recommendations, model.RecommendationHeaders, records); err != nil {
			return nil, err
		}
		if names.BestParams != "" {
			if err := exporter.WriteJSON(r.files, names.BestParams, result.BestParams()); err != nil {
				return nil, err
			}
			r.recordOutput(ctx, names.BestParams, 0)
		}
		return map[string]any{"credits": len(records)}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
