package model

import (
	"context"
	"log/slog"

	"cobranza/internal/dataset"
	apperrors "cobranza/internal/errors"
	"cobranza/internal/infrastructure"
)

// FitOptions configures a full training run.
type FitOptions struct {
	Features     []string
	TestFraction float64
	Seed         uint64
	MaxBins      int
	FinalRounds  int
	Search       SearchOptions
}

// FitResult is everything a training run produces.
type FitResult struct {
	Search          *SearchResult
	Model           *Model
	Predictions     []float64
	Recommendations []Recommendation
	TrainRows       int
	TestRows        int
	FinalRounds     int
}

// BestParams is the JSON document describing the chosen parameters.
type BestParams struct {
	Params        Params  `json:"params"`
	RMSE          float64 `json:"rmse"`
	Trial         int     `json:"trial"`
	BestIteration int     `json:"best_iteration"`
	Trials        int     `json:"trials"`
	FinalRounds   int     `json:"final_rounds"`
	TrainRows     int     `json:"train_rows"`
	TestRows      int     `json:"test_rows"`
	Trees         int     `json:"trees"`
}

// BestParams summarizes the search winner and the final model.
func (r *FitResult) BestParams() BestParams {
	return BestParams{
		Params:        r.Search.Best.Params,
		RMSE:          r.Search.Best.RMSE,
		Trial:         r.Search.Best.Number,
		BestIteration: r.Search.Best.BestIteration,
		Trials:        len(r.Search.Trials),
		FinalRounds:   r.FinalRounds,
		TrainRows:     r.TrainRows,
		TestRows:      r.TestRows,
		Trees:         r.Model.NumTrees(),
	}
}

// Fit splits the labeled rows of t, searches hyperparameters on the split,
// refits on the training rows with the best parameters and no early
// stopping, and scores every row of t.
func Fit(ctx context.Context, t *dataset.Table, opts FitOptions, onTrial func(Trial)) (*FitResult, error) {
	features := opts.Features
	if len(features) == 0 {
		features = FeatureColumns
	}
	if err := dataset.RequireColumns(t, ColCreditID, ColListID, ColCost); err != nil {
		return nil, err
	}
	m, err := BuildMatrix(t, features, ColTarget)
	if err != nil {
		return nil, err
	}

	labeledRows := m.LabeledRows()
	if len(labeledRows) < 2 {
		return nil, apperrors.NewModelError("not enough labeled rows to split", nil).
			WithContext("labeled_rows", len(labeledRows))
	}
	train, test := TrainTestSplit(labeledRows, opts.TestFraction, opts.Seed)
	if len(train) == 0 || len(test) == 0 {
		return nil, apperrors.NewModelError("train/test split left an empty side", nil).
			WithContext("train_rows", len(train)).
			WithContext("test_rows", len(test))
	}

	logger := infrastructure.LoggerWithContext(ctx)
	logger.InfoContext(ctx, "training split prepared",
		slog.Int("rows", m.Rows()),
		slog.Int("labeled_rows", len(labeledRows)),
		slog.Int("train_rows", len(train)),
		slog.Int("test_rows", len(test)),
	)

	prepared := Prepare(m, train, opts.MaxBins)

	search, err := Search(ctx, prepared, train, test, opts.Search, onTrial)
	if err != nil {
		return nil, err
	}

	finalOpts := opts.Search.Train
	finalOpts.Rounds = opts.FinalRounds
	finalOpts.EarlyStoppingRounds = 0
	finalOpts.Seed = opts.Seed
	final, report, err := prepared.Train(ctx, train, nil, search.Best.Params, finalOpts)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "final model trained",
		slog.Int("trees", final.NumTrees()),
		slog.Int("iterations", report.Iterations),
	)

	preds := final.predictBinned(prepared.bins, m.Rows())
	recs, err := Recommend(t, preds)
	if err != nil {
		return nil, err
	}

	return &FitResult{
		Search:          search,
		Model:           final,
		Predictions:     preds,
		Recommendations: recs,
		TrainRows:       len(train),
		TestRows:        len(test),
		FinalRounds:     opts.FinalRounds,
	}, nil
}
