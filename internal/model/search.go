package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/c-bata/goptuna"
	"github.com/c-bata/goptuna/tpe"
	"golang.org/x/sync/errgroup"

	apperrors "cobranza/internal/errors"
	"cobranza/internal/infrastructure"
)

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min, Max int
}

// FloatRange is a closed float interval.
type FloatRange struct {
	Min, Max float64
}

// SearchSpace bounds every tuned parameter.
type SearchSpace struct {
	NumLeaves       IntRange
	MaxDepth        IntRange
	LearningRate    FloatRange
	FeatureFraction FloatRange
	BaggingFraction FloatRange
	BaggingFreq     IntRange
}

// DefaultSearchSpace returns the bounds used by the trainer.
func DefaultSearchSpace() SearchSpace {
	return SearchSpace{
		NumLeaves:       IntRange{Min: 20, Max: 100},
		MaxDepth:        IntRange{Min: 5, Max: 20},
		LearningRate:    FloatRange{Min: 0.005, Max: 0.2},
		FeatureFraction: FloatRange{Min: 0.7, Max: 1.0},
		BaggingFraction: FloatRange{Min: 0.7, Max: 1.0},
		BaggingFreq:     IntRange{Min: 1, Max: 10},
	}
}

// Suggest asks the trial's sampler for one parameter set.
func (s SearchSpace) Suggest(trial goptuna.Trial) (Params, error) {
	var (
		p   Params
		err error
	)
	if p.NumLeaves, err = trial.SuggestInt("num_leaves", s.NumLeaves.Min, s.NumLeaves.Max); err != nil {
		return p, err
	}
	if p.MaxDepth, err = trial.SuggestInt("max_depth", s.MaxDepth.Min, s.MaxDepth.Max); err != nil {
		return p, err
	}
	if p.LearningRate, err = trial.SuggestFloat("learning_rate", s.LearningRate.Min, s.LearningRate.Max); err != nil {
		return p, err
	}
	if p.FeatureFraction, err = trial.SuggestFloat("feature_fraction", s.FeatureFraction.Min, s.FeatureFraction.Max); err != nil {
		return p, err
	}
	if p.BaggingFraction, err = trial.SuggestFloat("bagging_fraction", s.BaggingFraction.Min, s.BaggingFraction.Max); err != nil {
		return p, err
	}
	if p.BaggingFreq, err = trial.SuggestInt("bagging_freq", s.BaggingFreq.Min, s.BaggingFreq.Max); err != nil {
		return p, err
	}
	return p, nil
}

// SearchOptions configures a hyperparameter search.
type SearchOptions struct {
	Trials         int
	MaxConcurrency int
	Seed           uint64
	Space          SearchSpace
	Train          TrainOptions
}

// Trial is the outcome of one sampled parameter set.
type Trial struct {
	Number        int     `json:"number"`
	Params        Params  `json:"params"`
	RMSE          float64 `json:"rmse"`
	BestIteration int     `json:"best_iteration"`
}

// SearchResult holds every trial in trial-number order and the best one.
type SearchResult struct {
	Best   Trial
	Trials []Trial
}

// Search runs a TPE study minimizing the validation RMSE over opts.Trials
// parameter sets, each trained on train and scored on valid. The sampler is
// seeded from opts.Seed and trial n trains with a seed derived from
// (opts.Seed, n). With MaxConcurrency above one, workers share the study and
// the sampled parameters depend on the order in which trials finish.
// onTrial, when set, is called once per finished trial and never
// concurrently.
func Search(ctx context.Context, p *Prepared, train, valid []int, opts SearchOptions, onTrial func(Trial)) (*SearchResult, error) {
	if opts.Trials < 1 {
		return nil, apperrors.NewModelError("search needs at least one trial", nil)
	}
	if len(labeled(valid, p.matrix.Target)) == 0 {
		return nil, apperrors.NewModelError("search needs labeled validation rows", nil)
	}
	limit := opts.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	if limit > opts.Trials {
		limit = opts.Trials
	}

	logger := infrastructure.LoggerWithContext(ctx)
	logger.InfoContext(ctx, "starting hyperparameter search",
		slog.Int("trials", opts.Trials),
		slog.Int("max_concurrency", limit),
		slog.Int("train_rows", len(train)),
		slog.Int("valid_rows", len(valid)),
	)

	study, err := goptuna.CreateStudy("cobranza-gbdt",
		goptuna.StudyOptionDirection(goptuna.StudyDirectionMinimize),
		goptuna.StudyOptionSampler(tpe.NewSampler(tpe.SamplerOptionSeed(int64(opts.Seed)))),
		goptuna.StudyOptionLogger(logger.With(slog.String("component", "study"))),
	)
	if err != nil {
		return nil, apperrors.NewModelError("create study", err)
	}

	trials := make([]Trial, opts.Trials)
	var (
		mu       sync.Mutex
		trialErr error
	)
	fail := func(err error) (float64, error) {
		mu.Lock()
		defer mu.Unlock()
		if trialErr == nil {
			trialErr = err
		}
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	study.WithContext(gctx)

	objective := func(gt goptuna.Trial) (float64, error) {
		n, err := gt.Number()
		if err != nil {
			return fail(err)
		}
		if n < 0 || n >= len(trials) {
			return fail(fmt.Errorf("trial number %d out of range", n))
		}
		params, err := opts.Space.Suggest(gt)
		if err != nil {
			return fail(fmt.Errorf("trial %d: %w", n, err))
		}

		trainOpts := opts.Train
		trainOpts.Seed = rand.New(rand.NewPCG(opts.Seed, uint64(n))).Uint64()

		_, report, err := p.Train(gctx, train, valid, params, trainOpts)
		if err != nil {
			return fail(fmt.Errorf("trial %d: %w", n, err))
		}

		trial := Trial{
			Number:        n,
			Params:        params,
			RMSE:          report.ValidRMSE,
			BestIteration: report.BestIteration,
		}

		mu.Lock()
		defer mu.Unlock()
		trials[n] = trial
		logger.DebugContext(gctx, "trial completed",
			slog.Int("trial", n),
			slog.Float64("rmse", trial.RMSE),
			slog.Int("best_iteration", trial.BestIteration),
		)
		if onTrial != nil {
			onTrial(trial)
		}
		return trial.RMSE, nil
	}

	// Each worker runs its share of the trials against the shared study.
	for w := 0; w < limit; w++ {
		share := opts.Trials / limit
		if w < opts.Trials%limit {
			share++
		}
		g.Go(func() error {
			return study.Optimize(objective, share)
		})
	}

	err = g.Wait()
	if err == nil {
		err = trialErr
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.NewModelError("hyperparameter search cancelled", ctxErr)
		}
		return nil, apperrors.NewModelError("hyperparameter search failed", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewModelError("hyperparameter search cancelled", err)
	}

	best := trials[0]
	for _, t := range trials[1:] {
		if t.RMSE < best.RMSE || (math.IsNaN(best.RMSE) && !math.IsNaN(t.RMSE)) {
			best = t
		}
	}

	logger.InfoContext(ctx, "hyperparameter search completed",
		slog.Int("best_trial", best.Number),
		slog.Float64("best_rmse", best.RMSE),
		slog.Any("best_params", best.Params),
	)

	return &SearchResult{Best: best, Trials: trials}, nil
}
