package model

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "cobranza/internal/errors"
)

// Params are the tunable booster hyperparameters.
type Params struct {
	NumLeaves       int     `json:"num_leaves"`
	MaxDepth        int     `json:"max_depth"`
	LearningRate    float64 `json:"learning_rate"`
	FeatureFraction float64 `json:"feature_fraction"`
	BaggingFraction float64 `json:"bagging_fraction"`
	BaggingFreq     int     `json:"bagging_freq"`
}

// TrainOptions are the fixed training settings.
type TrainOptions struct {
	Rounds              int
	EarlyStoppingRounds int
	MinDataInLeaf       int
	Lambda              float64
	Seed                uint64
}

// ValidationError represents a rejected training setting
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	switch {
	case p.NumLeaves < 2:
		return &ValidationError{Field: "NumLeaves", Message: "must be at least 2", Value: p.NumLeaves}
	case p.LearningRate <= 0:
		return &ValidationError{Field: "LearningRate", Message: "must be positive", Value: p.LearningRate}
	case p.FeatureFraction <= 0 || p.FeatureFraction > 1:
		return &ValidationError{Field: "FeatureFraction", Message: "must be in (0, 1]", Value: p.FeatureFraction}
	case p.BaggingFraction <= 0 || p.BaggingFraction > 1:
		return &ValidationError{Field: "BaggingFraction", Message: "must be in (0, 1]", Value: p.BaggingFraction}
	case p.BaggingFreq < 0:
		return &ValidationError{Field: "BaggingFreq", Message: "must not be negative", Value: p.BaggingFreq}
	}
	return nil
}

// Prepared holds the binned feature matrix shared by every training run
// on the same data. It is safe for concurrent use.
type Prepared struct {
	matrix  *Matrix
	mapper  *binMapper
	bins    [][]uint8
	numBins []int
}

// Prepare fits bins on the training rows and bins every row of m.
func Prepare(m *Matrix, train []int, maxBins int) *Prepared {
	mapper := fitBins(m, train, maxBins)
	numBins := make([]int, m.NumFeatures())
	for f := range numBins {
		numBins[f] = mapper.numBins(f)
	}
	return &Prepared{
		matrix:  m,
		mapper:  mapper,
		bins:    mapper.binMatrix(m),
		numBins: numBins,
	}
}

// Model is a trained tree ensemble.
type Model struct {
	Features []string
	Params   Params
	base     float64
	trees    []*Tree
	mapper   *binMapper
}

// TrainReport summarizes a training run.
type TrainReport struct {
	Iterations    int
	BestIteration int
	ValidRMSE     float64
}

// NumTrees returns the number of trees kept in the model.
func (m *Model) NumTrees() int { return len(m.trees) }

// Predict returns one prediction per row of x, which must have the same
// feature columns the model was trained on.
func (m *Model) Predict(x *Matrix) []float64 {
	return m.predictBinned(m.mapper.binMatrix(x), x.Rows())
}

func (m *Model) predictBinned(bins [][]uint8, rows int) []float64 {
	out := make([]float64, rows)
	for r := range out {
		v := m.base
		for _, t := range m.trees {
			v += t.predict(bins, r)
		}
		out[r] = v
	}
	return out
}

// Train boosts trees on the train rows. When valid is not empty and
// EarlyStoppingRounds is positive, training stops once the validation RMSE
// has not improved for that many rounds and the model keeps the trees up
// to the best round. Rows with a missing target are ignored.
func (p *Prepared) Train(ctx context.Context, train, valid []int, params Params, opts TrainOptions) (*Model, *TrainReport, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, apperrors.NewModelError("invalid parameters", err)
	}
	if opts.Rounds < 1 {
		return nil, nil, apperrors.NewModelError("invalid training options",
			&ValidationError{Field: "Rounds", Message: "must be at least 1", Value: opts.Rounds})
	}

	y := p.matrix.Target
	if y == nil {
		return nil, nil, apperrors.NewModelError("matrix has no target", nil)
	}
	train = labeled(train, y)
	valid = labeled(valid, y)
	if len(train) == 0 {
		return nil, nil, apperrors.NewModelError("no labeled training rows", nil)
	}

	minData := opts.MinDataInLeaf
	if minData < 1 {
		minData = 1
	}

	base := stat.Mean(gather(y, train), nil)

	model := &Model{
		Features: p.matrix.Features,
		Params:   params,
		base:     base,
		mapper:   p.mapper,
	}

	n := p.matrix.Rows()
	pred := make([]float64, n)
	for _, r := range train {
		pred[r] = base
	}
	// valid rows may also be train rows, so they score into their own slice.
	validPred := make([]float64, n)
	for _, r := range valid {
		validPred[r] = base
	}
	grad := make([]float64, n)

	bagRng := rand.New(rand.NewPCG(opts.Seed, 1))
	featRng := rand.New(rand.NewPCG(opts.Seed, 2))
	bagging := params.BaggingFreq > 0 && params.BaggingFraction < 1
	bag := train

	g := &grower{
		bins:    p.bins,
		numBins: p.numBins,
		grad:    grad,
		params: treeParams{
			numLeaves:     params.NumLeaves,
			maxDepth:      params.MaxDepth,
			minDataInLeaf: minData,
			lambda:        opts.Lambda,
			shrinkage:     params.LearningRate,
		},
	}

	early := opts.EarlyStoppingRounds > 0 && len(valid) > 0
	report := &TrainReport{ValidRMSE: math.NaN()}
	bestRMSE := math.Inf(1)

	for iter := 0; iter < opts.Rounds; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		if bagging && iter%params.BaggingFreq == 0 {
			bag = sampleRows(bagRng, train, params.BaggingFraction)
		}
		g.features = sampleFeatures(featRng, p.matrix.NumFeatures(), params.FeatureFraction)

		for _, r := range bag {
			grad[r] = pred[r] - y[r]
		}
		tree := g.grow(bag)
		model.trees = append(model.trees, tree)

		for _, r := range train {
			pred[r] += tree.predict(p.bins, r)
		}
		for _, r := range valid {
			validPred[r] += tree.predict(p.bins, r)
		}
		report.Iterations = iter + 1

		if len(valid) == 0 {
			continue
		}
		rmse := RMSE(validPred, y, valid)
		if rmse < bestRMSE {
			bestRMSE = rmse
			report.BestIteration = iter + 1
		} else if early && iter+1-report.BestIteration >= opts.EarlyStoppingRounds {
			break
		}
	}

	if early {
		model.trees = model.trees[:report.BestIteration]
		report.ValidRMSE = bestRMSE
	} else {
		report.BestIteration = report.Iterations
		if len(valid) > 0 {
			report.ValidRMSE = RMSE(validPred, y, valid)
		}
	}
	return model, report, nil
}

// RMSE is the root mean squared error of pred against y over rows.
func RMSE(pred, y []float64, rows []int) float64 {
	if len(rows) == 0 {
		return math.NaN()
	}
	return floats.Distance(gather(pred, rows), gather(y, rows), 2) / math.Sqrt(float64(len(rows)))
}

// gather returns v at rows.
func gather(v []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = v[r]
	}
	return out
}

func labeled(rows []int, y []float64) []int {
	out := rows[:0:0]
	for _, r := range rows {
		if !math.IsNaN(y[r]) {
			out = append(out, r)
		}
	}
	return out
}

// sampleRows draws max(1, fraction*len(rows)) rows without replacement,
// returned in ascending order.
func sampleRows(rng *rand.Rand, rows []int, fraction float64) []int {
	k := int(fraction * float64(len(rows)))
	if k < 1 {
		k = 1
	}
	if k >= len(rows) {
		return rows
	}
	pool := slices.Clone(rows)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	sample := pool[:k]
	slices.Sort(sample)
	return sample
}

// sampleFeatures picks max(1, round(fraction*n)) feature indices in
// ascending order.
func sampleFeatures(rng *rand.Rand, n int, fraction float64) []int {
	k := int(fraction*float64(n) + 0.5)
	if k < 1 {
		k = 1
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := rng.Perm(n)[:k]
	slices.Sort(picked)
	return picked
}
