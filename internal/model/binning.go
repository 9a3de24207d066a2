package model

import (
	"math"
	"sort"
)

// missingBin holds NaN values. Split thresholds are inclusive, so the
// missing bin always lands in the left child.
const missingBin = 0

// binMapper buckets raw feature values into small integer bins.
// bounds[f] holds ascending upper edges: a value v falls into bin
// 1 + (index of the first edge >= v).
type binMapper struct {
	bounds [][]float64
}

// fitBins derives bin edges per feature from the values on rows. Features
// with few distinct values get one bin per value; others are split at
// quantiles. Each feature uses at most maxBins bins including the missing bin.
func fitBins(m *Matrix, rows []int, maxBins int) *binMapper {
	if maxBins < 3 {
		maxBins = 3
	}
	numeric := maxBins - 1

	bm := &binMapper{bounds: make([][]float64, m.NumFeatures())}
	vals := make([]float64, 0, len(rows))
	for f := 0; f < m.NumFeatures(); f++ {
		vals = vals[:0]
		for _, r := range rows {
			if v := m.Value(f, r); !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		sort.Float64s(vals)
		bm.bounds[f] = edges(vals, numeric)
	}
	return bm
}

// edges returns at most numeric-1 ascending upper edges for sorted vals.
func edges(sorted []float64, numeric int) []float64 {
	distinct := make([]float64, 0, numeric)
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			distinct = append(distinct, v)
			if len(distinct) > numeric {
				break
			}
		}
	}

	if len(distinct) <= numeric {
		out := make([]float64, 0, len(distinct))
		for i := 1; i < len(distinct); i++ {
			out = append(out, (distinct[i-1]+distinct[i])/2)
		}
		return out
	}

	out := make([]float64, 0, numeric-1)
	n := len(sorted)
	for k := 1; k < numeric; k++ {
		idx := k * n / numeric
		if idx <= 0 || idx >= n {
			continue
		}
		lo, hi := sorted[idx-1], sorted[idx]
		edge := hi
		if lo != hi {
			edge = (lo + hi) / 2
		}
		if len(out) == 0 || edge > out[len(out)-1] {
			out = append(out, edge)
		}
	}
	return out
}

// numBins returns the bin count of feature f including the missing bin.
func (bm *binMapper) numBins(f int) int {
	return len(bm.bounds[f]) + 2
}

// bin maps a raw value of feature f to its bin.
func (bm *binMapper) bin(f int, v float64) uint8 {
	if math.IsNaN(v) {
		return missingBin
	}
	return uint8(1 + sort.SearchFloat64s(bm.bounds[f], v))
}

// binMatrix bins every row of m, feature-major.
func (bm *binMapper) binMatrix(m *Matrix) [][]uint8 {
	out := make([][]uint8, m.NumFeatures())
	for f := range out {
		col := make([]uint8, m.Rows())
		for r := range col {
			col[r] = bm.bin(f, m.Value(f, r))
		}
		out[f] = col
	}
	return out
}
