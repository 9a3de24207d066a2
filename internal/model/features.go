package model

import (
	"math"

	"cobranza/internal/dataset"
	apperrors "cobranza/internal/errors"
)

// Column names of the training shards. Lookups are case-insensitive.
const (
	ColListID     = "idListaCobro"
	ColCreditID   = "idCredito"
	ColTarget     = "montoCobrado"
	ColCost       = "costo_transaccion"
	ColPrediction = "pred_montoCobrado"
)

// FeatureColumns are the model inputs, in order.
var FeatureColumns = []string{
	"idListaCobro", "idCredito", "consecutivoCobro", "idBanco",
	"montoExigible", "montoCobrar", "idRespuestaBanco", "idEmisora",
	"TipoEnvio", "hora_cos", "diaEnvioCobro_cos", "diaCreacion_cos",
}

// Matrix is a feature-major numeric view of a table. Missing or
// unparseable cells are NaN.
type Matrix struct {
	Features []string
	cols     [][]float64
	Target   []float64
	rows     int
}

// BuildMatrix extracts features and, when target is not empty, the target
// column from t. Every named column must exist.
func BuildMatrix(t *dataset.Table, features []string, target string) (*Matrix, error) {
	required := append([]string{}, features...)
	if target != "" {
		required = append(required, target)
	}
	if err := dataset.RequireColumns(t, required...); err != nil {
		return nil, err
	}

	n := t.Len()
	m := &Matrix{
		Features: append([]string{}, features...),
		cols:     make([][]float64, len(features)),
		rows:     n,
	}
	for f, name := range features {
		col, _ := t.ColumnIndex(name)
		m.cols[f] = readColumn(t, col)
	}
	if target != "" {
		col, _ := t.ColumnIndex(target)
		m.Target = readColumn(t, col)
	}
	return m, nil
}

// NewMatrix builds a matrix from feature-major columns. All columns and the
// optional target must have the same length.
func NewMatrix(features []string, cols [][]float64, target []float64) (*Matrix, error) {
	if len(features) != len(cols) {
		return nil, apperrors.NewValidationError("feature names and columns differ in length")
	}
	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	for _, c := range cols {
		if len(c) != n {
			return nil, apperrors.NewValidationError("feature columns differ in length")
		}
	}
	if target != nil && len(target) != n {
		return nil, apperrors.NewValidationError("target length differs from feature columns")
	}
	return &Matrix{Features: features, cols: cols, Target: target, rows: n}, nil
}

func readColumn(t *dataset.Table, col int) []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		if v, ok := t.Float(i, col); ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// NumFeatures returns the number of feature columns.
func (m *Matrix) NumFeatures() int { return len(m.cols) }

// Value returns feature f of row r.
func (m *Matrix) Value(f, r int) float64 { return m.cols[f][r] }

// LabeledRows returns the rows whose target is present.
func (m *Matrix) LabeledRows() []int {
	rows := make([]int, 0, m.rows)
	for r := 0; r < m.rows; r++ {
		if m.Target != nil && !math.IsNaN(m.Target[r]) {
			rows = append(rows, r)
		}
	}
	return rows
}
