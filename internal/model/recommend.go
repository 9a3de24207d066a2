package model

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"cobranza/internal/dataset"
	apperrors "cobranza/internal/errors"
)

// RecommendationHeaders are the output columns, in order.
var RecommendationHeaders = []string{
	ColCreditID, "TipoEnvio", "hora_cos", "diaEnvioCobro_cos", "diaCreacion_cos",
	"montoCobrar", ColPrediction, ColCost,
}

// Recommendation is the best-scored attempt for one credit.
type Recommendation struct {
	CreditID   string
	Row        int
	Prediction float64
}

// Recommend keeps, for every credit id, the row with the highest
// prediction. Ties go to the lowest idListaCobro and then to the earliest
// row. Results are ordered by ascending credit id; rows without a credit id
// are skipped. Ids are compared with compareIDs.
func Recommend(t *dataset.Table, preds []float64) ([]Recommendation, error) {
	if len(preds) != t.Len() {
		return nil, apperrors.NewValidationError("prediction count differs from row count").
			WithContext("rows", t.Len()).
			WithContext("predictions", len(preds))
	}
	creditCol, err := t.MustColumn(ColCreditID)
	if err != nil {
		return nil, err
	}
	listCol, err := t.MustColumn(ColListID)
	if err != nil {
		return nil, err
	}

	var out []Recommendation
	index := make(map[string]int)
	for r := 0; r < t.Len(); r++ {
		credit := dataset.NormalizeKey(t.Value(r, creditCol))
		if credit == "" {
			continue
		}
		cand := Recommendation{CreditID: credit, Row: r, Prediction: preds[r]}
		i, seen := index[credit]
		if !seen {
			index[credit] = len(out)
			out = append(out, cand)
			continue
		}
		if better(cand, out[i], t.Value(r, listCol), t.Value(out[i].Row, listCol)) {
			out[i] = cand
		}
	}
	slices.SortFunc(out, func(a, b Recommendation) int {
		return compareIDs(a.CreditID, b.CreditID)
	})
	return out, nil
}

// better reports whether a should replace the current best b. a always
// comes from a later row than b.
func better(a, b Recommendation, aList, bList string) bool {
	switch {
	case math.IsNaN(a.Prediction):
		return false
	case math.IsNaN(b.Prediction):
		return true
	case a.Prediction != b.Prediction:
		return a.Prediction > b.Prediction
	}
	return compareIDs(aList, bList) < 0
}

// compareIDs orders numeric ids numerically, ahead of any id that does not
// parse as a number; the rest compare as text.
func compareIDs(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	af, aErr := strconv.ParseFloat(a, 64)
	bf, bErr := strconv.ParseFloat(b, 64)
	aNum := aErr == nil && !math.IsNaN(af)
	bNum := bErr == nil && !math.IsNaN(bf)
	switch {
	case aNum && bNum:
		return cmp.Compare(af, bf)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(a, b)
}

// RecommendationRecords renders recommendations as CSV records in
// RecommendationHeaders order, taking every column except the prediction
// from the source row.
func RecommendationRecords(t *dataset.Table, recs []Recommendation) ([][]string, error) {
	cols := make([]int, len(RecommendationHeaders))
	for k, name := range RecommendationHeaders {
		if name == ColPrediction {
			cols[k] = -1
			continue
		}
		i, err := t.MustColumn(name)
		if err != nil {
			return nil, err
		}
		cols[k] = i
	}

	records := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(cols))
		for k, i := range cols {
			if i < 0 {
				row[k] = strconv.FormatFloat(rec.Prediction, 'f', -1, 64)
				continue
			}
			row[k] = t.Value(rec.Row, i)
		}
		row[0] = rec.CreditID
		records = append(records, row)
	}
	return records, nil
}
