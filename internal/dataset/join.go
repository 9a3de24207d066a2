package dataset

import (
	apperrors "cobranza/internal/errors"
)

// DefaultSuffixes are applied to overlapping non-key columns when a join
// does not name its own.
var DefaultSuffixes = [2]string{"_x", "_y"}

// JoinOptions configures LeftJoin.
type JoinOptions struct {
	On       string
	Suffixes [2]string
	Name     string
}

// JoinStats describes the outcome of a join.
type JoinStats struct {
	LeftRows   int
	RightRows  int
	OutputRows int
	Unmatched  int
}

// LeftJoin keeps every row of left and appends the columns of right.
// A left row that matches several right rows is repeated once per match;
// an unmatched row gets empty right cells. Columns present on both sides
// other than the key are suffixed on both sides. Empty keys never match.
func LeftJoin(left, right *Table, opts JoinOptions) (*Table, JoinStats, error) {
	stats := JoinStats{LeftRows: left.Len(), RightRows: right.Len()}

	suffixes := opts.Suffixes
	if suffixes == [2]string{} {
		suffixes = DefaultSuffixes
	}
	name := opts.Name
	if name == "" {
		name = left.Name + "+" + right.Name
	}

	leftKey, err := left.MustColumn(opts.On)
	if err != nil {
		return nil, stats, err
	}
	rightKey, err := right.MustColumn(opts.On)
	if err != nil {
		return nil, stats, err
	}

	columns := make([]string, 0, left.Width()+right.Width()-1)
	for i, c := range left.columns {
		if i != leftKey && right.HasColumn(c) {
			c += suffixes[0]
		}
		columns = append(columns, c)
	}
	rightCols := make([]int, 0, right.Width()-1)
	for i, c := range right.columns {
		if i == rightKey {
			continue
		}
		if left.HasColumn(c) {
			c += suffixes[1]
		}
		columns = append(columns, c)
		rightCols = append(rightCols, i)
	}

	out, err := NewTable(name, columns)
	if err != nil {
		return nil, stats, err
	}

	lookup := make(map[string][]int, right.Len())
	for i, row := range right.rows {
		if k := row[rightKey]; k != "" {
			lookup[k] = append(lookup[k], i)
		}
	}

	out.rows = make([][]string, 0, left.Len())
	width := len(columns)
	for _, row := range left.rows {
		matches := lookup[row[leftKey]]
		if len(matches) == 0 {
			stats.Unmatched++
			newRow := make([]string, width)
			copy(newRow, row)
			out.rows = append(out.rows, newRow)
			continue
		}
		for _, m := range matches {
			newRow := make([]string, width)
			copy(newRow, row)
			rr := right.rows[m]
			for j, rc := range rightCols {
				newRow[len(row)+j] = rr[rc]
			}
			out.rows = append(out.rows, newRow)
		}
	}

	stats.OutputRows = out.Len()
	return out, stats, nil
}

// MissingColumns returns the names in required that t lacks.
func MissingColumns(t *Table, required ...string) []string {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, normalizeLabel(c))
		}
	}
	return missing
}

// RequireColumns returns a schema error listing every required column t lacks.
func RequireColumns(t *Table, required ...string) error {
	if missing := MissingColumns(t, required...); len(missing) > 0 {
		return apperrors.NewSchemaError("required columns missing").
			WithContext("table", t.Name).
			WithContext("columns", missing)
	}
	return nil
}
