package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "cobranza/internal/errors"
)

// Table is a named, column-ordered collection of string rows.
type Table struct {
	Name    string
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable creates an empty table. Column labels are trimmed and lowercased;
// two labels that collide after lowercasing are a schema error.
func NewTable(name string, columns []string) (*Table, error) {
	t := &Table{
		Name:    name,
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		label := normalizeLabel(c)
		if _, dup := t.index[label]; dup {
			return nil, apperrors.NewSchemaError(fmt.Sprintf("duplicate column %q", label)).
				WithContext("table", name)
		}
		t.columns[i] = label
		t.index[label] = i
	}
	return t, nil
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Columns returns a copy of the column labels in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Row returns row i. The slice is shared with the table.
func (t *Table) Row(i int) []string { return t.rows[i] }

// ColumnIndex looks up a column case-insensitively.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[normalizeLabel(name)]
	return i, ok
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// MustColumn returns the index of name or a schema error naming the table.
func (t *Table) MustColumn(name string) (int, error) {
	i, ok := t.ColumnIndex(name)
	if !ok {
		return -1, apperrors.NewSchemaError(fmt.Sprintf("column %q missing", normalizeLabel(name))).
			WithContext("table", t.Name)
	}
	return i, nil
}

// Append adds a row. The row length must match the column count.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.columns) {
		return apperrors.NewSchemaError(
			fmt.Sprintf("row has %d fields, table has %d columns", len(row), len(t.columns))).
			WithContext("table", t.Name)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Value returns the cell at row i, column col.
func (t *Table) Value(i, col int) string { return t.rows[i][col] }

// Float parses a cell as float64. Empty or unparseable cells are missing.
func (t *Table) Float(i, col int) (float64, bool) {
	s := strings.TrimSpace(t.rows[i][col])
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int parses a cell as an integer, accepting integral floats such as "3.0".
func (t *Table) Int(i, col int) (int64, bool) {
	key := NormalizeKey(t.rows[i][col])
	if key == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Decimal parses a cell as an exact decimal. Empty or unparseable cells are missing.
func (t *Table) Decimal(i, col int) (decimal.Decimal, bool) {
	s := strings.TrimSpace(t.rows[i][col])
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AddColumn appends a column whose cells are produced by value.
func (t *Table) AddColumn(name string, value func(i int) string) error {
	label := normalizeLabel(name)
	if _, dup := t.index[label]; dup {
		return apperrors.NewSchemaError(fmt.Sprintf("column %q already exists", label)).
			WithContext("table", t.Name)
	}
	t.index[label] = len(t.columns)
	t.columns = append(t.columns, label)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], value(i))
	}
	return nil
}

// RenameColumn renames from to to. Renaming onto an existing column is a schema error.
func (t *Table) RenameColumn(from, to string) error {
	i, err := t.MustColumn(from)
	if err != nil {
		return err
	}
	label := normalizeLabel(to)
	if j, exists := t.index[label]; exists && j != i {
		return apperrors.NewSchemaError(fmt.Sprintf("column %q already exists", label)).
			WithContext("table", t.Name)
	}
	delete(t.index, t.columns[i])
	t.columns[i] = label
	t.index[label] = i
	return nil
}

// NormalizeKeys rewrites the named columns with NormalizeKey.
// Every column must exist.
func (t *Table) NormalizeKeys(columns ...string) error {
	idx := make([]int, len(columns))
	for k, c := range columns {
		i, err := t.MustColumn(c)
		if err != nil {
			return err
		}
		idx[k] = i
	}
	for _, row := range t.rows {
		for _, i := range idx {
			row[i] = NormalizeKey(row[i])
		}
	}
	return nil
}

// Concat stacks tables vertically. The result has the union of the input
// columns in first-seen order; cells for absent columns are empty.
func Concat(name string, tables ...*Table) (*Table, error) {
	var columns []string
	seen := make(map[string]bool)
	total := 0
	for _, t := range tables {
		for _, c := range t.columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
		total += t.Len()
	}

	out, err := NewTable(name, columns)
	if err != nil {
		return nil, err
	}
	out.rows = make([][]string, 0, total)

	for _, t := range tables {
		mapping := make([]int, len(columns))
		for j, c := range columns {
			if i, ok := t.index[c]; ok {
				mapping[j] = i
			} else {
				mapping[j] = -1
			}
		}
		for _, row := range t.rows {
			newRow := make([]string, len(columns))
			for j, i := range mapping {
				if i >= 0 {
					newRow[j] = row[i]
				}
			}
			out.rows = append(out.rows, newRow)
		}
	}
	return out, nil
}
