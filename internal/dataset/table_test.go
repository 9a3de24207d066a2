package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cobranza/internal/errors"
)

func mustTable(t *testing.T, name string, columns []string, rows ...[]string) *Table {
	t.Helper()
	tbl, err := NewTable(name, columns)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, tbl.Append(r))
	}
	return tbl
}

func TestNewTableLowercasesColumns(t *testing.T) {
	tbl := mustTable(t, "cat", []string{" IdBanco ", "Nombre"})

	assert.Equal(t, []string{"idbanco", "nombre"}, tbl.Columns())
	i, ok := tbl.ColumnIndex("IDBANCO")
	assert.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestNewTableDuplicateColumn(t *testing.T) {
	_, err := NewTable("cat", []string{"Nombre", "NOMBRE"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestAppendFieldCount(t *testing.T) {
	tbl := mustTable(t, "cat", []string{"a", "b"})
	err := tbl.Append([]string{"1"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestTypedAccessors(t *testing.T) {
	tbl := mustTable(t, "tx", []string{"monto", "id"},
		[]string{"10.50", "3.0"},
		[]string{"", "abc"},
		[]string{"n/a", ""},
	)

	f, ok := tbl.Float(0, 0)
	assert.True(t, ok)
	assert.InDelta(t, 10.5, f, 1e-9)

	_, ok = tbl.Float(1, 0)
	assert.False(t, ok, "empty cell is missing")
	_, ok = tbl.Float(2, 0)
	assert.False(t, ok, "unparseable cell is missing")

	n, ok := tbl.Int(0, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	_, ok = tbl.Int(1, 1)
	assert.False(t, ok)

	d, ok := tbl.Decimal(0, 0)
	assert.True(t, ok)
	assert.Equal(t, "10.5", d.String())
	_, ok = tbl.Decimal(2, 0)
	assert.False(t, ok)
}

func TestAddAndRenameColumn(t *testing.T) {
	tbl := mustTable(t, "tx", []string{"a", "nombre_x"}, []string{"1", "BANORTE"}, []string{"2", "HSBC"})

	require.NoError(t, tbl.AddColumn("Año", func(int) string { return "2023" }))
	assert.Equal(t, []string{"a", "nombre_x", "año"}, tbl.Columns())
	assert.Equal(t, "2023", tbl.Value(1, 2))

	require.NoError(t, tbl.RenameColumn("nombre_x", "nombre"))
	assert.True(t, tbl.HasColumn("nombre"))
	assert.False(t, tbl.HasColumn("nombre_x"))

	err := tbl.RenameColumn("a", "nombre")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))

	err = tbl.AddColumn("A", func(int) string { return "" })
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestNormalizeKeysMissingColumn(t *testing.T) {
	tbl := mustTable(t, "cat", []string{"idbanco"}, []string{"1.0"})

	require.NoError(t, tbl.NormalizeKeys("IdBanco"))
	assert.Equal(t, "1", tbl.Value(0, 0))

	err := tbl.NormalizeKeys("idemisora")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.True(t, strings.Contains(err.Error(), "idemisora"))
}

func TestConcatUnionColumns(t *testing.T) {
	a := mustTable(t, "a", []string{"x", "y"}, []string{"1", "2"})
	b := mustTable(t, "b", []string{"y", "z"}, []string{"3", "4"}, []string{"5", "6"})

	out, err := Concat("ab", a, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y", "z"}, out.Columns())
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"1", "2", ""}, out.Row(0))
	assert.Equal(t, []string{"", "3", "4"}, out.Row(1))
	assert.Equal(t, []string{"", "5", "6"}, out.Row(2))
}

func TestConcatEmpty(t *testing.T) {
	out, err := Concat("none")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 0, out.Width())
}
