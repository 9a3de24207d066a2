package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cobranza/internal/errors"
)

func TestLeftJoin(t *testing.T) {
	tx := mustTable(t, "tx", []string{"idbanco", "monto", "nombre"},
		[]string{"1", "100", "a"},
		[]string{"2", "200", "b"},
		[]string{"", "300", "c"},
	)
	banks := mustTable(t, "banks", []string{"idbanco", "nombre"},
		[]string{"1", "BANORTE"},
		[]string{"3", "HSBC"},
		[]string{"", "SIN ID"},
	)

	out, stats, err := LeftJoin(tx, banks, JoinOptions{On: "idbanco", Suffixes: [2]string{"_orig", "_banks"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"idbanco", "monto", "nombre_orig", "nombre_banks"}, out.Columns())
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"1", "100", "a", "BANORTE"}, out.Row(0))
	assert.Equal(t, []string{"2", "200", "b", ""}, out.Row(1))
	assert.Equal(t, []string{"", "300", "c", ""}, out.Row(2), "empty keys never match")
	assert.Equal(t, JoinStats{LeftRows: 3, RightRows: 3, OutputRows: 3, Unmatched: 2}, stats)
}

func TestLeftJoinOneToMany(t *testing.T) {
	lists := mustTable(t, "lista", []string{"idlistacobro", "fecha"}, []string{"10", "2023-01-01"})
	links := mustTable(t, "emisora", []string{"idlistacobro", "idemisora"},
		[]string{"10", "1"},
		[]string{"10", "2"},
	)

	out, stats, err := LeftJoin(lists, links, JoinOptions{On: "idlistacobro"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, "1", out.Value(0, 2))
	assert.Equal(t, "2", out.Value(1, 2))
	assert.Equal(t, 0, stats.Unmatched)
}

func TestLeftJoinDefaultSuffixes(t *testing.T) {
	a := mustTable(t, "a", []string{"k", "nombre"}, []string{"1", "x"})
	b := mustTable(t, "b", []string{"k", "nombre"}, []string{"1", "y"})

	out, _, err := LeftJoin(a, b, JoinOptions{On: "k"})
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "nombre_x", "nombre_y"}, out.Columns())
	assert.Equal(t, "a+b", out.Name)
}

func TestLeftJoinMissingKey(t *testing.T) {
	a := mustTable(t, "a", []string{"k"})
	b := mustTable(t, "b", []string{"other"})

	_, _, err := LeftJoin(a, b, JoinOptions{On: "k"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))

	_, _, err = LeftJoin(b, a, JoinOptions{On: "k"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestRequireColumns(t *testing.T) {
	tbl := mustTable(t, "t", []string{"a", "b"})
	assert.NoError(t, RequireColumns(tbl, "A", "b"))

	err := RequireColumns(tbl, "a", "c", "d")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"c", "d"}, appErr.Context["columns"])
}
