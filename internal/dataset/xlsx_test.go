package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "cobranza/internal/errors"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CatBanco.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"IdBanco", "Nombre", "Extra"},
		{1, "BANORTE", "x"},
		{2, "SANTANDER"},
	})

	tbl, err := ReadFile(path, "catbanco")
	require.NoError(t, err)

	assert.Equal(t, []string{"idbanco", "nombre", "extra"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"1", "BANORTE", "x"}, tbl.Row(0))
	assert.Equal(t, []string{"2", "SANTANDER", ""}, tbl.Row(1), "short rows are padded")
}

func TestReadXLSXMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.xlsx"), "catbanco")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestReadFileDispatchesCSV(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), "catbanco")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}
