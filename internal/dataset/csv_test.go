package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cobranza/internal/errors"
)

func TestReadCSVFrom(t *testing.T) {
	data := "\xEF\xBB\xBFIdBanco,Nombre\n1,BANORTE\n2,\"BBVA, MEXICO\"\n"

	tbl, err := ReadCSVFrom(strings.NewReader(data), "catbanco")
	require.NoError(t, err)

	assert.Equal(t, []string{"idbanco", "nombre"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "BBVA, MEXICO", tbl.Value(1, 1))
}

func TestReadCSVFromErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantType apperrors.ErrorType
	}{
		{"empty", "", apperrors.ErrTypeParsing},
		{"ragged row", "a,b\n1,2,3\n", apperrors.ErrTypeParsing},
		{"short row", "a,b\n1\n", apperrors.ErrTypeParsing},
		{"bad quote", "a,b\n\"1,2\n", apperrors.ErrTypeParsing},
		{"duplicate header", "a,A\n1,2\n", apperrors.ErrTypeSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSVFrom(strings.NewReader(tt.data), "t")
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tbl, err := ReadCSVFrom(strings.NewReader("a,b\n"), "t")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 2, tbl.Width())
}

func TestReadCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CatEmisora.csv")
	require.NoError(t, os.WriteFile(path, []byte("idEmisora,nombre\n5,EMISORA\n"), 0644))

	tbl, err := ReadCSV(path, "catemisora")
	require.NoError(t, err)
	assert.Equal(t, "catemisora", tbl.Name)
	assert.Equal(t, 1, tbl.Len())

	_, err = ReadCSV(filepath.Join(dir, "missing.csv"), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,b\n1\n"), 0644))
	_, err = ReadCSV(bad, "bad")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, bad, appErr.Context["path"])
}
