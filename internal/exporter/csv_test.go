package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cobranza/internal/config"
	apperrors "cobranza/internal/errors"
	"cobranza/internal/files"
)

// setupTestEnv returns a file manager writing into a fresh output directory
func setupTestEnv(t *testing.T) (*files.Manager, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "salida")
	paths := config.NewPaths(config.PathsConfig{BaseDir: "/unused", OutputDir: out}, config.FilesConfig{})
	return files.NewManager(paths), out
}

func TestNewCSVWriter(t *testing.T) {
	m, _ := setupTestEnv(t)
	writer := NewCSVWriter(m)

	assert.NotNil(t, writer)
	assert.Equal(t, m, writer.files)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		expected string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"año", "nombre", "total_cobrado", "total_intentos"},
				Records: [][]string{
					{"2023", "BANORTE", "1000000", "12"},
					{"2023", "BBVA MEXICO", "250.5", "3"},
				},
			},
			expected: "año,nombre,total_cobrado,total_intentos\n2023,BANORTE,1000000,12\n2023,BBVA MEXICO,250.5,3\n",
		},
		{
			name: "with BOM",
			options: WriteOptions{
				Headers:   []string{"a"},
				Records:   [][]string{{"1"}},
				BOMPrefix: true,
			},
			expected: "\xEF\xBB\xBFa\n1\n",
		},
		{
			name: "quotes fields with commas",
			options: WriteOptions{
				Headers: []string{"descripcion"},
				Records: [][]string{{"FONDOS INSUFICIENTES, REINTENTAR"}},
			},
			expected: "descripcion\n\"FONDOS INSUFICIENTES, REINTENTAR\"\n",
		},
		{
			name:     "headers only",
			options:  WriteOptions{Headers: []string{"x", "y"}},
			expected: "x,y\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, out := setupTestEnv(t)
			writer := NewCSVWriter(m)

			require.NoError(t, writer.WriteCSV("test.csv", tt.options))

			data, err := os.ReadFile(filepath.Join(out, "test.csv"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestCSVWriter_WriteSimpleCSVReplaces(t *testing.T) {
	m, out := setupTestEnv(t)
	writer := NewCSVWriter(m)

	require.NoError(t, writer.WriteSimpleCSV("resumen.csv", []string{"a"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, writer.WriteSimpleCSV("resumen.csv", []string{"a"}, [][]string{{"3"}}))

	data, err := os.ReadFile(filepath.Join(out, "resumen.csv"))
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(data, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"3"}}, records)
}

func TestCSVWriter_WriteError(t *testing.T) {
	m, out := setupTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0755))
	// A regular file where the output directory should be.
	require.NoError(t, os.WriteFile(out, []byte("x"), 0644))

	err := NewCSVWriter(m).WriteSimpleCSV("resumen.csv", []string{"a"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
