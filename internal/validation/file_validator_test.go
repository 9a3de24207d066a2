package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cobranza/internal/config"
	apperrors "cobranza/internal/errors"
)

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name            string
		setupFunc       func(t *testing.T) string
		requiredPattern string
		wantType        apperrors.ErrorType
	}{
		{
			name: "valid directory with shards",
			setupFunc: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "cluster_1.csv"), []byte("a\n"), 0644))
				return dir
			},
			requiredPattern: "cluster_*.csv",
		},
		{
			name: "valid directory without pattern",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "no matching shards",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			requiredPattern: "cluster_*.csv",
			wantType:        apperrors.ErrTypeNotFound,
		},
		{
			name: "non-existent directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "path is file not directory",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "test.txt")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(slog.Default())
			err := v.ValidateInputDirectory(tt.setupFunc(t), tt.requiredPattern)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file removed")
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "CatBanco.csv")
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(csvPath, []byte("idbanco\n"), 0644))
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0644))

	v := NewFileValidator(nil)
	assert.NoError(t, v.ValidateCSVFile(csvPath))

	err := v.ValidateCSVFile(txtPath)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	err = v.ValidateCSVFile(filepath.Join(dir, "missing.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	err = v.ValidateFile(dir)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestFileValidator_SeveralPatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cluster_1.xlsx"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cluster_2.csv"), 0755))

	v := NewFileValidator(nil)
	assert.NoError(t, v.ValidateInputDirectory(dir, "cluster_*.csv", "cluster_*.xlsx"))

	err := v.ValidateInputDirectory(dir, "cluster_*.csv")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound), "directories do not count")

	err = v.ValidateInputDirectory(dir, "[")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestFileValidator_ValidateFileType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CatBanco.XLSX")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	v := NewFileValidator(nil)
	assert.NoError(t, v.ValidateFileType(path, ".csv", ".xlsx"))
	assert.True(t, apperrors.IsType(v.ValidateFileType(path, ".csv"), apperrors.ErrTypeValidation))
}

func TestFileValidator_ValidateEDAInputs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = base
	cfg.Files.Years = []int{2022, 2023}
	paths := cfg.ResolvePaths()
	require.NoError(t, os.MkdirAll(paths.CatalogDir, 0755))

	for _, name := range []string{cfg.Files.Banks, cfg.Files.BankResponses, cfg.Files.Issuers,
		cfg.Files.CollectionLists, cfg.Files.ListIssuers} {
		require.NoError(t, os.WriteFile(paths.CatalogFile(name), []byte("x\n"), 0644))
	}
	require.NoError(t, os.WriteFile(paths.TransactionFile(2022), []byte("x\n"), 0644))

	v := NewFileValidator(nil)
	err := v.ValidateEDAInputs(paths)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
	assert.Equal(t, []string{paths.TransactionFile(2023)}, appErr.Context["files"])

	require.NoError(t, os.WriteFile(paths.TransactionFile(2023), []byte("x\n"), 0644))
	assert.NoError(t, v.ValidateEDAInputs(paths))
}
