package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "cobranza/internal/errors"
)

// ReadFile reads a table from path, choosing the reader by extension:
// .xlsx files go through ReadXLSX and everything else through ReadCSV.
func ReadFile(path, name string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path, name)
	}
	return ReadCSV(path, name)
}

// ReadXLSX reads the first worksheet of an Excel workbook. The first row is
// the header; short rows are padded with empty cells and cells beyond the
// header are dropped.
func ReadXLSX(path, name string) (*Table, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NewNotFoundError(name, err).WithContext("path", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError("read worksheet", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("empty worksheet", nil).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}

	t, err := NewTable(name, rows[0])
	if err != nil {
		return nil, err
	}
	width := t.Width()
	for _, r := range rows[1:] {
		row := make([]string, width)
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t, nil
}
