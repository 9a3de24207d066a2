package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "cobranza/internal/errors"
	"cobranza/internal/files"
)

// Sheet is one worksheet of a workbook. Cells keep their Go type, so
// numbers stay numeric in Excel.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// WorkbookWriter writes .xlsx workbooks
type WorkbookWriter struct {
	files *files.Manager
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(m *files.Manager) *WorkbookWriter {
	return &WorkbookWriter{files: m}
}

// Write creates a workbook with the given sheets in order and replaces
// name atomically. At least one sheet is required.
func (w *WorkbookWriter) Write(name string, sheets []Sheet) error {
	fullPath := w.files.Path(name)
	if len(sheets) == 0 {
		return apperrors.NewValidationError("workbook needs at least one sheet").
			WithContext("path", fullPath)
	}

	f, err := buildWorkbook(sheets)
	if err != nil {
		return apperrors.NewStorageError("failed to build workbook", err).
			WithContext("path", fullPath)
	}
	defer f.Close()

	err = w.files.WriteAtomic(name, func(out io.Writer) error {
		_, err := f.WriteTo(out)
		return err
	})
	if err != nil {
		return apperrors.NewStorageError("failed to write workbook", err).
			WithContext("path", fullPath)
	}

	slog.Info("Wrote workbook",
		slog.String("full_path", fullPath),
		slog.Int("sheets", len(sheets)))
	return nil
}

func buildWorkbook(sheets []Sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}

		if err := fillSheet(f, sheet, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func fillSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	row := 1
	if len(sheet.Headers) > 0 {
		header := make([]any, len(sheet.Headers))
		for i, h := range sheet.Headers {
			header[i] = h
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return err
		}
		row++
	}

	for _, values := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return err
		}
		row++
	}
	return nil
}
