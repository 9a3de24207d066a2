package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"

	apperrors "cobranza/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a comma-separated file with a header row into a Table named
// after name. A missing file is a NOT_FOUND error and a malformed file is a
// PARSING error.
func ReadCSV(path, name string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(name, err).WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("open CSV file", err).WithContext("path", path)
	}
	defer file.Close()

	t, err := ReadCSVFrom(file, name)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// ReadCSVFrom reads CSV data from r. Every record must have as many fields
// as the header.
func ReadCSVFrom(r io.Reader, name string) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("empty CSV file", nil).WithContext("table", name)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("read CSV header", err).WithContext("table", name)
	}

	t, err := NewTable(name, header)
	if err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read CSV record", err).WithContext("table", name)
		}
		t.rows = append(t.rows, record)
	}

	return t, nil
}
