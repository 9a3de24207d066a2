package exporter

import (
	"encoding/json"
	"io"

	apperrors "cobranza/internal/errors"
	"cobranza/internal/files"
)

// WriteJSON writes v as indented JSON to name, replacing it atomically
func WriteJSON(m *files.Manager, name string, v any) error {
	err := m.WriteAtomic(name, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
	if err != nil {
		return apperrors.NewStorageError("failed to write JSON", err).
			WithContext("path", m.Path(name))
	}
	return nil
}
