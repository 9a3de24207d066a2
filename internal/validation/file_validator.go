package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cobranza/internal/config"
	apperrors "cobranza/internal/errors"
	"cobranza/internal/files"
)

// FileValidator checks input and output locations before a command reads
// or writes anything. Every failure is an *errors.AppError.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a validator logging to logger
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// statPath classifies path: NOT_FOUND when missing, VALIDATION when it is
// a directory and wantDir is false or the other way around.
func (v *FileValidator) statPath(path string, wantDir bool) (os.FileInfo, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, apperrors.NewNotFoundError(path, err)
	case err != nil:
		return nil, apperrors.NewStorageError("failed to stat "+path, err)
	case wantDir && !info.IsDir():
		return nil, apperrors.NewValidationError(path + " is not a directory")
	case !wantDir && info.IsDir():
		return nil, apperrors.NewValidationError(path + " is a directory, not a file")
	}
	return info, nil
}

// ValidateInputDirectory checks that dir exists and, when patterns are
// given, that at least one regular file matches one of them.
func (v *FileValidator) ValidateInputDirectory(dir string, patterns ...string) error {
	if _, err := v.statPath(dir, true); err != nil {
		v.logger.Error("Invalid input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return err
	}

	patterns = slices.DeleteFunc(slices.Clone(patterns), func(p string) bool {
		return strings.TrimSpace(p) == ""
	})
	if len(patterns) == 0 {
		return nil
	}

	found, err := files.NewDiscovery(dir).FindFilesByPattern("", patterns...)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if len(found) == 0 {
		v.logger.Error("No input files match",
			slog.String("directory", dir),
			slog.Any("patterns", patterns))
		return apperrors.NewNotFoundError(fmt.Sprintf("files matching %s in %s", strings.Join(patterns, ","), dir), nil)
	}

	v.logger.Info("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", len(found)))
	return nil
}

// ValidateOutputDirectory creates dir if needed and checks it is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory "+dir, err)
	}

	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// ValidateFile checks that path is an existing, readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := v.statPath(path, false)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError("file "+path+" is not readable", err)
	}
	f.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateFileType runs ValidateFile and then checks that the extension of
// path is one of exts, compared case-insensitively.
func (v *FileValidator) ValidateFileType(path string, exts ...string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return nil
		}
	}
	return apperrors.NewValidationError(fmt.Sprintf("file %s has extension %q, want one of %v", path, ext, exts))
}

// ValidateCSVFile checks that path is a readable .csv file
func (v *FileValidator) ValidateCSVFile(path string) error {
	return v.ValidateFileType(path, ".csv")
}

// ValidateEDAInputs checks every catalog and yearly transaction file and
// reports all missing ones in a single NOT_FOUND error under the "files"
// context key.
func (v *FileValidator) ValidateEDAInputs(paths *config.Paths) error {
	catalogs := []string{
		paths.Files.Banks,
		paths.Files.BankResponses,
		paths.Files.Issuers,
		paths.Files.CollectionLists,
		paths.Files.ListIssuers,
	}
	required := make([]string, 0, len(catalogs)+len(paths.Files.Years))
	for _, name := range catalogs {
		required = append(required, paths.CatalogFile(name))
	}
	for _, year := range paths.Files.Years {
		required = append(required, paths.TransactionFile(year))
	}

	var missing []string
	for _, path := range required {
		err := v.ValidateFile(path)
		if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			missing = append(missing, path)
			continue
		}
		if err != nil {
			return err
		}
	}

	if len(missing) > 0 {
		v.logger.Error("EDA inputs missing", slog.Any("files", missing))
		return apperrors.NewNotFoundError("input files", nil).WithContext("files", missing)
	}

	v.logger.Info("EDA inputs validated", slog.Int("files", len(required)))
	return nil
}
