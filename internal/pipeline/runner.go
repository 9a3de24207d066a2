package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gonum.org/v1/plot"

	"cobranza/internal/charts"
	"cobranza/internal/config"
	apperrors "cobranza/internal/errors"
	"cobranza/internal/exporter"
	"cobranza/internal/files"
	"cobranza/internal/infrastructure"
	"cobranza/internal/loader"
	"cobranza/internal/validation"
)

// Command names, also used for the manifest file name
const (
	CommandEDA      = "eda"
	CommandScenario = "scenario"
	CommandTrainer  = "trainer"
)

// Publisher uploads a table to an external destination
type Publisher interface {
	Publish(ctx context.Context, headers []string, records [][]string) error
}

// Runner executes one command against a configuration
type Runner struct {
	cfg       *config.Config
	paths     *config.Paths
	files     *files.Manager
	csv       *exporter.CSVWriter
	workbook  *exporter.WorkbookWriter
	validator *validation.FileValidator
	loader    *loader.Loader
	otel      *infrastructure.OTelProviders
	logger    *slog.Logger
	manifest  *RunManifest
	publisher Publisher
	command   string
}

// Option customizes a Runner
type Option func(*Runner)

// WithPublisher sets the destination for the EDA summary upload
func WithPublisher(p Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// NewRunner creates a runner for command. runID identifies the run in the
// manifest and is usually the trace id of ctx.
func NewRunner(cfg *config.Config, command, runID string, otel *infrastructure.OTelProviders, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	paths := cfg.ResolvePaths()
	fm := files.NewManager(paths)

	r := &Runner{
		cfg:       cfg,
		paths:     paths,
		files:     fm,
		csv:       exporter.NewCSVWriter(fm),
		workbook:  exporter.NewWorkbookWriter(fm),
		validator: validation.NewFileValidator(logger),
		loader:    loader.New(paths, logger),
		otel:      otel,
		logger:    logger,
		manifest:  NewRunManifest(runID, command, config.AppVersion),
		command:   command,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Manifest returns the manifest of the run
func (r *Runner) Manifest() *RunManifest { return r.manifest }

// Finish closes the manifest with the run outcome and writes it to the
// output directory. The returned error concerns only the manifest write.
func (r *Runner) Finish(ctx context.Context, runErr error) error {
	r.manifest.Finish(runErr)
	name := ManifestName(r.command)
	if err := r.manifest.Save(r.files, name); err != nil {
		r.logger.ErrorContext(ctx, "Failed to write run manifest",
			slog.String("path", r.files.Path(name)),
			slog.String("error", err.Error()))
		return err
	}
	r.logger.InfoContext(ctx, "Run manifest written",
		slog.String("path", r.files.Path(name)),
		slog.String("status", r.manifest.Status))
	return nil
}

// stage runs fn as a traced stage and records it in the manifest
func (r *Runner) stage(ctx context.Context, name string, fn func(ctx context.Context) (map[string]any, error)) error {
	r.manifest.RecordStageStart(name)
	var meta map[string]any
	err := r.otel.RunStage(ctx, name, func(ctx context.Context) error {
		var err error
		meta, err = fn(ctx)
		return err
	})
	r.manifest.RecordStageEnd(name, err, meta)
	return err
}

// prepareOutput makes sure the output directory exists and is writable
func (r *Runner) prepareOutput() error {
	if err := r.paths.EnsureOutputDir(); err != nil {
		return err
	}
	return r.validator.ValidateOutputDirectory(r.paths.OutputDir)
}

func (r *Runner) writeCSV(ctx context.Context, name string, headers []string, records [][]string) error {
	if err := r.csv.WriteSimpleCSV(name, headers, records); err != nil {
		return err
	}
	r.recordOutput(ctx, name, len(records))
	return nil
}

func (r *Runner) writeChart(ctx context.Context, name string, p *plot.Plot) error {
	err := r.files.WriteAtomic(name, func(w io.Writer) error {
		return charts.Render(p, w, charts.DefaultSize)
	})
	if err != nil {
		return apperrors.NewStorageError("failed to write chart", err).
			WithContext("path", r.files.Path(name))
	}
	r.recordOutput(ctx, name, 0)
	return nil
}

func (r *Runner) recordOutput(ctx context.Context, name string, rows int) {
	size, _ := r.files.GetFileSize(name)
	r.manifest.AddOutput(name, r.files.Path(name), size, rows)
	if rows > 0 {
		infrastructure.RecordRows(ctx, r.otel.Metrics.RowsWritten, name, rows)
	}
}

// statFiles describes existing paths for the manifest, skipping any that
// cannot be read.
func statFiles(paths []string) []files.FileInfo {
	out := make([]files.FileInfo, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		out = append(out, files.FileInfo{Path: p, Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return out
}
