package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cobranza/internal/config"
	"cobranza/internal/infrastructure"
	"cobranza/internal/pipeline"
	"cobranza/internal/publish"
)

// ShutdownTimeout bounds telemetry flushing at exit
const ShutdownTimeout = 10 * time.Second

// Application represents one batch command run
type Application struct {
	Config        *config.Config
	Command       string
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	RunMetrics    *infrastructure.RunMetrics
	Runner        *pipeline.Runner

	ctx       context.Context
	startTime time.Time
}

// NewApplication loads configuration and initializes logging, telemetry
// and the pipeline runner for command. An empty configFile uses the
// default lookup of config.Load.
func NewApplication(command, configFile string) (*Application, error) {
	startTime := time.Now()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	runID := infrastructure.GetTraceID(ctx)

	logger.InfoContext(ctx, "Command starting",
		slog.String("app", config.AppName),
		slog.String("command", command),
		slog.String("version", config.AppVersion))

	cfg.ResolvePaths().LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry, command), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	runMetrics, err := infrastructure.NewRunMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run metrics: %w", err)
	}

	var opts []pipeline.Option
	if command == pipeline.CommandEDA && cfg.Publish.Sheets.Enabled {
		publisher, err := publish.NewSheetsPublisher(ctx, cfg.Publish.Sheets, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sheets publisher: %w", err)
		}
		opts = append(opts, pipeline.WithPublisher(publisher))
	}

	return &Application{
		Config:        cfg,
		Command:       command,
		Logger:        logger,
		OTelProviders: otelProviders,
		RunMetrics:    runMetrics,
		Runner:        pipeline.NewRunner(cfg, command, runID, otelProviders, logger, opts...),
		ctx:           ctx,
		startTime:     startTime,
	}, nil
}

// Run executes fn with a context that is cancelled on interrupt, then
// writes the manifest, records run metrics and shuts telemetry down. The
// error from fn is returned.
func (a *Application) Run(fn func(ctx context.Context, r *pipeline.Runner) error) error {
	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := fn(ctx, a.Runner)
	if runErr != nil {
		a.Logger.ErrorContext(ctx, "Command failed",
			slog.String("command", a.Command),
			slog.String("error", runErr.Error()))
	}

	// Cleanup runs even when the run was interrupted.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	if err := a.Runner.Finish(cleanupCtx, runErr); err != nil && runErr == nil {
		runErr = err
	}

	a.RunMetrics.Collect(cleanupCtx, a.startTime)

	if err := a.OTelProviders.Shutdown(cleanupCtx); err != nil {
		a.Logger.ErrorContext(cleanupCtx, "Error shutting down OpenTelemetry",
			slog.String("error", err.Error()))
	}

	if runErr == nil {
		a.Logger.InfoContext(cleanupCtx, "Command completed",
			slog.String("command", a.Command),
			slog.Duration("duration", time.Since(a.startTime)))
	}
	return runErr
}

// Close releases the log file
func (a *Application) Close() error {
	return infrastructure.CloseLogFile()
}
