package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"cobranza/internal/config"
)

const (
	ServiceName = "cobranza"
	MeterName   = "cobranza"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName     string
	ServiceVersion  string
	Environment     string
	Command         string
	TraceExporter   string // "stdout", "none"
	EnableMetrics   bool
	SampleRatio     float64
	MetricsTextfile string
}

// OTelProviders holds the OpenTelemetry providers for one batch run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	Metrics        *PipelineMetrics
	Logger         *slog.Logger

	textfile string
}

// PipelineMetrics groups the instruments recorded by the batch commands
type PipelineMetrics struct {
	RowsLoaded      metric.Int64Counter
	RowsWritten     metric.Int64Counter
	UnparsedDates   metric.Int64Counter
	TrialsCompleted metric.Int64Counter
	StageDuration   metric.Float64Histogram
}

// NewOTelConfig builds the telemetry configuration for a command
func NewOTelConfig(cfg config.TelemetryConfig, command string) *OTelConfig {
	return &OTelConfig{
		ServiceName:     ServiceName,
		ServiceVersion:  config.AppVersion,
		Environment:     cfg.Environment,
		Command:         command,
		TraceExporter:   cfg.TraceExporter,
		EnableMetrics:   cfg.EnableMetrics,
		SampleRatio:     cfg.SampleRatio,
		MetricsTextfile: cfg.MetricsTextfile,
	}
}

// InitializeOTel initializes tracing and metrics for a batch run.
// Disabled signals fall back to no-op implementations so callers never
// need nil checks.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Tracer:   tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:    metricnoop.NewMeterProvider().Meter(MeterName),
		Logger:   logger,
		textfile: cfg.MetricsTextfile,
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	metrics, err := CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	providers.Metrics = metrics

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.String("command", cfg.Command),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("cobranza.command", cfg.Command),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Batch runs are short; a syncer exports each span as it ends.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up the Prometheus-backed meter on a private registry
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("textfile", cfg.MetricsTextfile))

	return nil
}

// CreatePipelineMetrics creates the instruments used by the batch commands
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"cobranza_rows_loaded_total",
		metric.WithDescription("Rows read from input files"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"cobranza_rows_written_total",
		metric.WithDescription("Rows written to output files"),
	)
	if err != nil {
		return nil, err
	}

	unparsedDates, err := meter.Int64Counter(
		"cobranza_unparsed_dates_total",
		metric.WithDescription("Charge dates that could not be parsed and were excluded from the monthly series"),
	)
	if err != nil {
		return nil, err
	}

	trials, err := meter.Int64Counter(
		"cobranza_search_trials_total",
		metric.WithDescription("Hyperparameter search trials completed"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"cobranza_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:      rowsLoaded,
		RowsWritten:     rowsWritten,
		UnparsedDates:   unparsedDates,
		TrialsCompleted: trials,
		StageDuration:   stageDuration,
	}, nil
}

// RunStage runs fn inside a span named after the stage and records its
// duration. The error returned by fn is recorded on the span and returned.
func (p *OTelProviders) RunStage(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	ctx, span := p.Tracer.Start(ctx, stage)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	p.Metrics.StageDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", err == nil),
	))

	logger := LoggerWithContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "Stage failed",
			slog.String("stage", stage),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()))
		return err
	}

	logger.InfoContext(ctx, "Stage completed",
		slog.String("stage", stage),
		slog.Duration("duration", elapsed))
	return nil
}

// RecordRows adds n to a row counter labelled with the table name
func RecordRows(ctx context.Context, counter metric.Int64Counter, table string, n int) {
	counter.Add(ctx, int64(n), metric.WithAttributes(attribute.String("table", table)))
}

// Shutdown writes the metrics textfile, if configured, and shuts down the
// providers. The textfile is written first because a stopped meter provider
// no longer collects.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.textfile != "" && p.Registry != nil {
		if err := promclient.WriteToTextfile(p.textfile, p.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
