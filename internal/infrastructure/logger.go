package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cobranza/internal/config"
)

var (
	logMu      sync.Mutex
	rootLogger *slog.Logger
	logFile    *os.File
)

// contextKey is a type for context keys
type contextKey string

// TraceIDContextKey is the context key of the run id
const TraceIDContextKey contextKey = "trace_id"

// traceAttr is the attribute key the run id is logged under
const traceAttr = "trace_id"

// InitializeLogger builds the process logger from cfg and installs it as
// the slog default. Later calls return the first logger until
// ResetLoggerForTesting is called.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	logMu.Lock()
	defer logMu.Unlock()

	if rootLogger != nil {
		return rootLogger, nil
	}

	out, file, err := openOutput(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}
	logFile = file
	rootLogger = newLogger(cfg, out)
	slog.SetDefault(rootLogger)
	return rootLogger, nil
}

// GetLogger returns the process logger, or slog.Default before
// InitializeLogger has run.
func GetLogger() *slog.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	if rootLogger == nil {
		return slog.Default()
	}
	return rootLogger
}

// createLogger builds a logger without touching the process logger.
func createLogger(cfg config.LoggingConfig, stdout io.Writer) (*slog.Logger, error) {
	out, _, err := openOutput(cfg, stdout)
	if err != nil {
		return nil, err
	}
	return newLogger(cfg, out), nil
}

func newLogger(cfg config.LoggingConfig, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(cfg.Level),
	}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	return slog.New(&traceHandler{Handler: h}).With(
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion))
}

// openOutput resolves the log destination. The returned file is non-nil
// when a log file was opened and must be closed by the caller.
func openOutput(cfg config.LoggingConfig, stdout io.Writer) (io.Writer, *os.File, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return stdout, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}

	if mode == "both" {
		return io.MultiWriter(stdout, f), f, nil
	}
	return f, f, nil
}

// traceHandler adds the run id carried by the context to every record.
// A bound handler already has it as a static attribute.
type traceHandler struct {
	slog.Handler
	bound bool
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.bound {
		if id := GetTraceID(ctx); id != "" {
			r.AddAttrs(slog.String(traceAttr, id))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs), bound: h.bound}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name), bound: h.bound}
}

// parseLogLevel maps a configured level name to slog. Unknown names are info.
func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithTraceID returns a context carrying the run id
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the run id carried by ctx, or ""
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(TraceIDContextKey).(string)
	return id
}

// CloseLogFile closes the log file opened by InitializeLogger, if any.
func CloseLogFile() error {
	logMu.Lock()
	defer logMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting forgets the process logger so the next
// InitializeLogger builds a new one.
func ResetLoggerForTesting() {
	CloseLogFile()
	logMu.Lock()
	rootLogger = nil
	logMu.Unlock()
}
