package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RunMetrics records the resource footprint of a batch run
type RunMetrics struct {
	goRoutines    metric.Int64Gauge
	heapInUse     metric.Int64Gauge
	totalAlloc    metric.Int64Gauge
	gcCount       metric.Int64Gauge
	processUptime metric.Float64Gauge
}

// RunStats is a snapshot of Go runtime statistics
type RunStats struct {
	GoRoutines  int64
	HeapInUse   int64
	TotalAlloc  int64
	GCCount     uint32
	LastGCPause time.Duration
	Uptime      time.Duration
}

// NewRunMetrics creates the runtime gauges on meter
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"cobranza_goroutines",
		metric.WithDescription("Number of goroutines at the end of the run"),
	)
	if err != nil {
		return nil, err
	}

	heapInUse, err := meter.Int64Gauge(
		"cobranza_heap_inuse_bytes",
		metric.WithDescription("Heap bytes in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"cobranza_alloc_bytes_total",
		metric.WithDescription("Cumulative bytes allocated during the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"cobranza_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"cobranza_run_seconds",
		metric.WithDescription("Wall time of the run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		goRoutines:    goRoutines,
		heapInUse:     heapInUse,
		totalAlloc:    totalAlloc,
		gcCount:       gcCount,
		processUptime: uptime,
	}, nil
}

// Collect reads runtime statistics, records them and logs a summary line
func (rm *RunMetrics) Collect(ctx context.Context, startTime time.Time) *RunStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &RunStats{
		GoRoutines:  int64(runtime.NumGoroutine()),
		HeapInUse:   int64(memStats.HeapInuse),
		TotalAlloc:  int64(memStats.TotalAlloc),
		GCCount:     memStats.NumGC,
		LastGCPause: time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256]),
		Uptime:      time.Since(startTime),
	}

	rm.goRoutines.Record(ctx, stats.GoRoutines)
	rm.heapInUse.Record(ctx, stats.HeapInUse)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.processUptime.Record(ctx, stats.Uptime.Seconds())

	LoggerWithContext(ctx).InfoContext(ctx, "Run resource usage",
		slog.Int64("goroutines", stats.GoRoutines),
		slog.Float64("heap_inuse_mb", float64(stats.HeapInUse)/1024/1024),
		slog.Float64("total_alloc_mb", float64(stats.TotalAlloc)/1024/1024),
		slog.Uint64("gc_cycles", uint64(stats.GCCount)),
		slog.Duration("last_gc_pause", stats.LastGCPause),
		slog.Duration("uptime", stats.Uptime))

	return stats
}
