package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"shoreline/internal/config"
)

// InstrumentationName names the tracer and meter of the pipeline
const InstrumentationName = "shoreline"

// TelemetryOptions holds the resolved telemetry settings of a run
type TelemetryOptions struct {
	ServiceName    string
	ServiceVersion string
	TraceExporter  string // "stdout" or "none"
	TraceFile      string // empty writes spans to stdout
	MetricsEnabled bool
	MetricsFile    string // Prometheus textfile written on Shutdown
}

// NewTelemetryOptions combines the telemetry config with resolved paths
func NewTelemetryOptions(cfg config.TelemetryConfig, paths *config.Paths) TelemetryOptions {
	return TelemetryOptions{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: config.AppVersion,
		TraceExporter:  cfg.TraceExporter,
		TraceFile:      paths.TraceFile,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsFile:    paths.MetricsFile,
	}
}

// Telemetry holds the tracing and metrics providers of a batch run
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *PipelineMetrics
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	metricsFile string
	traceOut    *os.File
}

// InitializeTelemetry sets up tracing and metrics. Disabled signals fall
// back to no-op providers so callers never check for nil.
func InitializeTelemetry(opts TelemetryOptions, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res := createResource(opts)

	t := &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		Logger: logger,
	}

	if err := t.initializeTracing(opts, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if opts.MetricsEnabled {
		if err := t.initializeMetrics(opts, res); err != nil {
			t.closeTraceFile()
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	metrics, err := CreatePipelineMetrics(t.Meter)
	if err != nil {
		t.closeTraceFile()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	t.Metrics = metrics

	logger.InfoContext(ctx, "Telemetry initialized",
		slog.String("service", opts.ServiceName),
		slog.String("trace_exporter", opts.TraceExporter),
		slog.Bool("metrics_enabled", opts.MetricsEnabled))

	return t, nil
}

// createResource creates the OpenTelemetry resource
func createResource(opts TelemetryOptions) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func (t *Telemetry) initializeTracing(opts TelemetryOptions, res *resource.Resource) error {
	switch opts.TraceExporter {
	case "", "none":
		return nil
	case "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", opts.TraceExporter)
	}

	exporterOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if opts.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		file, err := os.Create(opts.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		t.traceOut = file
		exporterOpts = append(exporterOpts, stdouttrace.WithWriter(file))
	}

	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		t.closeTraceFile()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	t.TracerProvider = tp
	t.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(opts.ServiceVersion))
	otel.SetTracerProvider(tp)

	return nil
}

// initializeMetrics registers the Prometheus exporter on a private registry,
// flushed to a textfile at shutdown since a batch run has no scrape endpoint
func (t *Telemetry) initializeMetrics(opts TelemetryOptions, res *resource.Resource) error {
	registry := prometheus.NewRegistry()

	// Resource attributes carry dotted keys; the textfile keeps only metric labels
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.Registry = registry
	t.MeterProvider = mp
	t.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(opts.ServiceVersion))
	t.metricsFile = opts.MetricsFile
	otel.SetMeterProvider(mp)

	return nil
}

// WriteMetrics writes the current registry contents in the Prometheus text
// format. It is a no-op when metrics are disabled or no file is configured.
func (t *Telemetry) WriteMetrics() error {
	if t.Registry == nil || t.metricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// Shutdown flushes metrics and spans and releases the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if err := t.WriteMetrics(); err != nil {
		errs = append(errs, err)
	}

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := t.closeTraceFile(); err != nil {
		errs = append(errs, fmt.Errorf("trace file close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %w", errors.Join(errs...))
	}

	t.Logger.InfoContext(ctx, "Telemetry shutdown complete")
	return nil
}

func (t *Telemetry) closeTraceFile() error {
	if t.traceOut == nil {
		return nil
	}
	err := t.traceOut.Close()
	t.traceOut = nil
	return err
}

// PipelineMetrics holds the instruments recorded by a run
type PipelineMetrics struct {
	FilesLoaded  metric.Int64Counter
	FilesSkipped metric.Int64Counter
	RowsLoaded   metric.Int64Counter
	RowsSkipped  metric.Int64Counter
	BinsProduced metric.Int64Counter
	StepsTotal   metric.Int64Counter
	StepErrors   metric.Int64Counter
	StepDuration metric.Float64Histogram
	FilesWritten metric.Int64Counter
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	filesLoaded, err := meter.Int64Counter(
		"shoreline_files_loaded",
		metric.WithDescription("Total number of input files loaded"),
	)
	if err != nil {
		return nil, err
	}

	filesSkipped, err := meter.Int64Counter(
		"shoreline_files_skipped",
		metric.WithDescription("Total number of input files skipped"),
	)
	if err != nil {
		return nil, err
	}

	rowsLoaded, err := meter.Int64Counter(
		"shoreline_rows_loaded",
		metric.WithDescription("Total number of input rows turned into points"),
	)
	if err != nil {
		return nil, err
	}

	rowsSkipped, err := meter.Int64Counter(
		"shoreline_rows_skipped",
		metric.WithDescription("Total number of malformed input rows skipped"),
	)
	if err != nil {
		return nil, err
	}

	binsProduced, err := meter.Int64Counter(
		"shoreline_bins_produced",
		metric.WithDescription("Total number of longitude bins in produced series"),
	)
	if err != nil {
		return nil, err
	}

	stepsTotal, err := meter.Int64Counter(
		"shoreline_steps",
		metric.WithDescription("Total number of pipeline steps executed"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"shoreline_step_errors",
		metric.WithDescription("Total number of failed pipeline steps"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"shoreline_step_duration",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	filesWritten, err := meter.Int64Counter(
		"shoreline_files_written",
		metric.WithDescription("Total number of output files written"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		FilesLoaded:  filesLoaded,
		FilesSkipped: filesSkipped,
		RowsLoaded:   rowsLoaded,
		RowsSkipped:  rowsSkipped,
		BinsProduced: binsProduced,
		StepsTotal:   stepsTotal,
		StepErrors:   stepErrors,
		StepDuration: stepDuration,
		FilesWritten: filesWritten,
	}, nil
}

// Metric label keys. Underscores keep the textfile readable by parsers
// that predate quoted UTF-8 label names.
const (
	labelCollection = "collection"
	labelSeries     = "series"
	labelKind       = "kind"
	labelStepID     = "step_id"
	labelErrorType  = "error_type"
	labelStatus     = "status"
)

// RecordLoadMetrics records the outcome of loading one input collection
func RecordLoadMetrics(ctx context.Context, metrics *PipelineMetrics, collection string, files, skippedFiles, rows, skippedRows int) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(labelCollection, collection))
	metrics.FilesLoaded.Add(ctx, int64(files), attrs)
	metrics.FilesSkipped.Add(ctx, int64(skippedFiles), attrs)
	metrics.RowsLoaded.Add(ctx, int64(rows), attrs)
	metrics.RowsSkipped.Add(ctx, int64(skippedRows), attrs)
}

// RecordSeriesMetrics records the number of bins of a produced series
func RecordSeriesMetrics(ctx context.Context, metrics *PipelineMetrics, series string, bins int) {
	if metrics == nil {
		return
	}
	metrics.BinsProduced.Add(ctx, int64(bins), metric.WithAttributes(attribute.String(labelSeries, series)))
}

// RecordFileWritten counts one output file of the given kind
func RecordFileWritten(ctx context.Context, metrics *PipelineMetrics, kind string) {
	if metrics == nil {
		return
	}
	metrics.FilesWritten.Add(ctx, 1, metric.WithAttributes(attribute.String(labelKind, kind)))
}

// RecordStepMetrics records metrics for one pipeline step execution
func RecordStepMetrics(ctx context.Context, metrics *PipelineMetrics, stepID string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(labelStepID, stepID),
	}
	metrics.StepsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	status := "success"
	if err != nil {
		status = "failure"
		metrics.StepErrors.Add(ctx, 1, metric.WithAttributes(append(attrs,
			attribute.String(labelErrorType, fmt.Sprintf("%T", err)))...))
	}
	metrics.StepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(append(attrs, attribute.String(labelStatus, status))...))
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
