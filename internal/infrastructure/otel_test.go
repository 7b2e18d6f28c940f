package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeTelemetry_Disabled(t *testing.T) {
	tel, err := InitializeTelemetry(TelemetryOptions{
		ServiceName:   "test",
		TraceExporter: "none",
	}, testLogger())
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	assert.Nil(t, tel.MeterProvider)
	assert.Nil(t, tel.Registry)
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Metrics)

	// no-op instruments accept records
	ctx, span := tel.Tracer.Start(context.Background(), "noop")
	RecordStepMetrics(ctx, tel.Metrics, "noop", time.Millisecond, nil)
	span.End()
	assert.Empty(t, TraceIDFromContext(ctx))

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitializeTelemetry_UnsupportedExporter(t *testing.T) {
	_, err := InitializeTelemetry(TelemetryOptions{ServiceName: "test", TraceExporter: "otlp"}, testLogger())
	assert.Error(t, err)
}

func TestTelemetry_TraceFile(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "logs", "trace.json")
	tel, err := InitializeTelemetry(TelemetryOptions{
		ServiceName:    "test",
		ServiceVersion: "0.0.1",
		TraceExporter:  "stdout",
		TraceFile:      traceFile,
	}, testLogger())
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	ctx, span := tel.Tracer.Start(context.Background(), "load-offsets")
	assert.Len(t, TraceIDFromContext(ctx), 32)
	SetSpanAttributes(ctx, map[string]interface{}{"files": 3, "dir": "Arabia", "tol": 0.25})
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "load-offsets")
	assert.Contains(t, string(content), "boom")
}

func TestTelemetry_MetricsTextfile(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "out", "shoreline.prom")
	tel, err := InitializeTelemetry(TelemetryOptions{
		ServiceName:    "test",
		TraceExporter:  "none",
		MetricsEnabled: true,
		MetricsFile:    metricsFile,
	}, testLogger())
	require.NoError(t, err)
	require.NotNil(t, tel.Registry)

	ctx := context.Background()
	RecordLoadMetrics(ctx, tel.Metrics, "offsets", 4, 1, 120, 2)
	RecordSeriesMetrics(ctx, tel.Metrics, "Arabia/min", 1440)
	RecordFileWritten(ctx, tel.Metrics, "csv")
	RecordStepMetrics(ctx, tel.Metrics, "aggregate", 25*time.Millisecond, nil)
	RecordStepMetrics(ctx, tel.Metrics, "plot", time.Millisecond, errors.New("no data"))

	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(content)
	for _, name := range []string{
		"shoreline_files_loaded",
		"shoreline_rows_skipped",
		"shoreline_bins_produced",
		"shoreline_files_written",
		"shoreline_step_errors",
		"shoreline_step_duration",
	} {
		assert.Contains(t, text, name)
	}
	assert.Contains(t, text, `collection="offsets"`)
	assert.Contains(t, text, `series="Arabia/min"`)
	assert.Contains(t, text, `step_id="plot"`)
	assert.Contains(t, text, `error_type="*errors.errorString"`)
	assert.Contains(t, text, `status="failure"`)
	assert.NotRegexp(t, `[{,]"[^"]+"=`, text, "label names must not need quoting")
	assert.NotContains(t, text, "target_info")
}

func TestWriteMetrics_NoRegistry(t *testing.T) {
	tel := &Telemetry{Logger: testLogger()}
	assert.NoError(t, tel.WriteMetrics())
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordLoadMetrics(ctx, nil, "offsets", 1, 0, 1, 0)
		RecordSeriesMetrics(ctx, nil, "s", 1)
		RecordFileWritten(ctx, nil, "csv")
		RecordStepMetrics(ctx, nil, "s", time.Second, nil)
	})
}
