package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"shoreline/internal/infrastructure"
)

// Manager executes the registered steps of a run in order
type Manager struct {
	registry *Registry
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger
}

// NewManager creates a manager. A nil telemetry disables tracing and metrics.
func NewManager(registry *Registry, telemetry *infrastructure.Telemetry, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		registry: registry,
		tracer:   tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
		logger:   infrastructure.WithComponent(logger, "operations"),
	}
	if telemetry != nil {
		m.tracer = telemetry.Tracer
		m.metrics = telemetry.Metrics
	}
	return m
}

// Registry returns the registry of the manager
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Execute runs every registered step against state. The first failing
// step ends the run and the remaining steps are marked skipped.
func (m *Manager) Execute(ctx context.Context, state *OperationState) error {
	steps := m.registry.List()

	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx = withMetrics(ctx, m.metrics)
	ctx, span := m.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.Int("operation.steps", len(steps)),
		),
	)
	defer span.End()

	state.Start()
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", state.ID),
		slog.Int("step_count", len(steps)))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			cancelErr := NewCancellationError(step.ID(), err)
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			state.Cancel(cancelErr)
			infrastructure.RecordError(ctx, cancelErr)
			return cancelErr
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], "previous step "+step.ID()+" failed")
			state.Fail(err)
			infrastructure.RecordError(ctx, err)
			return err
		}
	}

	state.Complete()
	m.logger.InfoContext(ctx, "all_steps_completed",
		slog.String("operation_id", state.ID),
		slog.Int("outputs", len(state.Outputs)))
	return nil
}

// executeStep runs one step inside its own span
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())

	ctx, span := m.tracer.Start(ctx, "step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
	defer span.End()

	stepState.Start()
	start := time.Now()
	err := step.Execute(ctx, state)
	duration := time.Since(start)
	infrastructure.RecordStepMetrics(ctx, m.metrics, step.ID(), duration, err)

	if err != nil {
		err = WrapError(err, step.ID(), "step execution failed")
		stepState.Fail(err)
		infrastructure.RecordError(ctx, err)
		m.logger.ErrorContext(ctx, "step_execution_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "step_completed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil {
			s.Skip(reason)
		}
	}
}

type metricsKey struct{}

// withMetrics makes the pipeline metrics available to steps
func withMetrics(ctx context.Context, metrics *infrastructure.PipelineMetrics) context.Context {
	return context.WithValue(ctx, metricsKey{}, metrics)
}

// metricsOf returns the pipeline metrics of the run, or nil
func metricsOf(ctx context.Context) *infrastructure.PipelineMetrics {
	metrics, _ := ctx.Value(metricsKey{}).(*infrastructure.PipelineMetrics)
	return metrics
}
