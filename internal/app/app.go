package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoreline/internal/config"
	apperrors "shoreline/internal/errors"
	"shoreline/internal/infrastructure"
	"shoreline/internal/operations"
)

// shutdownTimeout bounds the telemetry flush at the end of a run
const shutdownTimeout = 10 * time.Second

// Overrides are values given on the command line. Zero values leave the
// loaded configuration untouched.
type Overrides struct {
	BaseDir    string
	OffsetsDir string
	PointsDir  string
	OutputDir  string
	Tolerance  float64
	Mode       string
	RadiusKm   float64
}

// Apply writes the set overrides into cfg
func (o Overrides) Apply(cfg *config.Config) {
	if o.BaseDir != "" {
		cfg.Paths.BaseDir = o.BaseDir
	}
	if o.OffsetsDir != "" {
		cfg.Paths.OffsetsDir = o.OffsetsDir
	}
	if o.PointsDir != "" {
		cfg.Paths.PointsDir = o.PointsDir
	}
	if o.OutputDir != "" {
		cfg.Paths.OutputDir = o.OutputDir
	}
	if o.Tolerance != 0 {
		cfg.Analysis.Tolerance = o.Tolerance
	}
	if o.Mode != "" {
		cfg.Analysis.Mode = o.Mode
	}
	if o.RadiusKm != 0 {
		cfg.Analysis.RadiusKm = o.RadiusKm
	}
}

// Options select the configuration and the pipeline of a run
type Options struct {
	// Name identifies the command in logs
	Name       string
	ConfigFile string
	Overrides  Overrides
	Pipeline   func(logger *slog.Logger) *operations.Registry
}

// Application is one configured batch run
type Application struct {
	Name      string
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Manager   *operations.Manager
}

// NewApplication loads the configuration and initializes logging, telemetry
// and the step manager
func NewApplication(opts Options) (*Application, error) {
	if opts.Pipeline == nil {
		return nil, apperrors.NewAppValidationError("no pipeline selected")
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	opts.Overrides.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command-line override: %w", err)
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, paths.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("command", opts.Name),
		slog.String("version", config.AppVersion))
	paths.LogPathResolution(logger)

	telemetry, err := infrastructure.InitializeTelemetry(
		infrastructure.NewTelemetryOptions(cfg.Telemetry, paths), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return &Application{
		Name:      opts.Name,
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Telemetry: telemetry,
		Manager:   operations.NewManager(opts.Pipeline(logger), telemetry, logger),
	}, nil
}

// Run executes the pipeline once. An interrupt cancels the run before the
// next step starts. Telemetry is flushed whether or not the run succeeds.
func (a *Application) Run(ctx context.Context) (*operations.OperationState, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	state := operations.NewOperationState(runID, a.Config, a.Paths)
	start := time.Now()
	runErr := a.Manager.Execute(ctx, state)

	if runErr != nil {
		a.Logger.ErrorContext(ctx, "Run failed",
			slog.String("command", a.Name),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", runErr.Error()))
	} else {
		a.Logger.InfoContext(ctx, "Run completed",
			slog.String("command", a.Name),
			slog.Duration("duration", time.Since(start)),
			slog.Int("outputs", len(state.Outputs)))
	}

	stopErr := a.Stop(context.WithoutCancel(ctx))
	return state, errors.Join(runErr, stopErr)
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down telemetry", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
