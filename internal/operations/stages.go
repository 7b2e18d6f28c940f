package operations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shoreline/internal/config"
	"shoreline/internal/dataset"
	"shoreline/internal/exporter"
	"shoreline/internal/files"
	"shoreline/internal/infrastructure"
	"shoreline/internal/plotter"
	"shoreline/internal/report"
	"shoreline/internal/shoreline"
)

// Step IDs
const (
	StepIDLoadOffsets        = "load_offsets"
	StepIDAggregateOffsets   = "aggregate_offsets"
	StepIDLoadElevations     = "load_elevations"
	StepIDLoadPoints         = "load_points"
	StepIDExtremalPairs      = "extremal_pairs"
	StepIDWriteOffsets       = "write_offsets"
	StepIDWriteDiscrepancies = "write_discrepancies"
	StepIDPlotFigure         = "plot_figure"
	StepIDWriteSummary       = "write_summary"
)

// Output file names, relative to the output directory
const (
	OffsetsWorkbookFile     = "offsets.xlsx"
	OffsetsSummaryFile      = "offsets_summary.csv"
	DiscrepancyWorkbookFile = "discrepancy.xlsx"
	ComparisonFigureFile    = "shoreline_comparison.png"
	BinnedDir               = "binned"
)

// Input collection names used in reports and metrics
const (
	CollectionOffsets    = "offsets"
	CollectionElevations = "elevations"
	CollectionDeltas     = "deltas"
	CollectionPoints     = "points"
)

// plottedModes are drawn in the offset panels, in palette order
var plottedModes = []shoreline.Mode{shoreline.ModeMin, shoreline.ModeMax}

// OffsetSeriesFile names the CSV of one aggregated offset series
func OffsetSeriesFile(level shoreline.Level, mode shoreline.Mode) string {
	return fmt.Sprintf("%s_%s_offsets.csv", strings.ToLower(string(level)), mode)
}

// newLoader builds a loader for the run's grid and discovery filter
func newLoader(state *OperationState, schema dataset.Schema, logger *slog.Logger) (*dataset.Loader, error) {
	grid, err := state.Config.Grid()
	if err != nil {
		return nil, err
	}

	analysis := state.Config.Analysis
	return dataset.NewLoader(dataset.Options{
		Schema: schema,
		Grid:   grid,
		Filter: files.Filter{
			Extensions: analysis.Extensions,
			Exclude:    analysis.Exclude,
			Recursive:  analysis.Recursive,
		},
	}, logger), nil
}

// LoadOffsetsStep loads the lateral offset exports of every level from its
// own sub-directory of the offsets directory
type LoadOffsetsStep struct {
	logger *slog.Logger
}

// NewLoadOffsetsStep creates the step
func NewLoadOffsetsStep(logger *slog.Logger) *LoadOffsetsStep {
	return &LoadOffsetsStep{logger: orDefault(logger)}
}

func (s *LoadOffsetsStep) ID() string   { return StepIDLoadOffsets }
func (s *LoadOffsetsStep) Name() string { return "Load Offsets" }

// Execute loads each level. Source ids run on across levels so they stay
// unique within the run.
func (s *LoadOffsetsStep) Execute(ctx context.Context, state *OperationState) error {
	loader, err := newLoader(state, dataset.OffsetSchema(state.Config.Analysis.OffsetColumn), s.logger)
	if err != nil {
		return err
	}

	source := 0
	for _, level := range shoreline.Levels {
		dir := state.Paths.LevelOffsetsDir(string(level))
		datasets, rep, err := loader.LoadDir(ctx, dir, source)
		if err != nil {
			return fmt.Errorf("load %s offsets: %w", level, err)
		}

		state.Offsets[level] = datasets
		state.AddInput(CollectionOffsets+"/"+string(level), len(datasets), rep)
		source += len(datasets)

		infrastructure.RecordLoadMetrics(ctx, metricsOf(ctx), CollectionOffsets,
			rep.Files, rep.SkippedFiles, rep.Rows, rep.SkippedRows)
	}

	s.warnUnknownLevels(ctx, state.Paths.OffsetsDir)
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"offsets.datasets": source,
	})
	return nil
}

// warnUnknownLevels logs sub-directories that no level reads from
func (s *LoadOffsetsStep) warnUnknownLevels(ctx context.Context, dir string) {
	dirs, err := files.NewDiscovery("").ListDirectories(dir)
	if err != nil {
		return
	}
	for _, d := range dirs {
		if shoreline.LevelFromName(d.Name) == shoreline.LevelUnknown {
			s.logger.WarnContext(ctx, "Ignoring offsets directory with no known level",
				slog.String("dir", d.Path))
		}
	}
}

// AggregateOffsetsStep bins the pooled offsets of each level under every
// reduction mode
type AggregateOffsetsStep struct {
	logger *slog.Logger
}

// NewAggregateOffsetsStep creates the step
func NewAggregateOffsetsStep(logger *slog.Logger) *AggregateOffsetsStep {
	return &AggregateOffsetsStep{logger: orDefault(logger)}
}

func (s *AggregateOffsetsStep) ID() string   { return StepIDAggregateOffsets }
func (s *AggregateOffsetsStep) Name() string { return "Aggregate Offsets" }

func (s *AggregateOffsetsStep) Execute(ctx context.Context, state *OperationState) error {
	if _, err := state.Config.Mode(); err != nil {
		return err
	}

	for _, level := range shoreline.Levels {
		bins := shoreline.GroupByLongitude(state.Offsets[level]...)
		for _, mode := range shoreline.Modes {
			series, err := shoreline.AggregateBins(bins, mode, shoreline.FieldValue)
			if err != nil {
				return err
			}
			state.SetSeries(mode, level, series)
			infrastructure.RecordSeriesMetrics(ctx, metricsOf(ctx),
				strings.ToLower(string(level))+"_"+mode.String(), len(series))
		}

		s.logger.InfoContext(ctx, "Aggregated offsets",
			slog.String("level", string(level)),
			slog.Int("datasets", len(state.Offsets[level])),
			slog.Int("bins", bins.Len()))
	}
	return nil
}

// LoadElevationsStep loads the shoreline elevation profiles and, when
// present, the delta elevations drawn over them
type LoadElevationsStep struct {
	logger *slog.Logger
}

// NewLoadElevationsStep creates the step
func NewLoadElevationsStep(logger *slog.Logger) *LoadElevationsStep {
	return &LoadElevationsStep{logger: orDefault(logger)}
}

func (s *LoadElevationsStep) ID() string   { return StepIDLoadElevations }
func (s *LoadElevationsStep) Name() string { return "Load Elevations" }

func (s *LoadElevationsStep) Execute(ctx context.Context, state *OperationState) error {
	loader, err := newLoader(state, dataset.ElevationSchema(state.Config.Analysis.ElevationColumn), s.logger)
	if err != nil {
		return err
	}

	datasets, rep, err := loader.LoadDir(ctx, state.Paths.LevelsDir, 0)
	if err != nil {
		return fmt.Errorf("load elevations: %w", err)
	}
	state.Elevations = datasets
	state.AddInput(CollectionElevations, len(datasets), rep)
	infrastructure.RecordLoadMetrics(ctx, metricsOf(ctx), CollectionElevations,
		rep.Files, rep.SkippedFiles, rep.Rows, rep.SkippedRows)

	deltas := state.Paths.DeltasFile
	if deltas == "" {
		return nil
	}
	if _, err := os.Stat(deltas); errors.Is(err, fs.ErrNotExist) {
		s.logger.WarnContext(ctx, "Deltas file not found, continuing without deltas",
			slog.String("file", deltas))
		return nil
	}

	ds, rep, err := loader.LoadFile(ctx, deltas, len(datasets))
	if err != nil {
		return fmt.Errorf("load deltas: %w", err)
	}
	state.Deltas = ds.Points
	state.AddInput(CollectionDeltas, 1, rep)
	infrastructure.RecordLoadMetrics(ctx, metricsOf(ctx), CollectionDeltas,
		rep.Files, rep.SkippedFiles, rep.Rows, rep.SkippedRows)
	return nil
}

// LoadPointsStep loads the digitized shoreline vertices used by the
// extremal search
type LoadPointsStep struct {
	logger *slog.Logger
}

// NewLoadPointsStep creates the step
func NewLoadPointsStep(logger *slog.Logger) *LoadPointsStep {
	return &LoadPointsStep{logger: orDefault(logger)}
}

func (s *LoadPointsStep) ID() string   { return StepIDLoadPoints }
func (s *LoadPointsStep) Name() string { return "Load Points" }

func (s *LoadPointsStep) Execute(ctx context.Context, state *OperationState) error {
	schema := dataset.PointsSchema()
	if state.Config.Analysis.PointsLayout == config.PointsLayoutVertices {
		schema = dataset.VertexSchema()
	}

	loader, err := newLoader(state, schema, s.logger)
	if err != nil {
		return err
	}

	datasets, rep, err := loader.LoadDir(ctx, state.Paths.PointsDir, 0)
	if err != nil {
		return fmt.Errorf("load points: %w", err)
	}
	state.Points = datasets
	state.AddInput(CollectionPoints, len(datasets), rep)
	infrastructure.RecordLoadMetrics(ctx, metricsOf(ctx), CollectionPoints,
		rep.Files, rep.SkippedFiles, rep.Rows, rep.SkippedRows)
	return nil
}

// ExtremalPairsStep bins the loaded points by longitude and finds the
// conservative lateral discrepancy of every bin
type ExtremalPairsStep struct {
	logger *slog.Logger
}

// NewExtremalPairsStep creates the step
func NewExtremalPairsStep(logger *slog.Logger) *ExtremalPairsStep {
	return &ExtremalPairsStep{logger: orDefault(logger)}
}

func (s *ExtremalPairsStep) ID() string   { return StepIDExtremalPairs }
func (s *ExtremalPairsStep) Name() string { return "Extremal Pairs" }

func (s *ExtremalPairsStep) Execute(ctx context.Context, state *OperationState) error {
	if state.Points == nil {
		return NewDependencyError(s.ID(), "points")
	}

	state.Bins = shoreline.GroupByLongitude(state.Points...)
	state.Discrepancies = shoreline.FindDiscrepancies(state.Bins, state.Config.Body())
	infrastructure.RecordSeriesMetrics(ctx, metricsOf(ctx), "discrepancy", len(state.Discrepancies))

	s.logger.InfoContext(ctx, "Found extremal pairs",
		slog.Int("bins", state.Bins.Len()),
		slog.Int("discrepancies", len(state.Discrepancies)))
	return nil
}

// WriteOffsetsStep writes every aggregated series as CSV, the per-dataset
// longitude summaries, and a workbook holding all of them
type WriteOffsetsStep struct {
	logger *slog.Logger
}

// NewWriteOffsetsStep creates the step
func NewWriteOffsetsStep(logger *slog.Logger) *WriteOffsetsStep {
	return &WriteOffsetsStep{logger: orDefault(logger)}
}

func (s *WriteOffsetsStep) ID() string   { return StepIDWriteOffsets }
func (s *WriteOffsetsStep) Name() string { return "Write Offsets" }

func (s *WriteOffsetsStep) Execute(ctx context.Context, state *OperationState) error {
	if len(state.Series) == 0 {
		return NewDependencyError(s.ID(), "offset series")
	}

	outDir := state.Paths.OutputDir
	column := state.Config.Analysis.OffsetColumn
	csvOut := exporter.NewShorelineExporter(outDir)
	metrics := metricsOf(ctx)

	var sheets []exporter.Sheet
	var summaries []exporter.SummaryRow
	for _, level := range shoreline.Levels {
		for _, mode := range shoreline.Modes {
			series := state.Series[mode][level]
			name := OffsetSeriesFile(level, mode)
			if err := csvOut.ExportSeries(name, column, series); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			state.AddOutput(filepath.Join(outDir, name))
			infrastructure.RecordFileWritten(ctx, metrics, "csv")

			label := fmt.Sprintf("%s %s", level, mode)
			sheets = append(sheets, exporter.SeriesSheet(label, column, series))
			summaries = append(summaries, exporter.SummaryRow{
				Series:  label,
				Summary: shoreline.Describe(series),
			})
		}

		for _, ds := range state.Offsets[level] {
			name := filepath.Join(BinnedDir, strings.ToLower(string(level)), stem(ds.Name)+"_binned.csv")
			rows := shoreline.SummarizeDataset(ds, shoreline.FieldValue)
			if err := csvOut.ExportBinSummaries(name, column, rows); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			state.AddOutput(filepath.Join(outDir, name))
			infrastructure.RecordFileWritten(ctx, metrics, "csv")
		}
	}

	if err := csvOut.ExportSummaries(OffsetsSummaryFile, summaries); err != nil {
		return fmt.Errorf("write %s: %w", OffsetsSummaryFile, err)
	}
	state.AddOutput(filepath.Join(outDir, OffsetsSummaryFile))
	infrastructure.RecordFileWritten(ctx, metrics, "csv")

	sheets = append(sheets, exporter.SummarySheet(summaries))
	if err := exporter.NewWorkbookWriter(outDir).WriteWorkbook(OffsetsWorkbookFile, sheets); err != nil {
		return fmt.Errorf("write %s: %w", OffsetsWorkbookFile, err)
	}
	state.AddOutput(filepath.Join(outDir, OffsetsWorkbookFile))
	infrastructure.RecordFileWritten(ctx, metrics, "xlsx")

	s.logger.InfoContext(ctx, "Wrote offset series",
		slog.String("output_dir", outDir),
		slog.Int("series", len(summaries)))
	return nil
}

// WriteDiscrepanciesStep writes the max line, the min line and the
// discrepancy per longitude, plus a workbook with the full pairs
type WriteDiscrepanciesStep struct {
	logger *slog.Logger
}

// NewWriteDiscrepanciesStep creates the step
func NewWriteDiscrepanciesStep(logger *slog.Logger) *WriteDiscrepanciesStep {
	return &WriteDiscrepanciesStep{logger: orDefault(logger)}
}

func (s *WriteDiscrepanciesStep) ID() string   { return StepIDWriteDiscrepancies }
func (s *WriteDiscrepanciesStep) Name() string { return "Write Discrepancies" }

func (s *WriteDiscrepanciesStep) Execute(ctx context.Context, state *OperationState) error {
	if state.Bins == nil {
		return NewDependencyError(s.ID(), "extremal pairs")
	}

	outDir := state.Paths.OutputDir
	metrics := metricsOf(ctx)

	written, err := exporter.NewShorelineExporter(outDir).ExportDiscrepancies(state.Discrepancies)
	state.AddOutput(written...)
	for range written {
		infrastructure.RecordFileWritten(ctx, metrics, "csv")
	}
	if err != nil {
		return err
	}

	sheets := []exporter.Sheet{
		exporter.DiscrepancySheet("Discrepancy", state.Discrepancies),
		exporter.SummarySheet([]exporter.SummaryRow{{
			Series:  "Discrepancy [km]",
			Summary: shoreline.Describe(report.DiscrepancySeries(state.Discrepancies)),
		}}),
	}
	if err := exporter.NewWorkbookWriter(outDir).WriteWorkbook(DiscrepancyWorkbookFile, sheets); err != nil {
		return fmt.Errorf("write %s: %w", DiscrepancyWorkbookFile, err)
	}
	state.AddOutput(filepath.Join(outDir, DiscrepancyWorkbookFile))
	infrastructure.RecordFileWritten(ctx, metrics, "xlsx")
	return nil
}

// PlotFigureStep renders the elevation and offset comparison figure
type PlotFigureStep struct {
	logger *slog.Logger
}

// NewPlotFigureStep creates the step
func NewPlotFigureStep(logger *slog.Logger) *PlotFigureStep {
	return &PlotFigureStep{logger: orDefault(logger)}
}

func (s *PlotFigureStep) ID() string   { return StepIDPlotFigure }
func (s *PlotFigureStep) Name() string { return "Plot Figure" }

func (s *PlotFigureStep) Execute(ctx context.Context, state *OperationState) error {
	analysis := state.Config.Analysis

	offsets := make(map[shoreline.Level][]plotter.OffsetSeries, len(shoreline.Levels))
	for _, level := range shoreline.Levels {
		for _, mode := range plottedModes {
			series, ok := state.Series[mode][level]
			if !ok {
				continue
			}
			offsets[level] = append(offsets[level], plotter.OffsetSeries{
				Label:  mode.String(),
				Series: series,
			})
		}
	}

	fig := plotter.ComparisonFigure(plotter.ComparisonInput{
		Elevations:  state.Elevations,
		Deltas:      state.Deltas,
		Offsets:     offsets,
		ValueLabel:  analysis.ElevationColumn,
		OffsetLabel: analysis.OffsetColumn,
	})

	path := state.Paths.OutputPath(ComparisonFigureFile)
	if err := fig.Save(path); err != nil {
		return fmt.Errorf("save figure: %w", err)
	}
	state.AddOutput(path)
	infrastructure.RecordFileWritten(ctx, metricsOf(ctx), "png")

	s.logger.InfoContext(ctx, "Saved comparison figure", slog.String("path", path))
	return nil
}

// WriteSummaryStep prints the run statistics and saves them to the
// summary file
type WriteSummaryStep struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewWriteSummaryStep creates the step
func NewWriteSummaryStep(logger *slog.Logger) *WriteSummaryStep {
	return &WriteSummaryStep{logger: orDefault(logger), now: time.Now}
}

func (s *WriteSummaryStep) ID() string   { return StepIDWriteSummary }
func (s *WriteSummaryStep) Name() string { return "Write Summary" }

func (s *WriteSummaryStep) Execute(ctx context.Context, state *OperationState) error {
	cfg := state.Config

	rep := report.Report{
		Generated: s.now(),
		RunID:     state.ID,
		Tolerance: cfg.Analysis.Tolerance,
		RadiusKm:  cfg.Analysis.RadiusKm,
		Inputs:    state.Inputs,
	}

	if len(state.Series) > 0 {
		mode, err := cfg.Mode()
		if err != nil {
			return err
		}
		rep.Levels = report.LevelSummaries(state.Series[mode], mode)
	}
	if state.Bins != nil {
		summary := shoreline.Describe(report.DiscrepancySeries(state.Discrepancies))
		rep.Discrepancy = &summary
	}

	path := state.Paths.OutputPath(report.SummaryFile)
	if err := report.SaveSummaryReport(rep, path); err != nil {
		return err
	}
	state.AddOutput(path)
	infrastructure.RecordFileWritten(ctx, metricsOf(ctx), "txt")

	if state.Stdout != nil {
		if err := rep.WriteText(state.Stdout); err != nil {
			return fmt.Errorf("print summary: %w", err)
		}
	}
	return nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// stem strips every extension from a file name
func stem(name string) string {
	base := filepath.Base(name)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
