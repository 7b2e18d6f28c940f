package dataset

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	apperrors "shoreline/internal/errors"
	"shoreline/internal/files"
	"shoreline/internal/shoreline"
)

// DefaultNullValues are cell contents read as a missing value
var DefaultNullValues = []string{"", "null", "nan", "n/a", "na", "-"}

// citationPattern pulls the citation out of names like Parker1993_Arabia.csv
var citationPattern = regexp.MustCompile(`([A-Za-z]+[0-9]+)_`)

// Options configures a Loader
type Options struct {
	Schema     Schema
	Grid       shoreline.Grid
	Filter     files.Filter
	NullValues []string
}

// LoadReport summarizes one directory load
type LoadReport struct {
	Files        int
	Rows         int
	SkippedRows  int
	SkippedFiles int
}

// Add accumulates another report
func (r *LoadReport) Add(other LoadReport) {
	r.Files += other.Files
	r.Rows += other.Rows
	r.SkippedRows += other.SkippedRows
	r.SkippedFiles += other.SkippedFiles
}

// Loader reads shoreline exports into datasets
type Loader struct {
	opts      Options
	nulls     map[string]struct{}
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewLoader creates a loader. A zero Grid uses the default tolerance and an
// empty NullValues uses DefaultNullValues.
func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Grid.Tolerance() == 0 {
		opts.Grid = shoreline.MustGrid(shoreline.DefaultTolerance)
	}
	if len(opts.NullValues) == 0 {
		opts.NullValues = DefaultNullValues
	}

	nulls := make(map[string]struct{}, len(opts.NullValues))
	for _, v := range opts.NullValues {
		nulls[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	return &Loader{
		opts:      opts,
		nulls:     nulls,
		discovery: files.NewDiscovery(""),
		logger:    logger.With("component", "loader"),
	}
}

// LoadDir loads every accepted file under dir. Source ids start at
// firstSource and increase by one per loaded dataset.
func (l *Loader) LoadDir(ctx context.Context, dir string, firstSource int) ([]shoreline.Dataset, LoadReport, error) {
	var report LoadReport

	found, err := l.discovery.FindDataFiles(dir, l.opts.Filter)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, report, apperrors.NewNotFoundError("input directory "+dir, err)
		}
		return nil, report, apperrors.NewStorageError("failed to list input directory", err).
			WithContext("dir", dir)
	}

	l.logger.InfoContext(ctx, "Discovered input files",
		slog.String("dir", dir),
		slog.Int("files", len(found)))

	datasets := make([]shoreline.Dataset, 0, len(found))
	source := firstSource
	for _, f := range found {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		ds, fileReport, err := l.LoadFile(ctx, f.Path, source)
		report.Add(fileReport)
		if err != nil {
			if errors.Is(err, apperrors.ErrSchemaMismatch) {
				l.logger.WarnContext(ctx, "Skipping file with unusable header",
					slog.String("file", f.Name),
					slog.String("error", err.Error()))
				continue
			}
			return nil, report, err
		}

		datasets = append(datasets, ds)
		source++
	}

	l.logger.InfoContext(ctx, "Loaded input directory",
		slog.String("dir", dir),
		slog.Int("datasets", len(datasets)),
		slog.Int("rows", report.Rows),
		slog.Int("skipped_rows", report.SkippedRows),
		slog.Int("skipped_files", report.SkippedFiles))

	return datasets, report, nil
}

// LoadFile loads one export as the dataset with the given source id. A
// header that does not satisfy the schema yields ErrSchemaMismatch and a
// report counting one skipped file.
func (l *Loader) LoadFile(ctx context.Context, path string, source int) (shoreline.Dataset, LoadReport, error) {
	var report LoadReport

	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return shoreline.Dataset{}, report, apperrors.NewNotFoundError("input file "+path, err)
		}
		return shoreline.Dataset{}, report, apperrors.NewStorageError("failed to read input file", err).
			InFile(path)
	}

	if len(records) == 0 {
		report.SkippedFiles++
		return shoreline.Dataset{}, report, apperrors.NewParsingError("empty file", apperrors.ErrSchemaMismatch).
			InFile(path)
	}

	layout, err := l.opts.Schema.resolve(records[0])
	if err != nil {
		report.SkippedFiles++
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.InFile(path).AtLine(1)
		}
		return shoreline.Dataset{}, report, err
	}

	name := filepath.Base(path)
	ds := shoreline.Dataset{
		Name:   name,
		Label:  Label(name),
		Level:  LevelOf(path),
		Source: source,
		Path:   path,
		Points: make([]shoreline.Point, 0, len(records)-1),
	}

	for i, row := range records[1:] {
		p, err := l.parseRow(row, layout)
		if err != nil {
			report.SkippedRows++
			rowErr := apperrors.NewRowError(path, i+2, err)
			l.logger.DebugContext(ctx, "Skipping row",
				slog.String("location", rowErr.Location()),
				slog.String("error", rowErr.Error()))
			continue
		}
		p.Source = source
		ds.Points = append(ds.Points, p)
	}

	report.Files = 1
	report.Rows = len(ds.Points)

	l.logger.InfoContext(ctx, "Opened dataset",
		slog.String("file", name),
		slog.String("label", ds.Label),
		slog.String("level", string(ds.Level)),
		slog.Int("source", source),
		slog.Int("points", len(ds.Points)),
		slog.Int("skipped_rows", report.SkippedRows))

	return ds, report, nil
}

func (l *Loader) parseRow(row []string, layout layout) (shoreline.Point, error) {
	if isBlank(row) {
		return shoreline.Point{}, apperrors.ErrMalformedRow
	}

	lon, err := l.coordinate(row, layout.lon, 180)
	if err != nil {
		return shoreline.Point{}, err
	}
	if math.IsNaN(lon) {
		return shoreline.Point{}, apperrors.ErrMalformedRow
	}

	lat := math.NaN()
	if layout.lat.present() {
		if lat, err = l.coordinate(row, layout.lat, 90); err != nil {
			return shoreline.Point{}, err
		}
	}

	value := math.NaN()
	if layout.value.present() {
		if value, err = l.cell(row, layout.value); err != nil {
			return shoreline.Point{}, err
		}
	}

	return shoreline.Point{
		Latitude:  lat,
		Longitude: l.opts.Grid.Snap(lon),
		Value:     value,
	}, nil
}

// coordinate parses a cell and checks it against ±limit degrees
func (l *Loader) coordinate(row []string, idx index, limit float64) (float64, error) {
	v, err := l.cell(row, idx)
	if err != nil {
		return 0, err
	}
	if math.Abs(v) > limit || math.IsInf(v, 0) {
		return 0, apperrors.ErrMalformedRow
	}
	return v, nil
}

// cell parses a numeric cell; null markers read as NaN
func (l *Loader) cell(row []string, idx index) (float64, error) {
	raw, ok := idx.at(row)
	if !ok {
		return 0, apperrors.ErrMalformedRow
	}
	raw = strings.TrimSpace(raw)
	if _, null := l.nulls[strings.ToLower(raw)]; null {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.ErrMalformedRow
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Label returns the citation embedded in a file name, e.g. Parker1993 for
// Parker1993_Arabia.csv, or the name without extensions when there is none
func Label(name string) string {
	if m := citationPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	base := filepath.Base(name)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// LevelOf classifies a file by its name, then by its parent directory
func LevelOf(path string) shoreline.Level {
	if level := shoreline.LevelFromName(filepath.Base(path)); level != shoreline.LevelUnknown {
		return level
	}
	return shoreline.LevelFromName(filepath.Base(filepath.Dir(path)))
}
