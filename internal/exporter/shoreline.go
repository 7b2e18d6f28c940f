package exporter

import (
	"fmt"

	"shoreline/internal/shoreline"
)

// Discrepancy output file names
const (
	MaxLineFile   = "max_line.csv"
	MinLineFile   = "min_line.csv"
	ShoreDiffFile = "shore_diff.csv"
)

// Column headers of the shoreline exports
var (
	LineHeaders = []string{"Lat", "Lon"}
	DiffHeaders = []string{"Diff [km]", "Lon"}
)

// ShorelineExporter writes comparison series and discrepancy lines as CSV
type ShorelineExporter struct {
	csvWriter *CSVWriter
}

// NewShorelineExporter creates an exporter writing under outputDir
func NewShorelineExporter(outputDir string) *ShorelineExporter {
	return &ShorelineExporter{
		csvWriter: NewCSVWriter(outputDir),
	}
}

// ExportDiscrepancies writes the upper line, the lower line and the
// discrepancy per longitude under the output directory and returns the
// written paths
func (e *ShorelineExporter) ExportDiscrepancies(discrepancies []shoreline.Discrepancy) ([]string, error) {
	outputs := []struct {
		name    string
		headers []string
		row     func(d shoreline.Discrepancy) []string
	}{
		{MaxLineFile, LineHeaders, func(d shoreline.Discrepancy) []string {
			return []string{formatFloat(d.Max.Latitude), formatFloat(d.Longitude)}
		}},
		{MinLineFile, LineHeaders, func(d shoreline.Discrepancy) []string {
			return []string{formatFloat(d.Min.Latitude), formatFloat(d.Longitude)}
		}},
		{ShoreDiffFile, DiffHeaders, func(d shoreline.Discrepancy) []string {
			return []string{formatFloat(d.DistanceKm), formatFloat(d.Longitude)}
		}},
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		stream, err := e.csvWriter.CreateStreamWriter(out.name, out.headers)
		if err != nil {
			return paths, fmt.Errorf("failed to create %s: %w", out.name, err)
		}
		for _, d := range discrepancies {
			if err := stream.WriteRecord(out.row(d)); err != nil {
				stream.Close()
				return paths, fmt.Errorf("failed to write %s: %w", out.name, err)
			}
		}
		if err := stream.Close(); err != nil {
			return paths, fmt.Errorf("failed to close %s: %w", out.name, err)
		}
		paths = append(paths, stream.Path())
	}

	return paths, nil
}

// ExportSeries writes an aggregated series as "Lon,<valueColumn>"
func (e *ShorelineExporter) ExportSeries(filePath, valueColumn string, series []shoreline.BinValue) error {
	records := make([][]string, 0, len(series))
	for _, bv := range series {
		records = append(records, []string{formatFloat(bv.Longitude), formatFloat(bv.Value)})
	}
	return e.csvWriter.WriteTable(filePath, []string{"Lon", valueColumn}, records)
}

// ExportBinSummaries writes the per-longitude mean and spread of one dataset
func (e *ShorelineExporter) ExportBinSummaries(filePath, valueColumn string, rows []shoreline.BinSummary) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			formatFloat(r.Longitude),
			formatFloat(r.Mean),
			formatFloat(r.PopStdDev),
			formatInt(r.Count),
		})
	}
	return e.csvWriter.WriteTable(filePath, []string{"Lon", valueColumn, "Std", "Count"}, records)
}

// ExportSummaries writes one row of descriptive statistics per named series
func (e *ShorelineExporter) ExportSummaries(filePath string, rows []SummaryRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		s := r.Summary
		records = append(records, []string{
			r.Series,
			formatInt(s.Count),
			formatFixed(s.Mean, 3),
			formatFixed(s.StdDev, 3),
			formatFixed(s.PopStdDev, 3),
			formatFloat(s.Min.Longitude),
			formatFloat(s.Min.Value),
			formatFloat(s.Max.Longitude),
			formatFloat(s.Max.Value),
		})
	}
	return e.csvWriter.WriteTable(filePath, SummaryHeaders, records)
}

// SummaryHeaders are the columns of a summary table
var SummaryHeaders = []string{"Series", "Count", "Mean", "Std", "PopStd", "MinLon", "Min", "MaxLon", "Max"}

// SummaryRow names the statistics of one series
type SummaryRow struct {
	Series  string
	Summary shoreline.Summary
}
