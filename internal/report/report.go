// Package report writes the plain-text summary of a comparison run.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shoreline/internal/dataset"
	"shoreline/internal/shoreline"
)

// SummaryFile is the default name of the text summary
const SummaryFile = "summary.txt"

// InputStats describes one loaded input collection
type InputStats struct {
	Collection string
	Datasets   int
	Report     dataset.LoadReport
}

// LevelStats holds the statistics of one aggregated level series
type LevelStats struct {
	Level   shoreline.Level
	Mode    shoreline.Mode
	Summary shoreline.Summary
}

// Report is the content of a run summary
type Report struct {
	Title       string
	Generated   time.Time
	RunID       string
	Tolerance   float64
	RadiusKm    float64
	Inputs      []InputStats
	Levels      []LevelStats
	Discrepancy *shoreline.Summary
}

// LevelSummaries describes each level series in reporting order. Levels
// without a series are reported as empty.
func LevelSummaries(series map[shoreline.Level][]shoreline.BinValue, mode shoreline.Mode) []LevelStats {
	out := make([]LevelStats, 0, len(shoreline.Levels))
	for _, level := range shoreline.Levels {
		out = append(out, LevelStats{
			Level:   level,
			Mode:    mode,
			Summary: shoreline.Describe(series[level]),
		})
	}
	return out
}

// DiscrepancySeries turns extremal pairs into a distance-per-longitude series
func DiscrepancySeries(discrepancies []shoreline.Discrepancy) []shoreline.BinValue {
	out := make([]shoreline.BinValue, len(discrepancies))
	for i, d := range discrepancies {
		out[i] = shoreline.BinValue{Longitude: d.Longitude, Value: d.DistanceKm}
	}
	return out
}

// WriteText writes the human-readable summary
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = "Shoreline Comparison - Summary Report"
	}
	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	if !r.Generated.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n", r.Generated.Format("2006-01-02 15:04:05"))
	}
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	}
	if r.Tolerance > 0 {
		fmt.Fprintf(&b, "Longitude tolerance: %g deg\n", r.Tolerance)
	}
	if r.RadiusKm > 0 {
		fmt.Fprintf(&b, "Sphere radius: %g km\n", r.RadiusKm)
	}
	b.WriteString("\n")

	if len(r.Inputs) > 0 {
		b.WriteString("INPUTS\n------\n")
		for _, in := range r.Inputs {
			fmt.Fprintf(&b, "%s: %d datasets, %d rows (%d rows skipped, %d files skipped)\n",
				in.Collection, in.Datasets, in.Report.Rows, in.Report.SkippedRows, in.Report.SkippedFiles)
		}
		b.WriteString("\n")
	}

	for _, ls := range r.Levels {
		writeLevel(&b, ls)
	}

	if r.Discrepancy != nil {
		b.WriteString("LATERAL DISCREPANCY\n-------------------\n")
		writeSeries(&b, "Discrepancy", *r.Discrepancy)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLevel(b *strings.Builder, ls LevelStats) {
	fmt.Fprintf(b, "%s Stats:\n", ls.Level)
	writeSeries(b, modeLabel(ls.Mode)+" offset", ls.Summary)
	b.WriteString("\n")
}

func writeSeries(b *strings.Builder, label string, s shoreline.Summary) {
	if s.Empty() {
		fmt.Fprintf(b, "%s: no data\n", label)
		return
	}
	fmt.Fprintf(b, "%s mean: %.1f km\n", label, s.Mean)
	fmt.Fprintf(b, "%s std:  %.1f km\n", label, s.StdDev)
	fmt.Fprintf(b, "%s max:  %.1f km at %g deg E\n", label, s.Max.Value, s.Max.Longitude)
	fmt.Fprintf(b, "Bins: %d\n", s.Count)
}

func modeLabel(m shoreline.Mode) string {
	if !m.Valid() {
		return "Offset"
	}
	name := m.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// SaveSummaryReport writes the summary to outputPath
func SaveSummaryReport(r Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create summary directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}

	if err := r.WriteText(file); err != nil {
		file.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	return file.Close()
}
