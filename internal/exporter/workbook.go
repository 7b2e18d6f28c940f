package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"shoreline/internal/shoreline"
)

// maxSheetName is the sheet name limit of the xlsx format
const maxSheetName = 31

// Sheet is one worksheet of an exported workbook
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// SeriesSheet lays out an aggregated series
func SeriesSheet(name, valueColumn string, series []shoreline.BinValue) Sheet {
	rows := make([][]interface{}, 0, len(series))
	for _, bv := range series {
		rows = append(rows, []interface{}{bv.Longitude, cellValue(bv.Value)})
	}
	return Sheet{Name: name, Headers: []string{"Lon", valueColumn}, Rows: rows}
}

// DiscrepancySheet lays out the extremal pairs with both lines and the distance
func DiscrepancySheet(name string, discrepancies []shoreline.Discrepancy) Sheet {
	rows := make([][]interface{}, 0, len(discrepancies))
	for _, d := range discrepancies {
		rows = append(rows, []interface{}{
			d.Longitude,
			cellValue(d.Max.Latitude),
			d.Max.Source,
			cellValue(d.Min.Latitude),
			d.Min.Source,
			d.DistanceKm,
		})
	}
	return Sheet{
		Name:    name,
		Headers: []string{"Lon", "Max Lat", "Max Source", "Min Lat", "Min Source", "Diff [km]"},
		Rows:    rows,
	}
}

// SummarySheet lays out one row of statistics per series
func SummarySheet(rows []SummaryRow) Sheet {
	out := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		s := r.Summary
		out = append(out, []interface{}{
			r.Series,
			s.Count,
			cellValue(s.Mean),
			cellValue(s.StdDev),
			cellValue(s.PopStdDev),
			s.Min.Longitude,
			cellValue(s.Min.Value),
			s.Max.Longitude,
			cellValue(s.Max.Value),
		})
	}
	return Sheet{Name: "Summary", Headers: SummaryHeaders, Rows: out}
}

// WorkbookWriter writes sheets into a single .xlsx file
type WorkbookWriter struct {
	outputDir string
}

// NewWorkbookWriter creates a workbook writer resolving relative paths under outputDir
func NewWorkbookWriter(outputDir string) *WorkbookWriter {
	return &WorkbookWriter{outputDir: outputDir}
}

// WriteWorkbook writes the sheets, in order, to filePath
func (w *WorkbookWriter) WriteWorkbook(filePath string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s has no sheets", filePath)
	}

	fullPath := filePath
	if !filepath.IsAbs(filePath) && w.outputDir != "" {
		fullPath = filepath.Join(w.outputDir, filePath)
	}

	slog.Info("Writing workbook",
		slog.String("full_path", fullPath),
		slog.Int("sheets", len(sheets)))

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		name := uniqueSheetName(sheetName(sheet.Name), used)

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet, headerStyle int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", name, err)
	}

	header := make([]interface{}, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, name, err)
		}
	}

	return sw.Flush()
}

// sheetName strips characters xlsx forbids and truncates to the limit
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Sheet"
	}
	if len([]rune(name)) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}

// uniqueSheetName appends " (n)" while name collides, ignoring case as
// Excel does, with a previously used name. The caller's casing is kept.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// cellValue leaves missing values as empty cells
func cellValue(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
