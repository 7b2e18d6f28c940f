// Package exporter writes the tabular outputs of a comparison run.
//
// CSVWriter is the low-level table and streaming writer.
// ShorelineExporter lays out aggregated series, per-dataset bin summaries and
// the three discrepancy files (max_line.csv, min_line.csv, shore_diff.csv).
// WorkbookWriter collects the same tables into one .xlsx workbook.
//
// Example usage:
//
//	exp := exporter.NewShorelineExporter("/path/to/output")
//	paths, err := exp.ExportDiscrepancies(discrepancies)
//
//	wb := exporter.NewWorkbookWriter("/path/to/output")
//	err = wb.WriteWorkbook("offsets.xlsx", []exporter.Sheet{
//	    exporter.SeriesSheet("Arabia min", "Geodesic Length [km]", series),
//	})
package exporter
