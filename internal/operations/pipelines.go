package operations

import (
	"log/slog"
)

// OffsetsPipeline loads and bins the lateral offsets of both levels, writes
// the series, draws the comparison figure and prints the level statistics
func OffsetsPipeline(logger *slog.Logger) *Registry {
	return NewRegistry().MustRegister(
		NewLoadOffsetsStep(logger),
		NewAggregateOffsetsStep(logger),
		NewLoadElevationsStep(logger),
		NewWriteOffsetsStep(logger),
		NewPlotFigureStep(logger),
		NewWriteSummaryStep(logger),
	)
}

// DiscrepancyPipeline finds the extremal pair of every longitude bin over
// the digitized points and writes the max line, min line and discrepancy
func DiscrepancyPipeline(logger *slog.Logger) *Registry {
	return NewRegistry().MustRegister(
		NewLoadPointsStep(logger),
		NewExtremalPairsStep(logger),
		NewWriteDiscrepanciesStep(logger),
		NewWriteSummaryStep(logger),
	)
}
