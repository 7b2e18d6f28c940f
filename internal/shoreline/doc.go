// Package shoreline implements the cross-survey comparison of mapped Martian
// paleo-shorelines.
//
// # Core Components
//
//  1. Longitude grid: every point's longitude is snapped to a fixed angular
//     grid (see Grid) so that independently digitized lines can be compared
//     meridian by meridian.
//  2. Aggregation: pooled group-by-longitude with a min, mean or max
//     reduction over offset lengths or elevations (Aggregate).
//  3. Extremal pairs: for each longitude bin, a conservative estimate of the
//     lateral disagreement between surveys on a Mars-radius sphere
//     (FindDiscrepancies).
//  4. Descriptive statistics over the resulting series (Describe).
//
// # Usage Example
//
//	grid, err := shoreline.NewGrid(0.25)
//	if err != nil {
//	    return err
//	}
//	bins := shoreline.GroupByLongitude(datasets...)
//	diffs := shoreline.FindDiscrepancies(bins, shoreline.Mars)
//
//	mode, err := shoreline.ParseMode("min")
//	if err != nil {
//	    return err
//	}
//	series, err := shoreline.Aggregate(datasets, mode, shoreline.FieldValue)
//	summary := shoreline.Describe(series)
//
// Everything in this package is a pure function of its inputs; nothing is
// cached between calls.
package shoreline
