package shoreline

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "shoreline/internal/errors"
)

// Mode selects the reduction applied to each longitude bin
type Mode int

const (
	ModeUnknown Mode = iota
	ModeMin
	ModeMean
	ModeMax
)

// Modes lists the recognized reductions
var Modes = []Mode{ModeMin, ModeMean, ModeMax}

// ParseMode accepts "min", "mean" or "max" and their long forms
// ("minimum", "average", "maximum"), case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min", "minimum":
		return ModeMin, nil
	case "mean", "average":
		return ModeMean, nil
	case "max", "maximum":
		return ModeMax, nil
	default:
		return ModeUnknown, apperrors.NewConfigError(
			fmt.Sprintf("reduction mode %q: choose min, mean or max", s),
			apperrors.ErrUnknownMode,
		)
	}
}

// String returns the canonical mode name
func (m Mode) String() string {
	switch m {
	case ModeMin:
		return "min"
	case ModeMean:
		return "mean"
	case ModeMax:
		return "max"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the recognized reductions
func (m Mode) Valid() bool {
	return m == ModeMin || m == ModeMean || m == ModeMax
}

// Aggregate pools the points of all datasets, groups them by longitude bin
// and reduces the selected field in each bin. NaN values are ignored and a
// bin with no usable value is left out. The result is sorted by longitude.
func Aggregate(datasets []Dataset, mode Mode, field Field) ([]BinValue, error) {
	return AggregateBins(GroupByLongitude(datasets...), mode, field)
}

// AggregateBins reduces already grouped points
func AggregateBins(bins *Bins, mode Mode, field Field) ([]BinValue, error) {
	if !mode.Valid() {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("reduction mode %d", int(mode)),
			apperrors.ErrUnknownMode,
		)
	}

	series := make([]BinValue, 0, bins.Len())
	bins.Each(func(lon float64, points []Point) {
		values := fieldValues(points, field)
		if len(values) == 0 {
			return
		}
		series = append(series, BinValue{Longitude: lon, Value: reduce(values, mode)})
	})
	return series, nil
}

func fieldValues(points []Point, field Field) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		v := field.extract(p)
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
	}
	return values
}

func reduce(values []float64, mode Mode) float64 {
	switch mode {
	case ModeMin:
		return floats.Min(values)
	case ModeMax:
		return floats.Max(values)
	default:
		return stat.Mean(values, nil)
	}
}

// BinSummary describes the repeated measurements of one dataset at one
// longitude
type BinSummary struct {
	Longitude float64 `json:"lon"`
	Mean      float64 `json:"mean"`
	PopStdDev float64 `json:"std"`
	Count     int     `json:"count"`
}

// SummarizeDataset averages the measurements a single dataset makes at each
// longitude, with the population standard deviation of those measurements.
func SummarizeDataset(ds Dataset, field Field) []BinSummary {
	bins := GroupByLongitude(ds)
	out := make([]BinSummary, 0, bins.Len())
	bins.Each(func(lon float64, points []Point) {
		values := fieldValues(points, field)
		if len(values) == 0 {
			return
		}
		out = append(out, BinSummary{
			Longitude: lon,
			Mean:      stat.Mean(values, nil),
			PopStdDev: stat.PopStdDev(values, nil),
			Count:     len(values),
		})
	})
	return out
}
