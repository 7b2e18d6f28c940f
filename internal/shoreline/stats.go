package shoreline

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of a longitude series
type Summary struct {
	Count     int      `json:"count"`
	Mean      float64  `json:"mean"`
	StdDev    float64  `json:"std"`
	PopStdDev float64  `json:"pop_std"`
	Min       BinValue `json:"min"`
	Max       BinValue `json:"max"`
}

// Empty reports whether the summary was computed over no values
func (s Summary) Empty() bool {
	return s.Count == 0
}

// Describe computes mean, sample and population standard deviation and the
// extreme records of a series. NaN values are skipped. An empty series gives
// the zero Summary; a single value has zero spread.
func Describe(series []BinValue) Summary {
	kept := make([]BinValue, 0, len(series))
	values := make([]float64, 0, len(series))
	for _, bv := range series {
		if math.IsNaN(bv.Value) {
			continue
		}
		kept = append(kept, bv)
		values = append(values, bv.Value)
	}
	if len(values) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Min:   kept[floats.MinIdx(values)],
		Max:   kept[floats.MaxIdx(values)],
	}
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
		s.PopStdDev = stat.PopStdDev(values, nil)
	}
	return s
}

// Values extracts the value column of a series
func Values(series []BinValue) []float64 {
	out := make([]float64, len(series))
	for i, bv := range series {
		out[i] = bv.Value
	}
	return out
}

// Longitudes extracts the longitude column of a series
func Longitudes(series []BinValue) []float64 {
	out := make([]float64, len(series))
	for i, bv := range series {
		out[i] = bv.Longitude
	}
	return out
}
