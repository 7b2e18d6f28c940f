package shoreline

import (
	"math"
	"strings"
)

// Level identifies which hypothesized shoreline a dataset maps
type Level string

const (
	LevelArabia       Level = "Arabia"
	LevelDeuteronilus Level = "Deuteronilus"
	LevelUnknown      Level = "Unknown"
)

// Levels lists the two shorelines in reporting order
var Levels = []Level{LevelArabia, LevelDeuteronilus}

// LevelFromName classifies a file or directory name by the level it mentions
func LevelFromName(name string) Level {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "arabia"):
		return LevelArabia
	case strings.Contains(lower, "deuteronilus"):
		return LevelDeuteronilus
	default:
		return LevelUnknown
	}
}

// Point is a single digitized vertex. Longitude is already snapped to the grid.
// Latitude and Value are NaN when the source file has no such column or the
// cell is empty.
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Value     float64 `json:"value"`
	Source    int     `json:"source"`
}

// HasLatitude reports whether the point carries a usable latitude
func (p Point) HasLatitude() bool {
	return !math.IsNaN(p.Latitude)
}

// HasValue reports whether the point carries a usable value
func (p Point) HasValue() bool {
	return !math.IsNaN(p.Value)
}

// Dataset is one loaded input file. It is never modified after loading.
type Dataset struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Level  Level   `json:"level"`
	Source int     `json:"source"`
	Path   string  `json:"path"`
	Points []Point `json:"points"`
}

// Len returns the number of points in the dataset
func (d Dataset) Len() int {
	return len(d.Points)
}

// FilterByLevel returns the datasets mapping the given level, in input order
func FilterByLevel(datasets []Dataset, level Level) []Dataset {
	var out []Dataset
	for _, ds := range datasets {
		if ds.Level == level {
			out = append(out, ds)
		}
	}
	return out
}

// Field selects which numeric column of a Point a reduction runs over
type Field int

const (
	FieldValue Field = iota
	FieldLatitude
)

// String returns the column name used in reports
func (f Field) String() string {
	switch f {
	case FieldValue:
		return "value"
	case FieldLatitude:
		return "latitude"
	default:
		return "unknown"
	}
}

func (f Field) extract(p Point) float64 {
	if f == FieldLatitude {
		return p.Latitude
	}
	return p.Value
}

// BinValue is one entry of an aggregated longitude series
type BinValue struct {
	Longitude float64 `json:"lon"`
	Value     float64 `json:"value"`
}
