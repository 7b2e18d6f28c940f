package plotter

import (
	"image/color"

	"shoreline/internal/shoreline"
)

// Palettes matching the published map colors
var (
	DeuteronilusColors = []string{"#7E0000", "#A76921", "#73E1DF", "#FEC4FF", "#FAC0C0", "#000000", "#5EEE11"}
	ArabiaColors       = []string{"#E60000", "#0081C8", "#A8FFC2", "#FFAA00", "#FFFF00", "#01017F", "#CCCCCC", "#9B3AC5"}
	OffsetColors       = []string{"#000000", "#888888"}
	DeltaFill          = "#E9FFBE"
)

// DefaultOffsetMax is the upper bound of the offset panels in km
const DefaultOffsetMax = 1400.0

// OffsetSeries is one aggregated offset curve
type OffsetSeries struct {
	Label  string
	Series []shoreline.BinValue
}

// ComparisonInput holds everything drawn in the comparison figure
type ComparisonInput struct {
	Elevations  []shoreline.Dataset
	Deltas      []shoreline.Point
	Offsets     map[shoreline.Level][]OffsetSeries
	ValueLabel  string // elevation axis label
	OffsetLabel string // offset axis label
	OffsetMax   float64
}

// ComparisonFigure lays out four panels top to bottom: Deuteronilus
// elevations, Arabia elevations, Deuteronilus offsets, Arabia offsets.
// Delta markers are drawn over both elevation panels.
func ComparisonFigure(in ComparisonInput) Figure {
	offsetMax := in.OffsetMax
	if offsetMax <= 0 {
		offsetMax = DefaultOffsetMax
	}

	return Figure{
		Panels: []Panel{
			elevationPanel(shoreline.LevelDeuteronilus, in, DeuteronilusColors),
			elevationPanel(shoreline.LevelArabia, in, ArabiaColors),
			offsetPanel(shoreline.LevelDeuteronilus, in, offsetMax),
			offsetPanel(shoreline.LevelArabia, in, offsetMax),
		},
	}
}

func elevationPanel(level shoreline.Level, in ComparisonInput, palette []string) Panel {
	panel := Panel{
		Title:  string(level) + " elevations",
		YLabel: in.ValueLabel,
		Legend: true,
	}

	for i, ds := range shoreline.FilterByLevel(in.Elevations, level) {
		x, y := make([]float64, len(ds.Points)), make([]float64, len(ds.Points))
		for j, p := range ds.Points {
			x[j], y[j] = p.Longitude, p.Value
		}
		panel.Series = append(panel.Series, Series{
			Label: ds.Label,
			X:     x,
			Y:     y,
			Style: StyleMarkers,
			Color: paletteColor(palette, i),
		})
	}

	if len(in.Deltas) > 0 {
		x, y := make([]float64, len(in.Deltas)), make([]float64, len(in.Deltas))
		for j, p := range in.Deltas {
			x[j], y[j] = p.Longitude, p.Value
		}
		panel.Series = append(panel.Series, Series{
			Label: "Deltas",
			X:     x,
			Y:     y,
			Style: StyleSquares,
			Color: color.Black,
			Fill:  Hex(DeltaFill),
		})
	}

	return panel
}

func offsetPanel(level shoreline.Level, in ComparisonInput, offsetMax float64) Panel {
	panel := Panel{
		Title:  string(level) + " offsets",
		XLabel: "Longitude [deg E]",
		YLabel: in.OffsetLabel,
		YMin:   0,
		YMax:   offsetMax,
	}
	if level == shoreline.LevelDeuteronilus {
		panel.XLabel = ""
	}

	series := in.Offsets[level]
	panel.Legend = len(series) > 1
	for i, s := range series {
		panel.Series = append(panel.Series, Series{
			Label: s.Label,
			X:     shoreline.Longitudes(s.Series),
			Y:     shoreline.Values(s.Series),
			Style: StyleLine,
			Color: paletteColor(OffsetColors, i),
		})
	}

	return panel
}

func paletteColor(palette []string, i int) color.Color {
	if len(palette) == 0 {
		return color.Black
	}
	return Hex(palette[i%len(palette)])
}
