// Package plotter renders the comparison figure as a PNG image: stacked
// panels sharing the longitude axis from -180 to 180, elevation scatter for
// each mapped level with delta markers overlaid, and the aggregated lateral
// offsets per level below them.
package plotter
