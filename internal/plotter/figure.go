package plotter

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	gplot "gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	apperrors "shoreline/internal/errors"
)

// Longitude range shared by every panel
const (
	LonMin = -180.0
	LonMax = 180.0
)

// Default figure size
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 12 * vg.Inch
)

// Style selects how a series is drawn
type Style int

const (
	StyleMarkers Style = iota
	StyleLine
	StyleSquares
)

// Series is one named set of points in a panel
type Series struct {
	Label string
	X, Y  []float64
	Style Style
	Color color.Color
	Fill  color.Color // squares only
}

// Len returns the number of drawable points
func (s Series) Len() int {
	if len(s.X) < len(s.Y) {
		return len(s.X)
	}
	return len(s.Y)
}

// Panel is one stacked subplot
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	// YMin and YMax fix the vertical range when YMax > YMin
	YMin, YMax float64
	Legend     bool
	Series     []Series
}

// Figure is a column of panels rendered into one image
type Figure struct {
	Width, Height vg.Length
	Panels        []Panel
}

// Render draws the figure as PNG into w
func (f Figure) Render(w io.Writer) error {
	if len(f.Panels) == 0 {
		return fmt.Errorf("figure has no panels: %w", apperrors.ErrNoData)
	}

	width, height := f.Width, f.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}

	plots := make([][]*plot.Plot, len(f.Panels))
	for i, panel := range f.Panels {
		p, err := panel.build()
		if err != nil {
			return fmt.Errorf("panel %d (%s): %w", i, panel.Title, err)
		}
		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
		PadY:      vg.Points(6),
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Save renders the figure to a PNG file, creating its directory
func (f Figure) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create figure file: %w", err)
	}
	if err := f.Render(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (panel Panel) build() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Title
	p.X.Label.Text = panel.XLabel
	p.Y.Label.Text = panel.YLabel
	p.Add(gplot.NewGrid())

	for _, s := range panel.Series {
		if s.Len() == 0 {
			continue
		}
		if err := addSeries(p, s, panel.Legend); err != nil {
			return nil, err
		}
	}

	p.X.Min, p.X.Max = LonMin, LonMax
	if panel.YMax > panel.YMin {
		p.Y.Min, p.Y.Max = panel.YMin, panel.YMax
	}
	if panel.Legend {
		p.Legend.Top = true
		p.Legend.TextStyle.Font.Size = vg.Points(7)
	}

	return p, nil
}

func addSeries(p *plot.Plot, s Series, legend bool) error {
	// plotters reject NaN and Inf, so missing values are dropped
	xys := make(gplot.XYs, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		x, y := s.X[i], s.Y[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		xys = append(xys, gplot.XY{X: x, Y: y})
	}
	if len(xys) == 0 {
		return nil
	}

	c := s.Color
	if c == nil {
		c = color.Black
	}

	switch s.Style {
	case StyleLine:
		line, err := gplot.NewLine(xys)
		if err != nil {
			return err
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
		if legend && s.Label != "" {
			p.Legend.Add(s.Label, line)
		}

	case StyleSquares:
		fill := s.Fill
		if fill == nil {
			fill = color.White
		}
		inner, err := gplot.NewScatter(xys)
		if err != nil {
			return err
		}
		inner.GlyphStyle.Shape = draw.BoxGlyph{}
		inner.GlyphStyle.Color = fill
		inner.GlyphStyle.Radius = vg.Points(2.5)

		edge, err := gplot.NewScatter(xys)
		if err != nil {
			return err
		}
		edge.GlyphStyle.Shape = draw.SquareGlyph{}
		edge.GlyphStyle.Color = c
		edge.GlyphStyle.Radius = vg.Points(2.5)

		p.Add(inner, edge)
		if legend && s.Label != "" {
			p.Legend.Add(s.Label, inner, edge)
		}

	default:
		scatter, err := gplot.NewScatter(xys)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Radius = vg.Points(0.8)
		p.Add(scatter)
		if legend && s.Label != "" {
			p.Legend.Add(s.Label, scatter)
		}
	}

	return nil
}

// Hex parses a #RRGGBB color. Invalid input yields black.
func Hex(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
