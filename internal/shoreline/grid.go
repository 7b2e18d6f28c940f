package shoreline

import (
	"fmt"
	"math"

	apperrors "shoreline/internal/errors"
)

const (
	// DefaultTolerance is the longitude grid spacing in degrees
	DefaultTolerance = 0.25

	// DateLine is the single canonical grid value at ±180°
	DateLine = 180.0
)

// Grid snaps longitudes to multiples of a fixed spacing
type Grid struct {
	tolerance float64
	inverse   float64
}

// NewGrid creates a grid with the given spacing in degrees
func NewGrid(tolerance float64) (Grid, error) {
	if math.IsNaN(tolerance) || math.IsInf(tolerance, 0) || tolerance <= 0 || tolerance > DateLine {
		return Grid{}, fmt.Errorf("grid spacing %v: %w", tolerance, apperrors.ErrInvalidTolerance)
	}
	return Grid{tolerance: tolerance, inverse: 1 / tolerance}, nil
}

// MustGrid is like NewGrid but panics on an invalid spacing
func MustGrid(tolerance float64) Grid {
	g, err := NewGrid(tolerance)
	if err != nil {
		panic(err)
	}
	return g
}

// Tolerance returns the grid spacing in degrees
func (g Grid) Tolerance() float64 {
	return g.tolerance
}

// Snap rounds lon to the nearest grid value. Halves round to even, -180 maps
// to +180, and a value pushed past the date line by rounding is pulled back
// one step so the result always lies in [-180, 180].
func (g Grid) Snap(lon float64) float64 {
	k := math.RoundToEven(lon * g.inverse)
	bin := k / g.inverse
	if bin > DateLine {
		bin = (k - 1) / g.inverse
	} else if bin < -DateLine {
		bin = (k + 1) / g.inverse
	}
	if bin == -DateLine {
		bin = DateLine
	}
	if bin == 0 {
		// drop negative zero
		bin = 0
	}
	return bin
}

// OnGrid reports whether lon is already a grid value
func (g Grid) OnGrid(lon float64) bool {
	return math.RoundToEven(lon*g.inverse)/g.inverse == lon
}
