package shoreline

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "shoreline/internal/errors"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name      string
		tolerance float64
		wantErr   bool
	}{
		{"quarter degree", 0.25, false},
		{"whole degree", 1, false},
		{"date line spacing", 180, false},
		{"zero", 0, true},
		{"negative", -0.25, true},
		{"too coarse", 181, true},
		{"NaN", math.NaN(), true},
		{"infinite", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.tolerance)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrInvalidTolerance))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tolerance, g.Tolerance())
		})
	}
}

func TestGrid_Snap(t *testing.T) {
	quarter := MustGrid(0.25)

	tests := []struct {
		name string
		grid Grid
		lon  float64
		want float64
	}{
		{"already on grid", quarter, 5.0, 5.0},
		{"rounds down", quarter, 5.1, 5.0},
		{"rounds up", quarter, 5.2, 5.25},
		{"half rounds to even step below", quarter, 5.125, 5.0},
		{"half rounds to even step above", quarter, 5.375, 5.5},
		{"negative longitude", quarter, -52.9, -53.0},
		{"minus 180 becomes plus 180", quarter, -180.0, 180.0},
		{"179.9 rounds onto the date line", quarter, 179.9, 180.0},
		{"-179.9 rounds onto the date line", quarter, -179.9, 180.0},
		{"plus 180 unchanged", quarter, 180.0, 180.0},
		{"whole degree grid", MustGrid(1), 12.5, 12.0},
		{"west of the date line on a half degree grid", MustGrid(0.5), -179.885, 180.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.grid.Snap(tt.lon))
		})
	}
}

func TestGrid_SnapNoNegativeZero(t *testing.T) {
	got := MustGrid(0.25).Snap(-0.1)
	assert.Equal(t, 0.0, got)
	assert.False(t, math.Signbit(got))
}

func TestGrid_SnapSpacingNotDividing180(t *testing.T) {
	g := MustGrid(1.4)

	east := g.Snap(180)
	assert.LessOrEqual(t, east, DateLine)
	assert.InDelta(t, 179.2, east, 1e-9)
	assert.True(t, g.OnGrid(east))

	west := g.Snap(-180)
	assert.GreaterOrEqual(t, west, -DateLine)
	assert.InDelta(t, -179.2, west, 1e-9)
	assert.True(t, g.OnGrid(west))
}

func TestGrid_SnapProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, tol := range []float64{0.25, 0.5, 1, 1.4, 2.5} {
		g := MustGrid(tol)
		for i := 0; i < 2000; i++ {
			lon := rng.Float64()*360 - 180
			bin := g.Snap(lon)

			require.GreaterOrEqual(t, bin, -DateLine, "tol=%v lon=%v", tol, lon)
			require.LessOrEqual(t, bin, DateLine, "tol=%v lon=%v", tol, lon)
			require.NotEqual(t, -DateLine, bin)
			require.True(t, g.OnGrid(bin), "tol=%v lon=%v bin=%v", tol, lon, bin)
			// -180 is reported as +180, so distance is measured around the circle
			require.LessOrEqual(t, math.Abs(math.Remainder(bin-lon, 360)), tol+1e-9, "tol=%v lon=%v bin=%v", tol, lon, bin)
			require.Equal(t, bin, g.Snap(bin), "snapping is idempotent")
		}
	}
}
