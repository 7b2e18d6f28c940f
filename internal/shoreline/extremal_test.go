package shoreline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pt builds a vertex without a value column. Value stays zero rather than
// NaN so whole points compare equal.
func pt(lat, lon float64, source int) Point {
	return Point{Latitude: lat, Longitude: lon, Source: source}
}

func degreesKm(deg float64) float64 {
	return MarsMeanRadiusKm * deg * math.Pi / 180
}

func TestExtremalPair_Empty(t *testing.T) {
	_, ok := ExtremalPair(nil, Mars)
	assert.False(t, ok)
}

func TestExtremalPair_SinglePoint(t *testing.T) {
	p := pt(33.5, -53.0, 3)

	d, ok := ExtremalPair([]Point{p}, Mars)
	require.True(t, ok)
	assert.Equal(t, p, d.Max)
	assert.Equal(t, p, d.Min)
	assert.Equal(t, 0.0, d.DistanceKm)
	assert.Equal(t, -53.0, d.Longitude)
}

func TestExtremalPair_TwoSourcesSymmetric(t *testing.T) {
	a := pt(41.0, 120.25, 0)
	b := pt(36.5, 120.25, 1)

	ab, ok := ExtremalPair([]Point{a, b}, Mars)
	require.True(t, ok)
	ba, ok := ExtremalPair([]Point{b, a}, Mars)
	require.True(t, ok)

	want := Mars.Distance(a, b)
	assert.InDelta(t, want, ab.DistanceKm, 1e-9)
	assert.InDelta(t, want, ba.DistanceKm, 1e-9)
	assert.Equal(t, a, ab.Max)
	assert.Equal(t, b, ab.Min)
	assert.Equal(t, ab.Max, ba.Max)
	assert.Equal(t, ab.Min, ba.Min)
}

func TestExtremalPair_ReferenceExample(t *testing.T) {
	points := []Point{
		pt(10.0, 5.0, 0),
		pt(12.0, 5.0, 1),
		pt(11.0, 5.0, 0),
	}

	d, ok := ExtremalPair(points, Mars)
	require.True(t, ok)
	assert.Equal(t, pt(12.0, 5.0, 1), d.Max)
	assert.Equal(t, pt(10.0, 5.0, 0), d.Min)
	assert.InDelta(t, Mars.Between(12, 5, 10, 5), d.DistanceKm, 1e-9)
	assert.InDelta(t, degreesKm(2), d.DistanceKm, 1e-6)
}

func TestExtremalPair_SelfLoopDoesNotInflate(t *testing.T) {
	// Survey 0 loops back far south over the same meridian. The other surveys
	// cluster near the top, so the conservative estimate ignores the loop.
	points := []Point{
		pt(40.0, 10.0, 0),
		pt(20.0, 10.0, 0),
		pt(39.0, 10.0, 1),
		pt(38.0, 10.0, 2),
		pt(37.5, 10.0, 3),
	}

	d, ok := ExtremalPair(points, Mars)
	require.True(t, ok)

	assert.Equal(t, pt(40.0, 10.0, 0), d.Max)
	assert.Equal(t, pt(20.0, 10.0, 0), d.Min)
	// surveys 1..3 remain; 39 (survey 1) is dropped, then 38 and 37.5 remain
	// and the lower of the two is the candidate.
	assert.InDelta(t, degreesKm(2.5), d.DistanceKm, 1e-6)
	assert.Less(t, d.DistanceKm, Mars.Distance(d.Max, d.Min))
}

func TestExtremalPair_CandidateRemovesWholeSurvey(t *testing.T) {
	points := []Point{
		pt(50.0, 0, 0),
		pt(45.0, 0, 1),
		pt(30.0, 0, 1),
		pt(44.0, 0, 2),
		pt(43.0, 0, 3),
		pt(42.0, 0, 3),
	}

	// remaining after dropping survey 0: five points. Highest is 45 (survey 1),
	// which drops 45 and 30. Three remain: 44 (survey 2) is highest, dropping
	// survey 2. Two remain (43, 42): candidate is 42.
	d, ok := ExtremalPair(points, Mars)
	require.True(t, ok)
	assert.Equal(t, 30.0, d.Min.Latitude)
	assert.InDelta(t, degreesKm(8), d.DistanceKm, 1e-6)
}

func TestExtremalPair_SingleSurveyBinReportsZero(t *testing.T) {
	points := []Point{
		pt(40.0, 10.0, 4),
		pt(20.0, 10.0, 4),
	}

	d, ok := ExtremalPair(points, Mars)
	require.True(t, ok)
	assert.Equal(t, 40.0, d.Max.Latitude)
	assert.Equal(t, 20.0, d.Min.Latitude)
	assert.Equal(t, 0.0, d.DistanceKm)
}

func TestExtremalPair_DoesNotMutateInput(t *testing.T) {
	points := []Point{
		pt(10.0, 5.0, 0),
		pt(12.0, 5.0, 1),
		pt(11.0, 5.0, 2),
		pt(9.0, 5.0, 3),
	}
	before := append([]Point(nil), points...)

	_, ok := ExtremalPair(points, Mars)
	require.True(t, ok)
	assert.Equal(t, before, points)
}

func TestFindDiscrepancies(t *testing.T) {
	datasets := []Dataset{
		{Source: 0, Points: []Point{pt(10.0, 5.0, 0), pt(11.0, 5.0, 0), pt(30.0, -53.0, 0)}},
		{Source: 1, Points: []Point{pt(12.0, 5.0, 1), pt(math.NaN(), 90.0, 1)}},
	}

	got := FindDiscrepancies(GroupByLongitude(datasets...), Mars)
	require.Len(t, got, 2, "bin at 90 has no latitude and is skipped")

	assert.Equal(t, -53.0, got[0].Longitude)
	assert.Equal(t, 0.0, got[0].DistanceKm)

	assert.Equal(t, 5.0, got[1].Longitude)
	assert.InDelta(t, degreesKm(2), got[1].DistanceKm, 1e-6)
}

func TestFindDiscrepancies_Empty(t *testing.T) {
	got := FindDiscrepancies(GroupByLongitude(), Mars)
	assert.Empty(t, got)
}
