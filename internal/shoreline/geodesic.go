package shoreline

import "math"

// MarsMeanRadiusKm is the volumetric mean radius of Mars
const MarsMeanRadiusKm = 3376.2

// Sphere is a spherical body used for great-circle distances
type Sphere struct {
	RadiusKm float64
}

// Mars is the default body for all distance calculations
var Mars = Sphere{RadiusKm: MarsMeanRadiusKm}

// Distance returns the great-circle distance in kilometres between two points
func (s Sphere) Distance(a, b Point) float64 {
	return s.Between(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Between returns the great-circle distance in kilometres between two
// lat/lon pairs given in degrees, using the spherical law of cosines.
func (s Sphere) Between(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dLambda := toRad(lon2 - lon1)

	cosC := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	// rounding can push nearly identical points just past ±1
	cosC = math.Max(-1, math.Min(1, cosC))

	return s.RadiusKm * math.Acos(cosC)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
