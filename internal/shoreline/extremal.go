package shoreline

import "math"

// Discrepancy is the lateral disagreement between surveys at one longitude.
// Max and Min are the overall highest- and lowest-latitude points in the bin.
type Discrepancy struct {
	Longitude  float64 `json:"lon"`
	Max        Point   `json:"max"`
	Min        Point   `json:"min"`
	DistanceKm float64 `json:"distance_km"`
}

// FindDiscrepancies computes the extremal pair of every longitude bin in
// ascending order. Bins without a point carrying a latitude are skipped.
func FindDiscrepancies(bins *Bins, body Sphere) []Discrepancy {
	out := make([]Discrepancy, 0, bins.Len())
	bins.Each(func(lon float64, points []Point) {
		d, ok := ExtremalPair(withLatitude(points), body)
		if !ok {
			return
		}
		d.Longitude = lon
		out = append(out, d)
	})
	return out
}

// ExtremalPair estimates the lateral disagreement among points sharing one
// longitude bin.
//
// The overall highest and lowest points give an upper bound. A tighter
// candidate for the lower line is searched among the other surveys only:
// the survey owning the highest point is set aside, then while more than two
// points remain the highest of them becomes the candidate and its whole
// survey is dropped; two remaining points yield the lower one, a single
// point yields itself. The reported distance is the smaller of the two
// estimates, so a survey looping back over the same meridian does not
// inflate the result. A bin mapped by a single survey has no independent
// pair and reports zero.
func ExtremalPair(points []Point, body Sphere) (Discrepancy, bool) {
	switch len(points) {
	case 0:
		return Discrepancy{}, false
	case 1:
		p := points[0]
		return Discrepancy{Longitude: p.Longitude, Max: p, Min: p}, true
	}

	overallMax := highest(points)
	overallMin := lowest(points)
	d := Discrepancy{Longitude: overallMax.Longitude, Max: overallMax, Min: overallMin}

	remaining := excludeSource(points, overallMax.Source)
	if len(remaining) == 0 {
		return d, true
	}

	candidate := overallMin
	for len(remaining) > 0 {
		switch len(remaining) {
		case 1:
			candidate = remaining[0]
			remaining = nil
		case 2:
			candidate = lowest(remaining)
			remaining = nil
		default:
			candidate = highest(remaining)
			remaining = excludeSource(remaining, candidate.Source)
		}
	}
	if overallMin.Latitude > candidate.Latitude {
		candidate = overallMin
	}

	d.DistanceKm = math.Min(body.Distance(overallMax, candidate), body.Distance(overallMax, overallMin))
	return d, true
}

// highest returns the first point with the greatest latitude
func highest(points []Point) Point {
	best := points[0]
	for _, p := range points[1:] {
		if p.Latitude > best.Latitude {
			best = p
		}
	}
	return best
}

// lowest returns the first point with the least latitude
func lowest(points []Point) Point {
	best := points[0]
	for _, p := range points[1:] {
		if p.Latitude < best.Latitude {
			best = p
		}
	}
	return best
}

// excludeSource returns a new slice without the points of one survey
func excludeSource(points []Point, source int) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Source != source {
			out = append(out, p)
		}
	}
	return out
}

func withLatitude(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.HasLatitude() {
			out = append(out, p)
		}
	}
	return out
}
