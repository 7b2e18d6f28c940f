package shoreline

import "sort"

// Bins is an ordered mapping from longitude bin to the points snapped onto
// it. Keys iterate in ascending order; points keep their input order.
type Bins struct {
	keys   []float64
	points map[float64][]Point
}

// GroupByLongitude pools the points of all datasets by longitude bin
func GroupByLongitude(datasets ...Dataset) *Bins {
	b := &Bins{points: make(map[float64][]Point)}
	for _, ds := range datasets {
		for _, p := range ds.Points {
			b.add(p)
		}
	}
	sort.Float64s(b.keys)
	return b
}

// GroupPoints groups a flat list of points by longitude bin
func GroupPoints(points []Point) *Bins {
	return GroupByLongitude(Dataset{Points: points})
}

func (b *Bins) add(p Point) {
	if _, ok := b.points[p.Longitude]; !ok {
		b.keys = append(b.keys, p.Longitude)
	}
	b.points[p.Longitude] = append(b.points[p.Longitude], p)
}

// Len returns the number of distinct bins
func (b *Bins) Len() int {
	return len(b.keys)
}

// Keys returns the bin values in ascending order
func (b *Bins) Keys() []float64 {
	keys := make([]float64, len(b.keys))
	copy(keys, b.keys)
	return keys
}

// Points returns a copy of the points in the given bin
func (b *Bins) Points(lon float64) []Point {
	pts := b.points[lon]
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}

// Each calls fn for every bin in ascending order
func (b *Bins) Each(fn func(lon float64, points []Point)) {
	for _, lon := range b.keys {
		fn(lon, b.Points(lon))
	}
}
