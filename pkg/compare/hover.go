package compare

import (
	"math"
	"sort"

	"f1lapcompare/pkg/model"
)

type HoverPoint struct {
	Index    int         `json:"index"`
	Distance float64     `json:"distance"`
	Values   [2]float64  `json:"values"`
	Position model.Point `json:"position"`
}

// Hover returns both series and the track position at the reference sample
// closest to distance. ok is false for an empty result.
func Hover(r *Result, distance float64) (HoverPoint, bool) {
	if r == nil || len(r.Distance) == 0 {
		return HoverPoint{}, false
	}
	i := nearest(r.Distance, distance)
	hp := HoverPoint{Index: i, Distance: r.Distance[i]}
	for s := range r.Series {
		if i < len(r.Series[s].Values) {
			hp.Values[s] = r.Series[s].Values[i]
		}
	}
	if i < len(r.Minimap.Outline) {
		hp.Position = r.Minimap.Outline[i]
	}
	return hp, true
}

// nearest expects xs sorted ascending. Ties go to the lower index.
func nearest(xs []float64, x float64) int {
	i := sort.SearchFloat64s(xs, x)
	if i == 0 {
		return 0
	}
	if i == len(xs) {
		return len(xs) - 1
	}
	if math.Abs(xs[i]-x) < math.Abs(x-xs[i-1]) {
		return i
	}
	return i - 1
}
