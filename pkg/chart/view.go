package chart

import (
	"f1lapcompare/pkg/compare"

	"gonum.org/v1/gonum/floats"
)

// ZoomStep is the fraction of the visible range added or removed on each side.
const ZoomStep = 0.25

// View is the visible window of a chart in data coordinates.
type View struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// FitView frames the whole lap and both series with a small vertical margin.
func FitView(r *compare.Result) View {
	if r == nil || len(r.Distance) == 0 {
		return View{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
	}
	v := View{
		XMin: floats.Min(r.Distance),
		XMax: floats.Max(r.Distance),
	}
	first := true
	for _, s := range r.Series {
		if len(s.Values) == 0 {
			continue
		}
		lo, hi := floats.Min(s.Values), floats.Max(s.Values)
		if first || lo < v.YMin {
			v.YMin = lo
		}
		if first || hi > v.YMax {
			v.YMax = hi
		}
		first = false
	}
	pad := (v.YMax - v.YMin) * 0.05
	if pad == 0 {
		pad = 1
	}
	v.YMin -= pad
	v.YMax += pad
	if v.XMax == v.XMin {
		v.XMax = v.XMin + 1
	}
	return v
}

func (v View) ZoomIn() View {
	dx := (v.XMax - v.XMin) * ZoomStep
	dy := (v.YMax - v.YMin) * ZoomStep
	return View{XMin: v.XMin + dx, XMax: v.XMax - dx, YMin: v.YMin + dy, YMax: v.YMax - dy}
}

func (v View) ZoomOut() View {
	dx := (v.XMax - v.XMin) * ZoomStep
	dy := (v.YMax - v.YMin) * ZoomStep
	return View{XMin: v.XMin - dx, XMax: v.XMax + dx, YMin: v.YMin - dy, YMax: v.YMax + dy}
}

func (v View) Center() (float64, float64) {
	return (v.XMin + v.XMax) / 2, (v.YMin + v.YMax) / 2
}
