package telemetry

import (
	"f1lapcompare/pkg/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

type Column int

const (
	Distance Column = iota
	Time
	Speed
	Throttle
	Brake
	Gear
	RPM
	DRS
	X
	Y
)

func (c Column) String() string {
	switch c {
	case Distance:
		return "Distance"
	case Time:
		return "Time"
	case Speed:
		return "Speed"
	case Throttle:
		return "Throttle"
	case Brake:
		return "Brake"
	case Gear:
		return "nGear"
	case RPM:
		return "RPM"
	case DRS:
		return "DRS"
	case X:
		return "X"
	case Y:
		return "Y"
	}
	return "Unknown"
}

// Values returns a column of the trace as float64. Time is in seconds.
func Values(t model.Trace, col Column) []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		switch col {
		case Distance:
			out[i] = s.Distance
		case Time:
			out[i] = s.Time.Seconds()
		case Speed:
			out[i] = s.Speed
		case Throttle:
			out[i] = s.Throttle
		case Brake:
			out[i] = s.Brake
		case Gear:
			out[i] = s.Gear
		case RPM:
			out[i] = s.RPM
		case DRS:
			out[i] = s.DRS
		case X:
			out[i] = s.X
		case Y:
			out[i] = s.Y
		}
	}
	return out
}

// knots collapses runs of equal distances to their last sample, the fitter
// needs strictly increasing x values.
func knots(xs, ys []float64) ([]float64, []float64) {
	kx := make([]float64, 0, len(xs))
	ky := make([]float64, 0, len(ys))
	for i := range xs {
		if n := len(kx); n > 0 && xs[i] <= kx[n-1] {
			ky[n-1] = ys[i]
			continue
		}
		kx = append(kx, xs[i])
		ky = append(ky, ys[i])
	}
	return kx, ky
}

// Interpolate evaluates src's column at every distance of ref. Distances outside
// src's range take the nearest endpoint value.
func Interpolate(ref, src model.Trace, col Column) []float64 {
	at := ref.Distances()
	out := make([]float64, len(at))
	if src.IsEmpty() {
		return out
	}

	xs, ys := knots(src.Distances(), Values(src, col))
	if len(xs) == 1 {
		for i := range out {
			out[i] = ys[0]
		}
		return out
	}

	var pl interp.PiecewiseLinear
	// knots are strictly increasing and there are at least two of them
	if err := pl.Fit(xs, ys); err != nil {
		panic(err)
	}
	for i, x := range at {
		out[i] = pl.Predict(x)
	}
	return out
}

// Delta is the reference time minus the source time at each reference
// distance. Positive means the reference driver is slower there.
func Delta(ref, src model.Trace) []float64 {
	t1 := ref.TimeSeconds()
	t2 := Interpolate(ref, src, Time)
	return floats.SubTo(make([]float64, len(t1)), t1, t2)
}
