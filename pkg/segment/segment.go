package segment

import (
	"f1lapcompare/pkg/config"
	"f1lapcompare/pkg/model"
)

// Sector is the part of the lap between two boundaries.
type Sector struct {
	Index  int           `json:"index"`
	Color  string        `json:"color"`
	Start  float64       `json:"start"`
	End    float64       `json:"end"`
	Points []model.Point `json:"points"`
}

// Zone is a contiguous run of samples with DRS open.
type Zone struct {
	Start  float64       `json:"start"`
	End    float64       `json:"end"`
	Points []model.Point `json:"points"`
}

// SectorBoundaries returns the along-lap distances of the circuit corners.
// Corners without a distance are skipped.
func SectorBoundaries(trace model.Trace, circuit model.CircuitInfo) []float64 {
	out := []float64{}
	for _, c := range circuit.Corners {
		if c.HasDistance {
			out = append(out, c.Distance)
		}
	}
	return out
}

// Sectors splits the trace at boundaries and at the final lap distance. The
// first sector is [0, b0], the following ones (b(i-1), b(i)].
func Sectors(trace model.Trace, boundaries []float64) []Sector {
	if len(boundaries) == 0 || trace.IsEmpty() {
		return []Sector{}
	}

	ends := append(append([]float64{}, boundaries...), trace.TotalDistance())
	sectors := make([]Sector, 0, len(ends))
	start := 0.0
	for i, end := range ends {
		sec := Sector{
			Index:  i,
			Color:  SectorColor(i),
			Start:  start,
			End:    end,
			Points: []model.Point{},
		}
		for _, s := range trace.Samples {
			inside := s.Distance <= end && (s.Distance > start || (i == 0 && s.Distance >= start))
			if inside {
				sec.Points = append(sec.Points, model.Point{X: s.X, Y: s.Y})
			}
		}
		sectors = append(sectors, sec)
		start = end
	}
	return sectors
}

func SectorColor(i int) string {
	return config.SectorColors[i%len(config.SectorColors)]
}

// DRSActive returns the positions where DRS is open.
func DRSActive(trace model.Trace) []model.Point {
	out := []model.Point{}
	for _, s := range trace.Samples {
		if s.DRS > 0 {
			out = append(out, model.Point{X: s.X, Y: s.Y})
		}
	}
	return out
}

func DRSZones(trace model.Trace) []Zone {
	zones := []Zone{}
	var cur *Zone
	for _, s := range trace.Samples {
		if s.DRS <= 0 {
			if cur != nil {
				zones = append(zones, *cur)
				cur = nil
			}
			continue
		}
		if cur == nil {
			cur = &Zone{Start: s.Distance}
		}
		cur.End = s.Distance
		cur.Points = append(cur.Points, model.Point{X: s.X, Y: s.Y})
	}
	if cur != nil {
		zones = append(zones, *cur)
	}
	return zones
}
