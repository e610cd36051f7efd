package segment

import (
	"testing"

	"f1lapcompare/pkg/model"
)

func lap(dist, drs []float64) model.Trace {
	t := model.Trace{HasDRS: drs != nil}
	for i, d := range dist {
		s := model.Sample{Distance: d, X: d, Y: -d}
		if drs != nil {
			s.DRS = drs[i]
		}
		t.Samples = append(t.Samples, s)
	}
	return t
}

func TestSectorBoundariesWithoutDistances(t *testing.T) {
	circuit := model.CircuitInfo{Corners: []model.Corner{{Number: 1, X: 1}, {Number: 2, X: 2}}}
	if b := SectorBoundaries(lap([]float64{0, 1}, nil), circuit); len(b) != 0 {
		t.Errorf("Expected no boundaries, got %v", b)
	}
}

func TestSectorBoundaries(t *testing.T) {
	circuit := model.CircuitInfo{Corners: []model.Corner{
		{Number: 1, Distance: 100, HasDistance: true},
		{Number: 2},
		{Number: 3, Distance: 250, HasDistance: true},
	}}
	b := SectorBoundaries(lap([]float64{0, 1}, nil), circuit)
	if len(b) != 2 || b[0] != 100 || b[1] != 250 {
		t.Errorf("Expected [100 250], got %v", b)
	}
}

func TestSectors(t *testing.T) {
	tr := lap([]float64{0, 50, 100, 150, 200, 300, 400}, nil)
	sectors := Sectors(tr, []float64{100, 200, 300})

	if len(sectors) != 4 {
		t.Fatalf("Expected 4 sectors, got %d", len(sectors))
	}
	wantPoints := []int{3, 2, 1, 1}
	for i, s := range sectors {
		if len(s.Points) != wantPoints[i] {
			t.Errorf("sector %d: expected %d points, got %d", i, wantPoints[i], len(s.Points))
		}
	}
	if sectors[3].Color != sectors[0].Color || sectors[0].Color != "#FF5555" {
		t.Errorf("Expected palette to repeat, got %s and %s", sectors[0].Color, sectors[3].Color)
	}
	if sectors[3].End != 400 {
		t.Errorf("Expected last sector to end at lap distance, got %f", sectors[3].End)
	}
}

func TestSectorsEmptyBoundaries(t *testing.T) {
	if s := Sectors(lap([]float64{0, 10}, nil), nil); len(s) != 0 {
		t.Errorf("Expected no sectors, got %d", len(s))
	}
}

func TestDRSZones(t *testing.T) {
	tr := lap([]float64{0, 10, 20, 30, 40, 50}, []float64{0, 10, 12, 0, 14, 14})

	zones := DRSZones(tr)
	if len(zones) != 2 {
		t.Fatalf("Expected 2 zones, got %d", len(zones))
	}
	if zones[0].Start != 10 || zones[0].End != 20 || len(zones[0].Points) != 2 {
		t.Errorf("Unexpected first zone %+v", zones[0])
	}
	if zones[1].Start != 40 || zones[1].End != 50 {
		t.Errorf("Unexpected second zone %+v", zones[1])
	}
	if n := len(DRSActive(tr)); n != 4 {
		t.Errorf("Expected 4 active points, got %d", n)
	}
}

func TestDRSNeverActive(t *testing.T) {
	tr := lap([]float64{0, 10}, []float64{0, 0})
	if len(DRSZones(tr)) != 0 || len(DRSActive(tr)) != 0 {
		t.Error("Expected no DRS zones")
	}
}
