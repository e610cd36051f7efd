package layout

import (
	"bytes"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/segment"
)

func square() Track {
	pts := []model.Point{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 500}, {X: 0, Y: 500}, {X: 0, Y: 0}}
	return Track{
		Outline: pts,
		Sectors: []segment.Sector{
			{Index: 0, Color: "#FF5555", Points: pts[:3]},
			{Index: 1, Color: "#55FF55", Points: pts[2:]},
		},
		DRS: []segment.Zone{{Start: 0, End: 100, Points: pts[:2]}},
	}
}

func TestProjection(t *testing.T) {
	pr, err := NewProjection(square().Outline, 440)
	if err != nil {
		t.Fatal(err)
	}
	if pr.Rotate {
		t.Error("Expected a wide track not to be rotated")
	}
	if pr.Scale != 0.4 || pr.Height != 240 {
		t.Errorf("Unexpected projection %+v", pr)
	}
	x, y := pr.Project(model.Point{X: 0, Y: 0})
	if x != margin || y != pr.Height-margin {
		t.Errorf("Expected origin at bottom left, got (%f, %f)", x, y)
	}
	x, y = pr.Project(model.Point{X: 1000, Y: 500})
	if x != 420 || y != margin {
		t.Errorf("Expected far corner at top right, got (%f, %f)", x, y)
	}
}

func TestProjectionRotatesTallTracks(t *testing.T) {
	pr, err := NewProjection([]model.Point{{X: 0, Y: 0}, {X: 100, Y: 1000}}, 440)
	if err != nil {
		t.Fatal(err)
	}
	if !pr.Rotate || pr.Height >= pr.Width {
		t.Errorf("Expected landscape projection, got %+v", pr)
	}
}

func TestProjectionEmpty(t *testing.T) {
	if _, err := NewProjection(nil, 100); err == nil {
		t.Error("Expected error for empty track")
	}
}

func TestBuildPNG(t *testing.T) {
	var buf bytes.Buffer
	marker := model.Point{X: 500, Y: 0}
	if err := BuildPNG(&buf, square(), &marker); err != nil {
		t.Fatalf("BuildPNG failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Expected a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != SizePNG {
		t.Errorf("Expected width %d, got %d", SizePNG, img.Bounds().Dx())
	}
}

func TestBuildSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := BuildSVG(&buf, square(), nil); err != nil {
		t.Fatalf("BuildSVG failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, `"scale"`) {
		t.Errorf("Expected SVG with projection metadata, got %s", out)
	}
}

func TestSaveLayout(t *testing.T) {
	dir := t.TempDir()
	if err := SaveLayoutPNG(filepath.Join(dir, "map.png"), square(), nil); err != nil {
		t.Errorf("SaveLayoutPNG failed: %v", err)
	}
	if err := SaveLayoutSVG(filepath.Join(dir, "map.svg"), square(), nil); err != nil {
		t.Errorf("SaveLayoutSVG failed: %v", err)
	}
}
