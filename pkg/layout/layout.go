package layout

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"sync"

	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/config"
	"f1lapcompare/pkg/helper"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/segment"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/llgcode/draw2d/draw2dsvg"
	"github.com/pkg/errors"
)

const (
	SizePNG = 480
	SizeSVG = 640
	margin  = 20
)

var (
	mu = sync.Mutex{}

	background = helper.MustColor("#1A1A1A")
	outline    = color.RGBA{0xff, 0xff, 0xff, 0x4d}
	markerFill = color.RGBA{0xff, 0xff, 0x00, 0xff}
)

// Track is the minimap of the reference lap.
type Track struct {
	Outline []model.Point
	Sectors []segment.Sector
	DRS     []segment.Zone
}

func FromResult(r *compare.Result) Track {
	return Track{
		Outline: r.Minimap.Outline,
		Sectors: r.Minimap.Sectors,
		DRS:     r.DRSZones,
	}
}

// Projection maps track coordinates to image pixels. It is appended to SVG
// output so clients can place the hover marker themselves.
type Projection struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Scale  float64 `json:"scale"`
	Rotate bool    `json:"rotate"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewProjection fits points in a canvas whose longest side is size pixels.
// Tracks taller than wide are rotated to landscape.
func NewProjection(points []model.Point, size float64) (Projection, error) {
	if len(points) == 0 {
		return Projection{}, errors.New("track has no positions")
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	w, h := maxX-minX, maxY-minY
	rotate := false
	if w < h {
		rotate = true
		w, h = h, w
	}
	inner := size - 2*margin
	scale := 1.0
	if w > 0 {
		scale = inner / w
	}
	return Projection{
		MinX:   minX,
		MinY:   minY,
		Scale:  scale,
		Rotate: rotate,
		Width:  size,
		Height: math.Max(h*scale+2*margin, 2*margin),
	}, nil
}

// Project returns pixel coordinates with the y axis pointing up on the image.
func (pr Projection) Project(p model.Point) (float64, float64) {
	x := (p.X - pr.MinX) * pr.Scale
	y := (p.Y - pr.MinY) * pr.Scale
	if pr.Rotate {
		x, y = y, x
	}
	return x + margin, pr.Height - (y + margin)
}

func BuildPNG(w io.Writer, t Track, marker *model.Point) error {
	mu.Lock()
	defer mu.Unlock()
	pr, err := NewProjection(t.Outline, SizePNG)
	if err != nil {
		return err
	}

	dest := image.NewRGBA(image.Rect(0, 0, int(pr.Width), int(pr.Height)))
	gc := draw2dimg.NewGraphicContext(dest)
	fillBackground(gc, pr)
	drawTrack(gc, pr, t, marker)
	return png.Encode(w, dest)
}

func BuildSVG(w io.Writer, t Track, marker *model.Point) error {
	mu.Lock()
	defer mu.Unlock()
	pr, err := NewProjection(t.Outline, SizeSVG)
	if err != nil {
		return err
	}

	dest := draw2dsvg.NewSvg()
	gc := draw2dsvg.NewGraphicContext(dest)
	fillBackground(gc, pr)
	drawTrack(gc, pr, t, marker)

	_, err = io.WriteString(w, xml.Header)
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(dest); err != nil {
		return errors.Wrap(err, "encoding minimap")
	}

	jsonBytes, err := json.Marshal(pr)
	if err != nil {
		return err
	}
	buffer := new(bytes.Buffer)
	err = json.Compact(buffer, jsonBytes)
	if err != nil {
		return err
	}

	// append projection to svg as comments in the xml
	_, _ = w.Write([]byte("\n<!--\n"))
	_, _ = w.Write(buffer.Bytes())
	_, err = w.Write([]byte("\n-->"))
	return err
}

// SaveLayoutPNG writes the minimap to a PNG file.
func SaveLayoutPNG(path string, t Track, marker *model.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return BuildPNG(f, t, marker)
}

func SaveLayoutSVG(path string, t Track, marker *model.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return BuildSVG(f, t, marker)
}

func fillBackground(gc draw2d.GraphicContext, pr Projection) {
	gc.Save()
	gc.SetFillColor(background)
	draw2dkit.Rectangle(gc, 0, 0, pr.Width, pr.Height)
	gc.Fill()
	gc.Restore()
}

func drawTrack(gc draw2d.GraphicContext, pr Projection, t Track, marker *model.Point) {
	drawPath(gc, pr, t.Outline, outline, 6)
	for _, s := range t.Sectors {
		drawPath(gc, pr, s.Points, helper.ColorOr(s.Color, color.White), 3)
	}
	drs := helper.MustColor(config.DRSColor)
	drs.A = 0xb3
	for _, z := range t.DRS {
		drawPath(gc, pr, z.Points, drs, 5)
	}
	if marker != nil {
		x, y := pr.Project(*marker)
		gc.Save()
		gc.SetFillColor(markerFill)
		draw2dkit.Circle(gc, x, y, 6)
		gc.Fill()
		gc.Restore()
	}
}

func drawPath(gc draw2d.GraphicContext, pr Projection, points []model.Point, c color.Color, width float64) {
	if len(points) < 2 {
		return
	}
	gc.Save()
	gc.SetStrokeColor(c)
	gc.SetLineWidth(width)
	for i, p := range points {
		x, y := pr.Project(p)
		if i == 0 {
			gc.MoveTo(x, y) // Move to a position to start the new path
		} else {
			gc.LineTo(x, y)
		}
	}
	gc.Stroke()
	gc.Restore()
}
