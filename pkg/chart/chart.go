package chart

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/helper"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	FormatPNG = "png"
	FormatSVG = "svg"

	Width  = 10 * vg.Inch
	Height = 5 * vg.Inch

	XLabel = "Distância na Volta (m)"
)

var (
	background = helper.MustColor("#1A1A1A")
	foreground = color.White
	guides     = color.RGBA{0x80, 0x80, 0x80, 0x80}
)

func ValidFormat(format string) bool {
	return format == FormatPNG || format == FormatSVG
}

// Build draws both series of r on the distance axis, clipped to view.
func Build(r *compare.Result, view View) (*plot.Plot, error) {
	if r == nil || len(r.Distance) == 0 {
		return nil, errors.New("nothing to plot")
	}

	p := plot.New()
	p.BackgroundColor = background
	p.Title.Text = r.Title + "\n" + r.Caption
	p.Title.TextStyle.Color = foreground
	p.X.Label.Text = XLabel
	p.Y.Label.Text = r.Label
	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Color = foreground
		a.Label.TextStyle.Color = foreground
		a.Tick.Color = foreground
		a.Tick.Label.Color = foreground
	}
	p.Legend.TextStyle.Color = foreground
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = guides
	grid.Horizontal.Color = guides
	grid.Vertical.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)

	for _, b := range r.SectorBoundaries {
		guide, err := plotter.NewLine(plotter.XYs{{X: b, Y: view.YMin}, {X: b, Y: view.YMax}})
		if err != nil {
			return nil, errors.Wrap(err, "sector guide")
		}
		guide.LineStyle.Color = guides
		guide.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(guide)
	}

	for i, s := range r.Series {
		c := helper.ColorOr(s.Color, foreground)
		line, err := plotter.NewLine(xys(r.Distance, s.Values))
		if err != nil {
			return nil, errors.Wrapf(err, "series %s", s.Driver)
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(2)
		if i == 1 {
			line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		p.Add(line)
		p.Legend.Add(s.Legend(), line)

		if len(s.Values) == 0 {
			continue
		}
		peak := plotter.XYs{{X: s.Peak.Distance, Y: s.Peak.Value}}
		marker, err := plotter.NewScatter(peak)
		if err != nil {
			return nil, errors.Wrapf(err, "peak of %s", s.Driver)
		}
		marker.GlyphStyle.Color = c
		marker.GlyphStyle.Shape = draw.CircleGlyph{}
		marker.GlyphStyle.Radius = vg.Points(4)
		p.Add(marker)

		label, err := plotter.NewLabels(plotter.XYLabels{XYs: peak, Labels: []string{fmt.Sprintf("%.1f", s.Peak.Value)}})
		if err != nil {
			return nil, errors.Wrapf(err, "peak label of %s", s.Driver)
		}
		for j := range label.TextStyle {
			label.TextStyle[j].Color = c
		}
		offset := vg.Points(8)
		if i == 1 {
			offset = -vg.Points(14)
		}
		label.Offset = vg.Point{Y: offset}
		p.Add(label)
	}

	p.X.Min, p.X.Max = view.XMin, view.XMax
	p.Y.Min, p.Y.Max = view.YMin, view.YMax
	return p, nil
}

func xys(xs, ys []float64) plotter.XYs {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func Render(w io.Writer, r *compare.Result, view View, format string) error {
	if !ValidFormat(format) {
		return errors.Errorf("unsupported chart format %q", format)
	}
	p, err := Build(r, view)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return errors.Wrap(err, "encoding chart")
	}
	_, err = wt.WriteTo(w)
	return err
}

// FileName is the export name of a comparison, e.g. "VER_L5_vs_HAM_L7_Delta.png".
func FileName(r *compare.Result, format string) string {
	name := fmt.Sprintf("%s_L%d_vs_%s_L%d_%s.%s",
		r.Series[0].Driver, r.Series[0].Lap, r.Series[1].Driver, r.Series[1].Lap, r.ChannelName, format)
	return strings.ReplaceAll(name, " ", "_")
}

// Export writes the chart into dir and returns the file path.
func Export(dir string, r *compare.Result, view View, format string) (string, error) {
	if r == nil {
		return "", errors.New("no chart to export")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}
	path := filepath.Join(dir, FileName(r, format))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	if err := Render(f, r, view, format); err != nil {
		return "", err
	}
	log.Printf("Chart exported as %s\n", path)
	return path, nil
}
