package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/scmviz/methylome/pkg/model"
)

// RenderScatterPNG writes the methylation scatter as a static PNG for
// download. Colors ramp blue to red over the clipped percentile range.
func RenderScatterPNG(w io.Writer, points []model.MethPoint, p ScatterParams) error {

	if len(points) == 0 {
		return model.ErrFailToGraph
	}

	// Liberation ships with the plot module, system fonts are not needed.
	plot.DefaultFont = font.Font{Typeface: "Liberation", Variant: "Sans"}
	plotter.DefaultFont = font.Font{Typeface: "Liberation", Variant: "Sans"}

	values := make([]float64, 0, len(points))
	for _, point := range points {
		values = append(values, point.ValueAt(p.Level))
	}
	start := model.Quantile(values, p.PtileStart)
	end := model.Quantile(values, p.PtileEnd)

	chart := plot.New()
	chart.Title.Text = p.Title
	chart.X.Label.Text = "tSNE 1"
	chart.Y.Label.Text = "tSNE 2"

	pts := make(plotter.XYs, len(points))
	for i, point := range points {
		pts[i] = plotter.XY{X: point.TSNEX, Y: point.TSNEY}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		style := draw.GlyphStyle{
			Shape:  draw.CircleGlyph{},
			Radius: vg.Points(1.5),
			Color:  rampColor(values[i], start, end),
		}
		return style
	}
	chart.Add(scatter)

	writer, err := chart.WriterTo(6*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("create plot writer: %w", err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// rampColor maps a methylation value onto a blue-to-red ramp, clamping
// to the percentile window the same way the interactive plot does.
// Missing values draw grey.
func rampColor(v, start, end float64) color.Color {
	if v != v {
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
	t := 0.0
	if end > start {
		t = (v - start) / (end - start)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return color.RGBA{
		R: uint8(255 * t),
		B: uint8(255 * (1 - t)),
		A: 255,
	}
}
