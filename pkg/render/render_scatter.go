package render

import (
	"io"
	"math"
	"strconv"

	"github.com/scmviz/methylome/pkg/model"
)

// ScatterParams describes one methylation scatter request after the
// handler has resolved genes and canonicalized the form values.
type ScatterParams struct {
	Title      string
	TitleMType string // "mCH" or "mCG"
	Level      string // "original" or "normalized"
	PtileStart float64
	PtileEnd   float64
}

// RenderMethylationScatter draws methylation levels on the tSNE layout,
// colored by percentile-clipped value, and writes the figure div.
func RenderMethylationScatter(w io.Writer, points []model.MethPoint, p ScatterParams) error {

	if len(points) == 0 {
		return model.ErrFailToGraph
	}

	x := make([]JSONFloat, 0, len(points))
	y := make([]JSONFloat, 0, len(points))
	text := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))

	for _, point := range points {
		v := point.ValueAt(p.Level)
		x = append(x, JSONFloat(point.TSNEX))
		y = append(y, JSONFloat(point.TSNEY))
		values = append(values, v)
		text = append(text, BuildHoverText([][2]string{
			{p.TitleMType, strconv.FormatFloat(math.Round(v*1e6)/1e6, 'g', -1, 64)},
			{"Sample", point.Sample},
			{"Cluster", point.ClusterName},
		}))
	}

	start := model.Quantile(values, p.PtileStart)
	end := model.Quantile(values, p.PtileEnd)

	colors := make([]any, len(values))
	for i, v := range values {
		colors[i] = model.ClipToPercentile(v, start, end)
	}

	tickVals, tickText := colorbarTicks(start, end, true, 0)

	trace := &ScatterTrace{
		Type: "scatter",
		Mode: "markers",
		X:    x,
		Y:    y,
		Text: text,
		Marker: &Marker{
			Color:      colors,
			ColorScale: "Viridis",
			Size:       4,
			ColorBar: &ColorBar{
				X:         1.05,
				Len:       0.5,
				Thickness: 10,
				Title:     levelTitle(p.Level) + " " + p.TitleMType,
				TitleSide: "right",
				TickMode:  "array",
				TickVals:  tickVals,
				TickText:  tickText,
				TickFont:  &Font{Size: 10},
			},
		},
		HoverInfo: "text",
	}

	layout := &Layout{
		AutoSize:  true,
		Height:    450,
		Title:     p.Title,
		TitleFont: &Font{Color: "rgba(1,2,2,1)", Size: 16},
		Margin:    &Margin{L: 49, R: 0, B: 30, T: 50, Pad: 0},
		XAxis:     tsneAxis("tSNE 1", 14),
		YAxis:     tsneAxis("tSNE 2", 14),
		HoverMode: "closest",
		UpdateMenus: []UpdateMenu{
			colorScaleMenu("marker.colorscale", 1),
		},
	}

	return RenderFigureDiv(w, Figure{Data: []any{trace}, Layout: layout})
}

func levelTitle(level string) string {
	if level == "normalized" {
		return "Normalized"
	}
	return "Original"
}
