package render

import (
	"io"
	"math"
	"strconv"

	"github.com/scmviz/methylome/pkg/model"
)

// HeatmapParams describes one heatmap request after the handler has
// resolved genes and canonicalized the form values.
type HeatmapParams struct {
	Title        string
	TitleMType   string
	Level        string
	NormalizeRow bool
}

// Heatmap colorbars always span the 5th to 95th value percentile.
const (
	heatmapPtileStart = 0.05
	heatmapPtileEnd   = 0.95
)

func formatMeth(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func heatmapHover(matrix model.HeatmapMatrix, titleMType string) [][]string {
	hover := make([][]string, len(matrix.Genes))
	for i, gene := range matrix.Genes {
		rowText := make([]string, len(matrix.Clusters))
		for j, cluster := range matrix.Clusters {
			rowText[j] = BuildHoverText([][2]string{
				{"Gene", gene},
				{"Cluster", cluster},
				{titleMType, formatMeth(matrix.Z[i][j])},
			})
		}
		hover[i] = rowText
	}
	return hover
}

func heatmapZ(z [][]float64) [][]JSONFloat {
	out := make([][]JSONFloat, len(z))
	for i, row := range z {
		out[i] = jsonFloats(row)
	}
	return out
}

func flatValues(matrices ...model.HeatmapMatrix) []float64 {
	var flat []float64
	for _, m := range matrices {
		for _, row := range m.Z {
			flat = append(flat, row...)
		}
	}
	return flat
}

// heatmapColorBar spans the 5-95 percentile of all plotted values. The
// tick list is padded so plotly hover keeps working with many genes.
func heatmapColorBar(flat []float64, p HeatmapParams, minTicks int) *ColorBar {

	start := model.Quantile(flat, heatmapPtileStart)
	end := model.Quantile(flat, heatmapPtileEnd)
	tickVals, tickText := colorbarTicks(start, end, !p.NormalizeRow, minTicks)

	return &ColorBar{
		X:         1.0,
		Len:       1,
		Title:     levelTitle(p.Level) + " " + p.TitleMType,
		TitleSide: "right",
		TickMode:  "array",
		TickVals:  tickVals,
		TickText:  tickText,
		Thickness: 10,
		TickFont:  &Font{Size: 10},
	}
}

// RenderMethylationHeatmap draws per-cluster methylation medians for a
// set of genes and writes the figure div.
func RenderMethylationHeatmap(w io.Writer, matrix model.HeatmapMatrix, p HeatmapParams) error {

	if len(matrix.Genes) == 0 {
		return model.ErrFailToGraph
	}

	trace := &HeatmapTrace{
		Type:       "heatmap",
		X:          matrix.Clusters,
		Y:          matrix.Genes,
		Z:          heatmapZ(matrix.Z),
		Text:       heatmapHover(matrix, p.TitleMType),
		ColorScale: "Viridis",
		ColorBar:   heatmapColorBar(flatValues(matrix), p, len(matrix.Genes)),
		HoverInfo:  "text",
	}

	layout := &Layout{
		Title:     p.Title,
		Height:    450,
		TitleFont: &Font{Color: "rgba(1,2,2,1)", Size: 16},
		AutoSize:  true,
		XAxis: &Axis{
			Side:      "bottom",
			TickAngle: -45,
			TickFont:  &Font{Size: 12},
		},
		YAxis: &Axis{
			Title:     "Genes",
			TickAngle: 15,
			TickFont:  &Font{Size: 12},
		},
		HoverMode: "closest",
		UpdateMenus: []UpdateMenu{
			colorScaleMenu("colorscale", 1.17),
		},
	}

	return RenderFigureDiv(w, Figure{Data: []any{trace}, Layout: layout})
}

// RenderCombinedHeatmap draws human and mouse heatmaps side by side on a
// shared cluster axis and a single colorscale.
func RenderCombinedHeatmap(w io.Writer, hsa, mmu model.HeatmapMatrix, p HeatmapParams) error {

	if len(hsa.Genes) == 0 || len(mmu.Genes) == 0 {
		return model.ErrFailToGraph
	}

	traceHsa := &HeatmapTrace{
		Type:       "heatmap",
		X:          hsa.Clusters,
		Y:          hsa.Genes,
		Z:          heatmapZ(hsa.Z),
		Text:       heatmapHover(hsa, p.TitleMType),
		ColorScale: "Viridis",
		ShowScale:  boolPtr(true),
		ColorBar:   heatmapColorBar(flatValues(hsa, mmu), p, len(hsa.Genes)),
		HoverInfo:  "text",
		XAxis:      "x",
		YAxis:      "y",
	}
	traceMmu := &HeatmapTrace{
		Type:       "heatmap",
		X:          mmu.Clusters,
		Y:          mmu.Genes,
		Z:          heatmapZ(mmu.Z),
		Text:       heatmapHover(mmu, p.TitleMType),
		ColorScale: "Viridis",
		ShowScale:  boolPtr(false),
		HoverInfo:  "text",
		XAxis:      "x2",
		YAxis:      "y2",
	}

	subplotXAxis := func(domain []float64, anchor string) *Axis {
		return &Axis{
			Side:      "bottom",
			TickAngle: -45,
			TickFont:  &Font{Size: 12},
			Domain:    domain,
			Anchor:    anchor,
		}
	}
	subplotYAxis := func(anchor string) *Axis {
		return &Axis{
			Visible:   boolPtr(true),
			TickAngle: 15,
			TickFont:  &Font{Size: 12},
			Anchor:    anchor,
		}
	}

	subplotTitle := func(text string, x float64) Annotation {
		return Annotation{
			Text:    text,
			X:       x,
			Y:       1.0,
			Font:    &Font{Size: 16},
			XRef:    "paper",
			YRef:    "paper",
			XAnchor: "center",
			YAnchor: "bottom",
		}
	}

	layout := &Layout{
		Title:     p.Title,
		TitleFont: &Font{Color: "rgba(1,2,2,1)", Size: 16},
		AutoSize:  true,
		Height:    450,
		HoverMode: "closest",
		XAxis:     subplotXAxis([]float64{0, 0.45}, "y"),
		XAxis2:    subplotXAxis([]float64{0.55, 1.0}, "y2"),
		YAxis:     subplotYAxis("x"),
		YAxis2:    subplotYAxis("x2"),
		Annotations: []Annotation{
			subplotTitle("Human_published", 0.225),
			subplotTitle("Mouse_published", 0.775),
		},
		UpdateMenus: []UpdateMenu{
			colorScaleMenu("colorscale", 1.17),
		},
	}

	return RenderFigureDiv(w, Figure{Data: []any{traceHsa, traceMmu}, Layout: layout})
}
