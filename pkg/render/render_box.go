package render

import (
	"io"
	"sort"

	"github.com/scmviz/methylome/pkg/model"
)

func boxAxis(title string, titleSize float64, anchor string, bordered bool) *Axis {
	ax := &Axis{
		Title:          title,
		TitleFont:      &Font{Size: titleSize},
		Anchor:         anchor,
		Ticks:          "outside",
		TickLen:        4,
		TickWidth:      0.5,
		ShowTickLabels: boolPtr(true),
		TickFont:       &Font{Size: 12},
		ZeroLine:       boolPtr(false),
		ShowGrid:       boolPtr(true),
	}
	if bordered {
		ax.ShowLine = boolPtr(true)
		ax.LineWidth = 1
		ax.Mirror = boolPtr(true)
	} else {
		ax.ShowLine = boolPtr(false)
		ax.TickColor = "rgba(51,51,51,1)"
	}
	return ax
}

// RenderMethylationBox draws one box per cluster for a single gene.
func RenderMethylationBox(w io.Writer, points []model.MethPoint, geneName, titleMType, level string, mouse bool) error {

	if len(points) == 0 {
		return model.ErrFailToGraph
	}

	maxCluster := 0
	for _, p := range points {
		if p.ClusterOrdered > maxCluster {
			maxCluster = p.ClusterOrdered
		}
	}
	maxCluster++
	if mouse {
		maxCluster = 16
	}
	colors := model.GenerateClusterColors(maxCluster)

	traces := make(map[int]*BoxTrace)
	for _, p := range points {
		trace, ok := traces[p.ClusterOrdered]
		if !ok {
			color := colorAt(colors, p.ClusterOrdered-1)
			trace = &BoxTrace{
				Type: "box",
				Name: p.ClusterName,
				Marker: &Marker{
					Color:        color,
					OutlierColor: color,
					Size:         6,
				},
				BoxPoints:  "suspectedoutliers",
				Visible:    true,
				ShowLegend: boolPtr(false),
			}
			traces[p.ClusterOrdered] = trace
		}
		trace.Y = append(trace.Y, JSONFloat(p.ValueAt(level)))
	}

	if mouse {
		for i := 17; i < 23; i++ {
			if trace, ok := traces[i]; ok {
				trace.Marker.Color = "black"
				trace.Marker.OutlierColor = "black"
				trace.Visible = "legendonly"
			}
		}
	}

	keys := make([]int, 0, len(traces))
	for k := range traces {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	data := make([]any, 0, len(keys))
	for _, k := range keys {
		data = append(data, traces[k])
	}

	xaxis := boxAxis("Cluster", 17, "y", true)
	xaxis.Type = "category"
	xaxis.TickAngle = -45

	layout := &Layout{
		AutoSize:  true,
		Height:    450,
		Title:     "Gene body " + titleMType + " in each cluster: " + geneName,
		TitleFont: &Font{Color: "rgba(1,2,2,1)", Size: 20},
		XAxis:     xaxis,
		YAxis:     boxAxis(geneName+" "+levelTitle(level)+" "+titleMType, 15, "x", true),
	}
	layout.YAxis.Type = "linear"

	return RenderFigureDiv(w, Figure{Data: data, Layout: layout})
}

// RenderCombinedBox draws mouse and human boxes side by side, grouped by
// the homologous cluster label. Mouse clusters red, human clusters black.
func RenderCombinedBox(w io.Writer, pointsMmu, pointsHsa []model.MethPoint, geneName, titleMType, level string) error {

	if len(pointsMmu) == 0 || len(pointsHsa) == 0 {
		return model.ErrFailToGraph
	}

	orthologBox := func(points []model.MethPoint, color string) *BoxTrace {
		trace := &BoxTrace{
			Type:      "box",
			Marker:    &Marker{Color: color, OutlierColor: color},
			BoxPoints: "suspectedoutliers",
		}
		for _, p := range points {
			if p.ClusterOrtholog == "" {
				continue
			}
			trace.X = append(trace.X, p.ClusterOrtholog)
			trace.Y = append(trace.Y, JSONFloat(p.ValueAt(level)))
		}
		return trace
	}

	traceMmu := orthologBox(pointsMmu, "red")
	traceHsa := orthologBox(pointsHsa, "black")

	xaxis := boxAxis("", 14, "y", false)
	xaxis.Type = "category"
	xaxis.TickAngle = -35

	yaxis := boxAxis(geneName+" "+levelTitle(level)+" "+titleMType, 15, "x", false)
	yaxis.Type = "linear"

	speciesKey := func(text string, x float64, color string) Annotation {
		return Annotation{
			Text:    "<b>■</b> " + text,
			X:       x,
			Y:       1.02,
			Font:    &Font{Color: color, Size: 12},
			XRef:    "paper",
			YRef:    "paper",
			XAnchor: "left",
			YAnchor: "bottom",
		}
	}

	layout := &Layout{
		BoxMode:    "group",
		AutoSize:   true,
		Height:     450,
		ShowLegend: boolPtr(false),
		Title:      "Gene body " + titleMType + " in each cluster: " + geneName,
		TitleFont:  &Font{Color: "rgba(1,2,2,1)", Size: 20},
		XAxis:      xaxis,
		YAxis:      yaxis,
		Shapes: []Shape{
			{
				Type:      "rect",
				FillColor: "transparent",
				Line:      &MarkerLine{Width: 1, Color: "rgba(115, 115, 115, 1)"},
				XRef:      "paper",
				YRef:      "paper",
				X0:        0,
				X1:        1,
				Y0:        0,
				Y1:        1,
			},
		},
		Annotations: []Annotation{
			speciesKey("Mouse", 0.4, "red"),
			speciesKey("Human", 0.5, "black"),
		},
	}

	return RenderFigureDiv(w, Figure{Data: []any{traceMmu, traceHsa}, Layout: layout})
}
