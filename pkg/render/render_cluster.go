package render

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/scmviz/methylome/logger"
	"github.com/scmviz/methylome/pkg/db"
	"github.com/scmviz/methylome/pkg/model"
)

var clusterSymbols = []string{
	"circle", "square", "cross", "triangle-up",
	"triangle-down", "octagon", "star", "diamond",
}

// Grouping variables accepted by the cluster viewer.
const (
	GroupClusterOrdered    = "cluster_ordered"
	GroupBiosample         = "biosample"
	GroupAnnotationOrdered = "cluster_annotation_ordered"
)

// OrderedTraces is a trace set keyed by cluster/sample number. It marshals
// as a JSON object with keys in ascending numeric order, which the cluster
// viewer relies on to map legend entries to trace indexes.
type OrderedTraces struct {
	byNum map[int]*ScatterTrace
}

func newOrderedTraces() *OrderedTraces {
	return &OrderedTraces{byNum: make(map[int]*ScatterTrace)}
}

func (t *OrderedTraces) sortedKeys() []int {
	keys := make([]int, 0, len(t.byNum))
	for k := range t.byNum {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (t *OrderedTraces) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.sortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(k)))
		buf.WriteByte(':')
		traceJSON, err := json.Marshal(t.byNum[k])
		if err != nil {
			return nil, err
		}
		buf.Write(traceJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ClusterFigures is the cluster viewer payload: one trace per
// cluster/sample combination, plus the 2D and optional 3D layouts.
type ClusterFigures struct {
	Traces2D *OrderedTraces `json:"traces_2d"`
	Traces3D *OrderedTraces `json:"traces_3d,omitempty"`
	Layout2D *Layout        `json:"layout2d"`
	Layout3D *Layout        `json:"layout3d,omitempty"`
}

func tsneAxis(title string, fontSize float64) *Axis {
	return &Axis{
		Title:          title,
		TitleFont:      &Font{Color: "rgba(1,2,2,1)", Size: fontSize},
		Type:           "linear",
		ShowTickLabels: boolPtr(false),
		ShowLine:       boolPtr(true),
		ShowGrid:       boolPtr(false),
		ZeroLine:       boolPtr(false),
		LineColor:      "black",
		LineWidth:      0.5,
		Mirror:         boolPtr(true),
	}
}

func clusterLayout2D() *Layout {
	return &Layout{
		AutoSize:   true,
		Height:     450,
		ShowLegend: boolPtr(true),
		Margin:     &Margin{L: 49, R: 0, B: 30, T: 50, Pad: 10},
		Legend: &Legend{
			Orientation:   "v",
			TraceOrder:    "grouped",
			TraceGroupGap: 4,
			X:             1.03,
			Font:          &Font{Size: 12},
		},
		XAxis:     tsneAxis("tSNE 1", 14),
		YAxis:     tsneAxis("tSNE 2", 14),
		Title:     "Cell clusters",
		TitleFont: &Font{Color: "rgba(1,2,2,1)", Size: 16},
	}
}

func clusterLayout3D() *Layout {
	return &Layout{
		AutoSize:  true,
		Height:    450,
		Title:     "3D Cell Cluster",
		TitleFont: &Font{Color: "rgba(1,2,2,1)", Size: 16},
		Margin:    &Margin{L: 49, R: 0, B: 30, T: 50, Pad: 10},
		Scene: &Scene{
			Camera: &Camera{
				Eye:    map[string]float64{"x": 1.2, "y": 1.5, "z": 0.7},
				Center: map[string]float64{"x": 0.25, "z": -0.1},
			},
			AspectMode: "data",
			XAxis:      tsneAxis("tSNE 1", 12),
			YAxis:      tsneAxis("tSNE 2", 12),
			ZAxis:      tsneAxis("tSNE 3", 12),
		},
	}
}

func groupValue(p db.CellPoint, grouping string) int {
	switch grouping {
	case GroupBiosample:
		return p.Biosample
	case GroupAnnotationOrdered:
		return p.ClusterAnnotationOrdered
	default:
		return p.ClusterOrdered
	}
}

// groupingAvailable reports whether every needed column exists in the
// loaded points. Missing groupings fall back to cluster_ordered.
func groupingAvailable(points []db.CellPoint, grouping string) bool {
	if len(points) == 0 {
		return false
	}
	switch grouping {
	case GroupBiosample:
		return points[0].HasBiosample
	case GroupAnnotationOrdered:
		return points[0].HasAnnotation
	case GroupClusterOrdered:
		return true
	default:
		return false
	}
}

func maxGroupValue(points []db.CellPoint, grouping string) int {
	maxVal := 0
	for _, p := range points {
		if v := groupValue(p, grouping); v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

func clusterHoverText(p db.CellPoint) string {
	labels := [][2]string{
		{"Cell", orNA(p.Sample)},
		{"Layer", orNA(p.Layer)},
		{"Biosample", orNA(p.BiosampleName)},
		{"Cluster", orNA(p.ClusterName)},
	}
	if p.HasAnnotation {
		labels = append(labels, [2]string{"Annotation", orNA(p.ClusterAnnotation)})
	}
	return BuildHoverText(labels)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func colorAt(colors []string, i int) string {
	if len(colors) == 0 {
		return "grey"
	}
	return colors[((i%len(colors))+len(colors))%len(colors)]
}

// symbolAt wraps negative indexes, a biosample column value of 0 maps to
// index -1.
func symbolAt(i int) string {
	n := len(clusterSymbols)
	return clusterSymbols[((i%n)+n)%n]
}

// traceIdentity resolves the trace key, legend group and display name for
// one cell under the selected grouping.
func traceIdentity(p db.CellPoint, grouping string, maxCluster, biosample int, biosampleName string) (num int, legendGroup, name string) {
	switch grouping {
	case GroupAnnotationOrdered:
		legendGroup = p.ClusterAnnotation
		if legendGroup == "" {
			legendGroup = "N/A"
		}
		name = legendGroup + " (" + biosampleName + ")"
		num = p.ClusterAnnotationOrdered + maxCluster*biosample
	case GroupBiosample:
		legendGroup = strconv.Itoa(p.Biosample)
		name = "Sample " + biosampleName
		num = p.ClusterOrdered + maxCluster*biosample
	default:
		legendGroup = strconv.Itoa(p.ClusterOrdered)
		annotation := ""
		if p.HasAnnotation {
			a := p.ClusterAnnotation
			if a == "" {
				a = "N/A"
			}
			annotation = "(" + a + ")"
		}
		name = annotation + p.ClusterName + " " + biosampleName
		num = p.ClusterOrdered + maxCluster*biosample
	}
	return num, legendGroup, name
}

func biosampleInfo(p db.CellPoint) (biosample int, name string) {
	if !p.HasBiosample {
		return 0, ""
	}
	biosample = p.Biosample - 1
	name = p.BiosampleName
	if name == "" {
		name = "hv" + strconv.Itoa(biosample+1)
	}
	return biosample, name
}

// BuildClusterFigures assembles the tSNE cluster scatter figure. When 3D
// coordinates exist for the species, matched 2D and 3D trace sets are
// returned; otherwise only the 2D set.
func BuildClusterFigures(points2D, points3D []db.CellPoint, species, grouping string) (*ClusterFigures, error) {

	figs := &ClusterFigures{
		Traces2D: newOrderedTraces(),
		Layout2D: clusterLayout2D(),
	}

	points := points2D
	has3D := len(points3D) > 0
	if has3D {
		points = points3D
		figs.Traces3D = newOrderedTraces()
		figs.Layout3D = clusterLayout3D()
	}
	if len(points) == 0 {
		return nil, model.ErrFailToGraph
	}

	if !groupingAvailable(points, grouping) {
		logger.Debug("grouping unavailable, using cluster_ordered", zap.String("grouping", grouping))
		grouping = GroupClusterOrdered
	}

	maxCluster := maxGroupValue(points, GroupClusterOrdered) + 1
	if model.IsMouse(species) {
		maxCluster = 16
	}
	numColors := maxGroupValue(points, grouping)
	if has3D {
		numColors++
	}
	colors := model.GenerateClusterColors(numColors)

	markerSize2D := 4.0
	markerLineWidth2D := 0.1
	if has3D {
		markerSize2D = 6.0
		markerLineWidth2D = 0.5
	}

	for _, p := range points {
		biosample, biosampleName := biosampleInfo(p)
		num, legendGroup, name := traceIdentity(p, grouping, maxCluster, biosample, biosampleName)

		color := colorAt(colors, groupValue(p, grouping)-1)
		symbol := symbolAt(biosample)
		hover := clusterHoverText(p)

		trace2d, ok := figs.Traces2D.byNum[num]
		if !ok {
			trace2d = &ScatterTrace{
				Type:        "scattergl",
				Mode:        "markers",
				Visible:     true,
				Name:        name,
				LegendGroup: legendGroup,
				Marker: &Marker{
					Color:   color,
					Size:    markerSize2D,
					Opacity: 0.8,
					Symbol:  symbol,
					Line:    &MarkerLine{Width: markerLineWidth2D, Color: "black"},
				},
				HoverInfo: "text",
			}
			figs.Traces2D.byNum[num] = trace2d
		}
		trace2d.X = append(trace2d.X, JSONFloat(p.TSNEX))
		trace2d.Y = append(trace2d.Y, JSONFloat(p.TSNEY))
		trace2d.Text = append(trace2d.Text, hover)

		if !has3D {
			continue
		}
		trace3d, ok := figs.Traces3D.byNum[num]
		if !ok {
			trace3d = &ScatterTrace{
				Type:        "scatter3d",
				Mode:        "markers",
				Visible:     true,
				Name:        name,
				LegendGroup: legendGroup,
				Marker: &Marker{
					Color:  color,
					Size:   4,
					Symbol: symbol,
					Line:   &MarkerLine{Width: 1, Color: "black"},
				},
				HoverInfo: "text",
			}
			figs.Traces3D.byNum[num] = trace3d
		}
		trace3d.X = append(trace3d.X, JSONFloat(p.TSNE1))
		trace3d.Y = append(trace3d.Y, JSONFloat(p.TSNE2))
		trace3d.Z = append(trace3d.Z, JSONFloat(p.TSNE3))
		trace3d.Text = trace2d.Text
	}

	if model.IsMouse(species) {
		markMouseOutlierTraces(figs.Traces2D)
		markMouseOutlierTraces(figs.Traces3D)
	}

	return figs, nil
}

// Mouse clusters 17-22 are glia and outlier populations. They are drawn
// oversized in black and hidden until toggled from the legend.
func markMouseOutlierTraces(traces *OrderedTraces) {
	if traces == nil {
		return
	}
	for i := 17; i < 23; i++ {
		trace, ok := traces.byNum[i]
		if !ok {
			continue
		}
		trace.Marker.Size = 15
		trace.Marker.Symbol = clusterSymbols[i%len(clusterSymbols)]
		trace.Marker.Color = "black"
		trace.Visible = "legendonly"
	}
}
