package render

// Typed subset of the plotly figure schema used by the methylation plots.
// Figures are marshalled to JSON and handed to plotly.js, either inside a
// rendered div fragment or as raw figure JSON for the cluster viewer.

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// JSONFloat marshals NaN as null so plotly treats the point as missing.
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

func jsonFloats(values []float64) []JSONFloat {
	out := make([]JSONFloat, len(values))
	for i, v := range values {
		out[i] = JSONFloat(v)
	}
	return out
}

type Font struct {
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

type Margin struct {
	L   float64 `json:"l"`
	R   float64 `json:"r"`
	B   float64 `json:"b"`
	T   float64 `json:"t"`
	Pad float64 `json:"pad"`
}

type Legend struct {
	Orientation   string  `json:"orientation,omitempty"`
	TraceOrder    string  `json:"traceorder,omitempty"`
	TraceGroupGap float64 `json:"tracegroupgap,omitempty"`
	X             float64 `json:"x,omitempty"`
	Y             float64 `json:"y,omitempty"`
	Font          *Font   `json:"font,omitempty"`
}

type Axis struct {
	Title          string      `json:"title,omitempty"`
	TitleFont      *Font       `json:"titlefont,omitempty"`
	Type           string      `json:"type,omitempty"`
	Ticks          string      `json:"ticks,omitempty"`
	TickLen        float64     `json:"ticklen,omitempty"`
	TickWidth      float64     `json:"tickwidth,omitempty"`
	TickAngle      float64     `json:"tickangle,omitempty"`
	TickColor      string      `json:"tickcolor,omitempty"`
	TickFont       *Font       `json:"tickfont,omitempty"`
	TickMode       string      `json:"tickmode,omitempty"`
	TickVals       []JSONFloat `json:"tickvals,omitempty"`
	TickText       []string    `json:"ticktext,omitempty"`
	ShowTickLabels *bool       `json:"showticklabels,omitempty"`
	ShowLine       *bool       `json:"showline,omitempty"`
	ShowGrid       *bool       `json:"showgrid,omitempty"`
	ZeroLine       *bool       `json:"zeroline,omitempty"`
	Visible        *bool       `json:"visible,omitempty"`
	Mirror         *bool       `json:"mirror,omitempty"`
	LineColor      string      `json:"linecolor,omitempty"`
	LineWidth      float64     `json:"linewidth,omitempty"`
	Side           string      `json:"side,omitempty"`
	Anchor         string      `json:"anchor,omitempty"`
	Domain         []float64   `json:"domain,omitempty"`
}

type ColorBar struct {
	X         float64     `json:"x,omitempty"`
	Len       float64     `json:"len,omitempty"`
	Thickness float64     `json:"thickness,omitempty"`
	Title     string      `json:"title,omitempty"`
	TitleSide string      `json:"titleside,omitempty"`
	TickMode  string      `json:"tickmode,omitempty"`
	TickVals  []JSONFloat `json:"tickvals,omitempty"`
	TickText  []string    `json:"ticktext,omitempty"`
	TickFont  *Font       `json:"tickfont,omitempty"`
}

type MarkerLine struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

type Marker struct {
	Color        any         `json:"color,omitempty"` // one color or per-point values
	ColorScale   string      `json:"colorscale,omitempty"`
	Size         float64     `json:"size,omitempty"`
	Opacity      float64     `json:"opacity,omitempty"`
	Symbol       string      `json:"symbol,omitempty"`
	Line         *MarkerLine `json:"line,omitempty"`
	ColorBar     *ColorBar   `json:"colorbar,omitempty"`
	OutlierColor string      `json:"outliercolor,omitempty"`
}

// ScatterTrace covers the scatter, scattergl and scatter3d trace types.
type ScatterTrace struct {
	Type        string      `json:"type"`
	Mode        string      `json:"mode,omitempty"`
	X           []JSONFloat `json:"x"`
	Y           []JSONFloat `json:"y"`
	Z           []JSONFloat `json:"z,omitempty"`
	Text        []string    `json:"text,omitempty"`
	Name        string      `json:"name,omitempty"`
	LegendGroup string      `json:"legendgroup,omitempty"`
	Visible     any         `json:"visible,omitempty"` // true or "legendonly"
	ShowLegend  *bool       `json:"showlegend,omitempty"`
	Marker      *Marker     `json:"marker,omitempty"`
	HoverInfo   string      `json:"hoverinfo,omitempty"`
}

type BoxTrace struct {
	Type       string      `json:"type"`
	X          []string    `json:"x,omitempty"`
	Y          []JSONFloat `json:"y"`
	Name       string      `json:"name,omitempty"`
	Marker     *Marker     `json:"marker,omitempty"`
	BoxPoints  string      `json:"boxpoints,omitempty"`
	Visible    any         `json:"visible,omitempty"`
	ShowLegend *bool       `json:"showlegend,omitempty"`
}

type HeatmapTrace struct {
	Type       string        `json:"type"`
	X          []string      `json:"x"`
	Y          []string      `json:"y"`
	Z          [][]JSONFloat `json:"z"`
	Text       [][]string    `json:"text,omitempty"`
	ColorScale string        `json:"colorscale,omitempty"`
	ShowScale  *bool         `json:"showscale,omitempty"`
	ColorBar   *ColorBar     `json:"colorbar,omitempty"`
	HoverInfo  string        `json:"hoverinfo,omitempty"`
	XAxis      string        `json:"xaxis,omitempty"`
	YAxis      string        `json:"yaxis,omitempty"`
}

type Shape struct {
	Type      string     `json:"type"`
	FillColor string     `json:"fillcolor,omitempty"`
	Line      *MarkerLine `json:"line,omitempty"`
	XRef      string     `json:"xref,omitempty"`
	YRef      string     `json:"yref,omitempty"`
	X0        float64    `json:"x0"`
	X1        float64    `json:"x1"`
	Y0        float64    `json:"y0"`
	Y1        float64    `json:"y1"`
}

type Annotation struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	AX        float64 `json:"ax"`
	AY        float64 `json:"ay"`
	ShowArrow bool    `json:"showarrow"`
	Font      *Font   `json:"font,omitempty"`
	XRef      string  `json:"xref,omitempty"`
	YRef      string  `json:"yref,omitempty"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
	TextAngle float64 `json:"textangle"`
}

type Camera struct {
	Eye    map[string]float64 `json:"eye,omitempty"`
	Center map[string]float64 `json:"center,omitempty"`
}

type Scene struct {
	Camera     *Camera `json:"camera,omitempty"`
	AspectMode string  `json:"aspectmode,omitempty"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	ZAxis      *Axis   `json:"zaxis,omitempty"`
}

type MenuButton struct {
	Args   []any  `json:"args"`
	Label  string `json:"label"`
	Method string `json:"method"`
}

type UpdateMenu struct {
	Buttons    []MenuButton `json:"buttons"`
	Direction  string       `json:"direction,omitempty"`
	ShowActive bool         `json:"showactive"`
	X          float64      `json:"x"`
	XAnchor    string       `json:"xanchor,omitempty"`
	Y          float64      `json:"y"`
	YAnchor    string       `json:"yanchor,omitempty"`
}

type Layout struct {
	AutoSize    bool         `json:"autosize,omitempty"`
	Height      float64      `json:"height,omitempty"`
	Title       string       `json:"title,omitempty"`
	TitleFont   *Font        `json:"titlefont,omitempty"`
	Margin      *Margin      `json:"margin,omitempty"`
	Legend      *Legend      `json:"legend,omitempty"`
	ShowLegend  *bool        `json:"showlegend,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	XAxis2      *Axis        `json:"xaxis2,omitempty"`
	YAxis2      *Axis        `json:"yaxis2,omitempty"`
	Scene       *Scene       `json:"scene,omitempty"`
	HoverMode   string       `json:"hovermode,omitempty"`
	BoxMode     string       `json:"boxmode,omitempty"`
	UpdateMenus []UpdateMenu `json:"updatemenus,omitempty"`
	Shapes      []Shape      `json:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

type Figure struct {
	Data   []any   `json:"data"`
	Layout *Layout `json:"layout"`
}

var figureDivTemplate *template.Template

func init() {
	divTmpl := `<div id="plotly-{{.ID}}" class="plotly-graph-div"></div>
<script type="text/javascript">
	Plotly.newPlot("plotly-{{.ID}}", {{.Data}}, {{.Layout}}, {"showLink": true});
</script>
`
	figureDivTemplate = template.Must(template.New("figure-div").Parse(divTmpl))
}

// RenderFigureDiv writes the figure as a self-contained HTML fragment.
// plotly.js itself is loaded by the page shell, not inlined here.
func RenderFigureDiv(w io.Writer, fig Figure) error {

	dataJSON, err := json.Marshal(fig.Data)
	if err != nil {
		return fmt.Errorf("marshal figure data: %w", err)
	}
	layoutJSON, err := json.Marshal(fig.Layout)
	if err != nil {
		return fmt.Errorf("marshal figure layout: %w", err)
	}

	return figureDivTemplate.Execute(w, struct {
		ID     string
		Data   template.JS
		Layout template.JS
	}{
		ID:     uuid.New().String(),
		Data:   template.JS(dataJSON),
		Layout: template.JS(layoutJSON),
	})
}

func boolPtr(b bool) *bool { return &b }

// BuildHoverText builds the per-point hover HTML from label/value pairs.
func BuildHoverText(labels [][2]string) string {
	text := ""
	for i, kv := range labels {
		if i > 0 {
			text += "<br>"
		}
		text += kv[0] + ": " + kv[1]
	}
	return text
}

func round3(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'g', -1, 64)
}

// colorbarTicks spans [start, end] in quarter steps. The first and last
// labels get </> prefixes since values beyond the range are clamped; a
// min-max normalized plot keeps a plain lower label. plotly needs at least
// as many ticks as heatmap rows to keep hover working, so the list is
// front-padded with the start value up to minCount.
func colorbarTicks(start, end float64, clampedLow bool, minCount int) ([]JSONFloat, []string) {

	var vals []JSONFloat
	var text []string

	step := (end - start) / 4
	if step > 0 {
		for v := start; v < end; v += step {
			vals = append(vals, JSONFloat(v))
			text = append(text, round3(v))
		}
		vals[0] = JSONFloat(start)
	} else {
		vals = append(vals, JSONFloat(start))
		text = append(text, round3(start))
	}
	vals = append(vals, JSONFloat(end))

	if clampedLow {
		text[0] = "<" + round3(start)
	}
	text = append(text, ">"+round3(end))

	for len(vals) < minCount {
		vals = append([]JSONFloat{JSONFloat(start)}, vals...)
		lowLabel := round3(start)
		if clampedLow {
			lowLabel = "<" + lowLabel
		}
		text = append([]string{lowLabel}, text...)
	}

	return vals, text
}

var colorScales = []string{
	"Viridis", "Bluered", "Blackbody", "Electric", "Earth",
	"Jet", "Rainbow", "Picnic", "Portland", "YlGnBu",
}

// colorScaleMenu builds the colorscale dropdown. argName is
// "marker.colorscale" for scatter traces, "colorscale" for heatmaps.
func colorScaleMenu(argName string, y float64) UpdateMenu {

	buttons := make([]MenuButton, 0, len(colorScales))
	for _, scale := range colorScales {
		buttons = append(buttons, MenuButton{
			Args:   []any{argName, scale},
			Label:  scale,
			Method: "restyle",
		})
	}

	return UpdateMenu{
		Buttons:    buttons,
		Direction:  "down",
		ShowActive: true,
		X:          0,
		XAnchor:    "left",
		Y:          y,
		YAnchor:    "top",
	}
}
