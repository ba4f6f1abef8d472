// Handlers for the plotly figure endpoints

package handler

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/scmviz/methylome/logger"
	methdb "github.com/scmviz/methylome/pkg/db"
	"github.com/scmviz/methylome/pkg/handler/request"
	"github.com/scmviz/methylome/pkg/model"
	"github.com/scmviz/methylome/pkg/render"
	"go.uber.org/zap"
)

// Ensembles used for the cross-species comparison plots unless the
// client names others.
const (
	defaultMouseEnsemble = "mouse_published"
	defaultHumanEnsemble = "human_hv1_published"
)

func parseFloatParam(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseBoolParam(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	switch raw {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return fallback
	}
}

func failPlot(w http.ResponseWriter, err error, fields ...zap.Field) {
	logger.Error("Failed to generate plot", append(fields, zap.Error(err))...)
	http.Error(w, "Failed to generate plot", http.StatusInternalServerError)
}

// ClusterPlotHandler returns the tSNE cluster figure as raw JSON. The
// cluster viewer keeps the trace set client-side so colors can be
// restyled without replotting.
func (appctx *AppContext) ClusterPlotHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")

	grouping := r.URL.Query().Get("grouping")
	switch grouping {
	case "biosample", "sample":
		grouping = render.GroupBiosample
	case "cluster_annotation_ordered", "annotation":
		grouping = render.GroupAnnotationOrdered
	default:
		grouping = render.GroupClusterOrdered
	}

	points2D, err := model.ClusterPoints(appctx.DB, species)
	if err != nil {
		failPlot(w, err, zap.String("species", species))
		return
	}

	var points3D []methdb.CellPoint
	if appctx.DB.Has3DPoints(species) {
		points3D, err = model.ClusterPoints3D(appctx.DB, species)
		if err != nil {
			failPlot(w, err, zap.String("species", species))
			return
		}
	}

	figs, err := render.BuildClusterFigures(points2D, points3D, species, grouping)
	if err != nil {
		failPlot(w, err, zap.String("species", species))
		return
	}

	writeJSON(w, figs)
}

// ClusterColorsHandler returns a fresh random color assignment for the
// cluster viewer's randomize button.
func (appctx *AppContext) ClusterColorsHandler(w http.ResponseWriter, r *http.Request) {

	num := int(parseFloatParam(r, "num", 1))
	if num < 1 {
		num = 1
	}

	writeJSON(w, map[string]any{
		"colors": model.GenerateClusterColors(num),
		"num":    num,
	})
}

// parseMethPlot collects the query parameters shared by the methylation
// plot endpoints. Gene IDs are ortholog-converted onto the species being
// viewed.
func (appctx *AppContext) parseMethPlot(r *http.Request, species string) request.MethPlotRequest {

	var genes []string
	for _, gene := range strings.Fields(r.URL.Query().Get("q")) {
		// A gene with no ortholog converts to "", drop it.
		if converted := model.ConvertGeneID(appctx.DB, species, gene); converted != "" {
			genes = append(genes, converted)
		}
	}

	return request.MethPlotRequest{
		Species:      species,
		MethType:     request.NewMethType(r.URL.Query().Get("mtype")),
		Genes:        genes,
		Level:        request.NewLevel(r.URL.Query().Get("level")),
		PtileStart:   parseFloatParam(r, "ptile_start", 0.05),
		PtileEnd:     parseFloatParam(r, "ptile_end", 0.95),
		Outliers:     parseBoolParam(r, "outliers", false),
		NormalizeRow: parseBoolParam(r, "normalize_row", false),
	}
}

// scatterData resolves the query into methylation points, a display name
// and a plot title shared by the interactive and PNG scatter endpoints.
func (appctx *AppContext) scatterData(r *http.Request, species string) ([]model.MethPoint, render.ScatterParams, error) {

	req := appctx.parseMethPlot(r, species)
	if len(req.Genes) == 0 {
		return nil, render.ScatterParams{}, model.ErrFailToGraph
	}

	var points []model.MethPoint
	var err error
	var title string

	if len(req.Genes) == 1 {
		points, err = model.GeneMethylation(appctx.DB, species, req.MethType.String(), req.Genes[0], true)
		if err != nil {
			return nil, render.ScatterParams{}, err
		}
		info, _ := model.GeneIDToName(appctx.DB, species, req.Genes[0])
		title = "Gene body " + req.MethType.Title() + ": " + info.GeneName
	} else {
		points, err = model.MultiGeneMethylation(appctx.DB, species, req.MethType.String(), req.Genes)
		if err != nil {
			return nil, render.ScatterParams{}, err
		}
		names := make([]string, 0, len(req.Genes))
		for _, gene := range req.Genes {
			info, _ := model.GeneIDToName(appctx.DB, species, gene)
			names = append(names, info.GeneName)
		}
		title = "Avg. Gene body " + req.MethType.Title() + ": " + strings.Join(names, "+")
	}

	params := render.ScatterParams{
		Title:      title,
		TitleMType: req.MethType.Title(),
		Level:      req.Level.String(),
		PtileStart: req.PtileStart,
		PtileEnd:   req.PtileEnd,
	}
	return points, params, nil
}

// MethylationScatterHandler draws methylation over the tSNE layout.
func (appctx *AppContext) MethylationScatterHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")

	points, params, err := appctx.scatterData(r, species)
	if err != nil {
		failPlot(w, err, zap.String("species", species))
		return
	}

	if err := render.RenderMethylationScatter(w, points, params); err != nil {
		failPlot(w, err, zap.String("species", species))
	}
}

// MethylationScatterPNGHandler serves the same scatter as a static PNG.
func (appctx *AppContext) MethylationScatterPNGHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")

	points, params, err := appctx.scatterData(r, species)
	if err != nil {
		failPlot(w, err, zap.String("species", species))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := render.RenderScatterPNG(w, points, params); err != nil {
		failPlot(w, err, zap.String("species", species))
	}
}

// MethylationBoxHandler draws one box per cluster for a single gene.
func (appctx *AppContext) MethylationBoxHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")
	req := appctx.parseMethPlot(r, species)

	var gene string
	if len(req.Genes) > 0 {
		gene = req.Genes[0]
	}

	points, err := model.GeneMethylation(appctx.DB, species, req.MethType.String(), gene, req.Outliers)
	if err != nil {
		failPlot(w, err, zap.String("species", species), zap.String("gene", gene))
		return
	}

	info, _ := model.GeneIDToName(appctx.DB, species, gene)

	err = render.RenderMethylationBox(w, points, info.GeneName, req.MethType.Title(),
		req.Level.String(), model.IsMouse(species))
	if err != nil {
		failPlot(w, err, zap.String("species", species), zap.String("gene", gene))
	}
}

// CombinedBoxHandler draws mouse and human boxes grouped by homologous
// cluster.
func (appctx *AppContext) CombinedBoxHandler(w http.ResponseWriter, r *http.Request) {

	mouseEnsemble := r.URL.Query().Get("mmu_species")
	if mouseEnsemble == "" {
		mouseEnsemble = defaultMouseEnsemble
	}
	humanEnsemble := r.URL.Query().Get("hsa_species")
	if humanEnsemble == "" {
		humanEnsemble = defaultHumanEnsemble
	}

	req := request.OrthologPlotRequest{
		MmuGene:  model.ConvertGeneID(appctx.DB, mouseEnsemble, r.URL.Query().Get("mmu_gid")),
		HsaGene:  model.ConvertGeneID(appctx.DB, humanEnsemble, r.URL.Query().Get("hsa_gid")),
		MethType: request.NewMethType(r.URL.Query().Get("mtype")),
		Level:    request.NewLevel(r.URL.Query().Get("level")),
		Outliers: parseBoolParam(r, "outliers", false),
	}

	pointsMmu, err := model.GeneMethylation(appctx.DB, mouseEnsemble, req.MethType.String(), req.MmuGene, req.Outliers)
	if err != nil {
		failPlot(w, err, zap.String("gene", req.MmuGene))
		return
	}
	pointsHsa, err := model.GeneMethylation(appctx.DB, humanEnsemble, req.MethType.String(), req.HsaGene, req.Outliers)
	if err != nil {
		failPlot(w, err, zap.String("gene", req.HsaGene))
		return
	}

	// The homologous cluster table orders the x axis, without it the
	// grouped boxes are meaningless.
	clusterOrder, err := appctx.DB.ReadOrthologClusterOrder()
	if err != nil || len(clusterOrder) == 0 {
		failPlot(w, model.ErrFailToGraph)
		return
	}

	info, _ := model.GeneIDToName(appctx.DB, mouseEnsemble, req.MmuGene)

	err = render.RenderCombinedBox(w, pointsMmu, pointsHsa, info.GeneName, req.MethType.Title(), req.Level.String())
	if err != nil {
		failPlot(w, err, zap.String("gene", req.MmuGene))
	}
}

// MethylationHeatmapHandler draws per-cluster medians for several genes.
func (appctx *AppContext) MethylationHeatmapHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")
	req := appctx.parseMethPlot(r, species)

	var rows []model.GeneMedians
	var names []string
	for _, gene := range req.Genes {
		info, _ := model.GeneIDToName(appctx.DB, species, gene)

		points, err := model.GeneMethylation(appctx.DB, species, req.MethType.String(), gene, true)
		if err != nil {
			failPlot(w, err, zap.String("species", species), zap.String("gene", gene))
			return
		}
		rows = append(rows, model.GeneMedians{
			GeneName: info.GeneName,
			Medians:  model.MedianClusterMeth(points, req.Level.String(), "cluster_name"),
		})
		names = append(names, info.GeneName)
	}

	matrix := model.BuildHeatmapMatrix(rows, req.NormalizeRow)

	err := render.RenderMethylationHeatmap(w, matrix, render.HeatmapParams{
		Title:        "Gene body " + req.MethType.Title() + " by cluster: " + strings.Join(names, "+"),
		TitleMType:   req.MethType.Title(),
		Level:        req.Level.String(),
		NormalizeRow: req.NormalizeRow,
	})
	if err != nil {
		failPlot(w, err, zap.String("species", species))
	}
}

// orthologMedians collects per-cluster medians for one species side of
// the combined heatmap, keyed by the homologous cluster label.
func (appctx *AppContext) orthologMedians(species, mtype, level, geneID string) (model.GeneMedians, error) {

	info, _ := model.GeneIDToName(appctx.DB, species, geneID)

	points, err := model.GeneMethylation(appctx.DB, species, mtype, geneID, true)
	if err != nil {
		return model.GeneMedians{}, err
	}
	return model.GeneMedians{
		GeneName: info.GeneName,
		Medians:  model.MedianClusterMeth(points, level, "cluster_ortholog"),
	}, nil
}

// CombinedHeatmapHandler draws the mouse and human heatmaps side by side
// for the orthologs of the queried genes. Genes with no ortholog render
// as an all-missing row labelled *N/A.
func (appctx *AppContext) CombinedHeatmapHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")
	req := appctx.parseMethPlot(r, species)

	var hsaRows, mmuRows []model.GeneMedians

	for _, gene := range req.Genes {
		if model.IsMouse(species) {
			geneMmu := gene
			row, err := appctx.orthologMedians(defaultMouseEnsemble, req.MethType.String(), req.Level.String(), geneMmu)
			if err != nil {
				failPlot(w, err, zap.String("gene", geneMmu))
				return
			}
			mmuRows = append(mmuRows, row)

			ortholog, _ := model.FindOrthologs(appctx.DB, geneMmu, "")
			if ortholog.HsaGID == "" {
				hsaRows = append(hsaRows, model.GeneMedians{
					GeneName: "*N/A " + strings.ToUpper(row.GeneName),
				})
				continue
			}
			hsaRow, err := appctx.orthologMedians(defaultHumanEnsemble, req.MethType.String(), req.Level.String(), ortholog.HsaGID)
			if err != nil {
				failPlot(w, err, zap.String("gene", ortholog.HsaGID))
				return
			}
			hsaRows = append(hsaRows, hsaRow)
		} else {
			geneHsa := gene
			row, err := appctx.orthologMedians(defaultHumanEnsemble, req.MethType.String(), req.Level.String(), geneHsa)
			if err != nil {
				failPlot(w, err, zap.String("gene", geneHsa))
				return
			}
			hsaRows = append(hsaRows, row)

			ortholog, _ := model.FindOrthologs(appctx.DB, "", geneHsa)
			if ortholog.MmuGID == "" {
				mmuRows = append(mmuRows, model.GeneMedians{
					GeneName: "*N/A " + titleCase(row.GeneName),
				})
				continue
			}
			mmuRow, err := appctx.orthologMedians(defaultMouseEnsemble, req.MethType.String(), req.Level.String(), ortholog.MmuGID)
			if err != nil {
				failPlot(w, err, zap.String("gene", ortholog.MmuGID))
				return
			}
			mmuRows = append(mmuRows, mmuRow)
		}
	}

	hsaMatrix, mmuMatrix := model.BuildCombinedHeatmap(hsaRows, mmuRows, req.NormalizeRow)

	err := render.RenderCombinedHeatmap(w, hsaMatrix, mmuMatrix, render.HeatmapParams{
		Title:        "Orthologous gene body " + req.MethType.Title() + " by cluster",
		TitleMType:   req.MethType.Title(),
		Level:        req.Level.String(),
		NormalizeRow: req.NormalizeRow,
	})
	if err != nil {
		failPlot(w, err, zap.String("species", species))
	}
}

// titleCase maps HGNC-style names to mouse-style: CACNA2D2 -> Cacna2d2.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	runes := []rune(lower)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
