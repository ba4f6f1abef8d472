package model

import (
	"strings"

	"github.com/scmviz/methylome/pkg/db"
)

// MethPoint is one cell with its cluster placement and the methylation
// values of the queried gene. Values are NaN when the cell has no
// measurement for the gene.
type MethPoint struct {
	db.CellPoint
	Original   float64
	Normalized float64
}

// ValueAt picks the methylation level requested by the client. Anything
// other than "normalized" falls back to the original values.
func (p MethPoint) ValueAt(level string) float64 {
	if level == "normalized" {
		return p.Normalized
	}
	return p.Original
}

type GeneInfo struct {
	GeneID   string `json:"geneID"`
	GeneName string `json:"geneName"`
}

type Ortholog struct {
	MmuGID string `json:"mmu_gID"`
	HsaGID string `json:"hsa_gID"`
}

type CorrGene struct {
	Rank     int     `json:"Rank"`
	GeneID   string  `json:"geneID"`
	GeneName string  `json:"geneName"`
	Corr     float64 `json:"Corr"`
}

type ModuleGene struct {
	Module   string `json:"module"`
	GeneName string `json:"geneName"`
	GeneID   string `json:"geneID"`
}

// ClusterMedians is the per-cluster median methylation of one gene, in
// cluster order.
type ClusterMedians struct {
	Clusters []string
	Medians  []float64
}

// HeatmapMatrix is genes x clusters of median methylation for heatmap
// rendering.
type HeatmapMatrix struct {
	Genes    []string
	Clusters []string
	Z        [][]float64
}

// IsMouse reports whether the ensemble holds mouse data. Mouse ensembles
// get special cluster handling (outlier clusters 17..22).
func IsMouse(species string) bool {
	return strings.Contains(species, "mmu") || strings.Contains(species, "mouse")
}
