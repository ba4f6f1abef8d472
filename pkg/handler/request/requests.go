package request

// Structure for scatter and heatmap queries
type MethPlotRequest struct {
	Species      string   `json:"species"`
	MethType     MethType `json:"meth_type"`
	Genes        []string `json:"genes"`       // Ensembl IDs, already ortholog-converted
	Level        Level    `json:"level"`       // Value column: original or normalized
	PtileStart   float64  `json:"ptile_start"` // Lower color percentile, [0, 1]
	PtileEnd     float64  `json:"ptile_end"`   // Upper color percentile, [0, 1]
	Outliers     bool     `json:"outliers"`    // Keep values above the 99th percentile
	NormalizeRow bool     `json:"normalize_row"`
}

// Structure for the cross-species comparison plots
type OrthologPlotRequest struct {
	MmuGene  string   `json:"mmu_gene"`
	HsaGene  string   `json:"hsa_gene"`
	MethType MethType `json:"meth_type"`
	Level    Level    `json:"level"`
	Outliers bool     `json:"outliers"`
}
