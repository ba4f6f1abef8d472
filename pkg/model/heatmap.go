package model

import "math"

// GeneMedians pairs a display gene name with its per-cluster medians.
type GeneMedians struct {
	GeneName string
	Medians  ClusterMedians
}

// BuildHeatmapMatrix aligns per-gene cluster medians into a genes x
// clusters matrix. Cluster order comes from the first gene; genes missing
// a cluster get NaN there. normalizeRow rescales each gene row to [0, 1]
// by min-max.
func BuildHeatmapMatrix(rows []GeneMedians, normalizeRow bool) HeatmapMatrix {

	if len(rows) == 0 {
		return HeatmapMatrix{}
	}

	clusters := rows[0].Medians.Clusters
	matrix := HeatmapMatrix{
		Genes:    make([]string, len(rows)),
		Clusters: clusters,
		Z:        make([][]float64, len(rows)),
	}

	for i, row := range rows {
		matrix.Genes[i] = row.GeneName
		matrix.Z[i] = alignRow(row.Medians, clusters)
		if normalizeRow {
			minMaxNormalize(matrix.Z[i])
		}
	}
	return matrix
}

// BuildCombinedHeatmap aligns human and mouse gene rows onto one shared
// cluster axis (outer join on the ortholog cluster label, empty labels
// dropped). Normalization happens across the combined axis so both
// subplots stay on one colorscale.
func BuildCombinedHeatmap(hsaRows, mmuRows []GeneMedians, normalizeRow bool) (hsa, mmu HeatmapMatrix) {

	var clusters []string
	seen := make(map[string]struct{})
	for _, rows := range [][]GeneMedians{hsaRows, mmuRows} {
		for _, row := range rows {
			for _, c := range row.Medians.Clusters {
				if c == "" {
					continue
				}
				if _, ok := seen[c]; !ok {
					seen[c] = struct{}{}
					clusters = append(clusters, c)
				}
			}
		}
	}

	build := func(rows []GeneMedians) HeatmapMatrix {
		matrix := HeatmapMatrix{
			Genes:    make([]string, len(rows)),
			Clusters: clusters,
			Z:        make([][]float64, len(rows)),
		}
		for i, row := range rows {
			matrix.Genes[i] = row.GeneName
			matrix.Z[i] = alignRow(row.Medians, clusters)
			if normalizeRow {
				minMaxNormalize(matrix.Z[i])
			}
		}
		return matrix
	}

	return build(hsaRows), build(mmuRows)
}

func alignRow(medians ClusterMedians, clusters []string) []float64 {

	byCluster := make(map[string]float64, len(medians.Clusters))
	for i, c := range medians.Clusters {
		byCluster[c] = medians.Medians[i]
	}

	row := make([]float64, len(clusters))
	for i, c := range clusters {
		if v, ok := byCluster[c]; ok {
			row[i] = v
		} else {
			row[i] = math.NaN()
		}
	}
	return row
}

func minMaxNormalize(row []float64) {

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range row {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		return
	}
	for i, v := range row {
		if !math.IsNaN(v) {
			row[i] = (v - lo) / (hi - lo)
		}
	}
}
