package model

import (
	"math"
	"sort"
	"strconv"

	"github.com/scmviz/methylome/logger"
	"github.com/scmviz/methylome/pkg/db"
	"go.uber.org/zap"
)

// outlierQuantile trims the top percentile of normalized values when the
// client asks to hide outliers.
const outlierQuantile = 0.99

// ClusterPoints loads the 2D tSNE placement of every cell of a species.
// Nil when the species or its points file is missing.
func ClusterPoints(mdb *db.MethDB, species string) ([]db.CellPoint, error) {

	if !mdb.SpeciesExists(species) {
		return nil, nil
	}

	return cached(memoKey(mdb.DataDir, "points2d", species), func() ([]db.CellPoint, error) {
		points, err := mdb.ReadClusterPoints(species)
		if err != nil {
			logger.Error("Failed to load tsne data", zap.String("species", species), zap.Error(err))
			return nil, nil
		}
		return points, nil
	})
}

// ClusterPoints3D loads the 3D tSNE placement, when the species has one.
func ClusterPoints3D(mdb *db.MethDB, species string) ([]db.CellPoint, error) {

	if !mdb.SpeciesExists(species) {
		return nil, nil
	}

	return cached(memoKey(mdb.DataDir, "points3d", species), func() ([]db.CellPoint, error) {
		points, err := mdb.ReadClusterPoints3D(species)
		if err != nil {
			logger.Error("Failed to load 3D tsne data", zap.String("species", species), zap.Error(err))
			return nil, nil
		}
		return points, nil
	})
}

// GeneMethylation joins a gene's methylation values onto the cluster
// points of a species. Cells without a measurement carry NaN. When
// keepOutliers is false, rows at or above the 99th percentile of the
// normalized level are dropped (NaN rows go with them). Points come back
// sorted by cluster order.
func GeneMethylation(mdb *db.MethDB, species, mtype, gene string, keepOutliers bool) ([]MethPoint, error) {

	if !mdb.SpeciesExists(species) || !mdb.GeneDataExists(species, mtype, gene) {
		return nil, nil
	}

	key := memoKey(mdb.DataDir, "gene_meth", species, mtype, gene, strconv.FormatBool(keepOutliers))
	return cached(key, func() ([]MethPoint, error) {

		records, err := mdb.ReadGeneMethylation(species, mtype, gene)
		if err != nil {
			return nil, err
		}

		points, err := ClusterPoints(mdb, species)
		if err != nil || points == nil {
			return nil, err
		}

		merged := joinMethylation(points, records)

		if !keepOutliers {
			normalized := make([]float64, len(merged))
			for i, p := range merged {
				normalized[i] = p.Normalized
			}
			cutoff := Quantile(normalized, outlierQuantile)

			kept := merged[:0]
			for _, p := range merged {
				if p.Normalized < cutoff { // NaN fails the comparison and drops too
					kept = append(kept, p)
				}
			}
			merged = kept
		}

		sortByClusterOrder(merged)
		return merged, nil
	})
}

// MultiGeneMethylation averages the methylation of several genes per cell,
// then joins the averages onto the cluster points.
func MultiGeneMethylation(mdb *db.MethDB, species, mtype string, genes []string) ([]MethPoint, error) {

	if !mdb.SpeciesExists(species) {
		return nil, nil
	}

	type accum struct {
		original   float64
		normalized float64
		n          int
	}
	bySample := make(map[string]*accum)

	for _, gene := range genes {
		if !mdb.GeneDataExists(species, mtype, gene) {
			continue
		}
		records, err := mdb.ReadGeneMethylation(species, mtype, gene)
		if err != nil {
			logger.Error("Could not load methylation data",
				zap.String("species", species), zap.String("gene", gene), zap.Error(err))
			continue
		}
		for _, rec := range records {
			a, ok := bySample[rec.Sample]
			if !ok {
				a = &accum{}
				bySample[rec.Sample] = a
			}
			a.original += rec.Original
			a.normalized += rec.Normalized
			a.n++
		}
	}

	points, err := ClusterPoints(mdb, species)
	if err != nil || points == nil {
		return nil, err
	}

	merged := make([]MethPoint, 0, len(points))
	for _, p := range points {
		mp := MethPoint{CellPoint: p, Original: math.NaN(), Normalized: math.NaN()}
		if a, ok := bySample[p.Sample]; ok && a.n > 0 {
			mp.Original = a.original / float64(a.n)
			mp.Normalized = a.normalized / float64(a.n)
		}
		merged = append(merged, mp)
	}

	sortByClusterOrder(merged)
	return merged, nil
}

// MedianClusterMeth reduces joined points to one median per cluster, in
// cluster order. clusterKey selects the grouping label: "cluster_name" for
// within-species plots, "cluster_ortholog" for the cross-species ones.
func MedianClusterMeth(points []MethPoint, level, clusterKey string) ClusterMedians {

	var order []string
	groups := make(map[string][]float64)

	for _, p := range points {
		key := p.ClusterName
		if clusterKey == "cluster_ortholog" {
			key = p.ClusterOrtholog
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p.ValueAt(level))
	}

	medians := make([]float64, len(order))
	for i, key := range order {
		medians[i] = median(groups[key])
	}

	return ClusterMedians{Clusters: order, Medians: medians}
}

func joinMethylation(points []db.CellPoint, records []db.MethRecord) []MethPoint {

	bySample := make(map[string]db.MethRecord, len(records))
	for _, rec := range records {
		bySample[rec.Sample] = rec
	}

	merged := make([]MethPoint, 0, len(points))
	for _, p := range points {
		mp := MethPoint{CellPoint: p, Original: math.NaN(), Normalized: math.NaN()}
		if rec, ok := bySample[p.Sample]; ok {
			mp.Original = rec.Original
			mp.Normalized = rec.Normalized
		}
		merged = append(merged, mp)
	}
	return merged
}

func sortByClusterOrder(points []MethPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].ClusterOrdered < points[j].ClusterOrdered
	})
}
