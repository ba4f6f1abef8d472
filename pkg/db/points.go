package db

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/scmviz/methylome/internal/util"
)

// CellPoint is one row of a tsne_points_ordered file. The 3D file carries
// tsne_1..tsne_3 in addition to the 2D coordinates. The biosample and
// annotation columns only exist for some ensembles.
type CellPoint struct {
	Sample          string
	TSNEX           float64
	TSNEY           float64
	TSNE1           float64
	TSNE2           float64
	TSNE3           float64
	ClusterLabel    string
	ClusterName     string
	ClusterOrdered  int
	ClusterOrtholog string

	Biosample                int
	BiosampleName            string
	Layer                    string
	ClusterAnnotation        string
	ClusterAnnotationOrdered int

	HasBiosample  bool
	HasAnnotation bool
}

func (m *MethDB) points2DPath(species string) string {
	return path.Join(m.EnsembleDir(species), "tsne_points_ordered.tsv")
}

func (m *MethDB) points3DPath(species string) string {
	return path.Join(m.EnsembleDir(species), "tsne_points_ordered_3D.tsv")
}

// Has3DPoints reports whether 3D tSNE coordinates exist for the species.
func (m *MethDB) Has3DPoints(species string) bool {
	return util.FileExists(m.points3DPath(species))
}

// ReadClusterPoints loads the ordered 2D tSNE coordinates of every cell.
func (m *MethDB) ReadClusterPoints(species string) ([]CellPoint, error) {
	return readPointsFile(m.points2DPath(species), false)
}

// ReadClusterPoints3D loads the 3D coordinates. The file also carries the
// 2D coordinates so the same rows can back both plot variants.
func (m *MethDB) ReadClusterPoints3D(species string) ([]CellPoint, error) {
	return readPointsFile(m.points3DPath(species), true)
}

func readPointsFile(fpath string, want3D bool) ([]CellPoint, error) {

	fp, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("open tsne points: %w", err)
	}
	defer fp.Close()

	reader := csv.NewReader(fp)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse tsne points %s: %w", fpath, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("tsne points file is empty: %s", fpath)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}

	getStr := func(row []string, name string) (string, bool) {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}
	getFloat := func(row []string, name string) float64 {
		s, ok := getStr(row, name)
		if !ok {
			return 0
		}
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	getInt := func(row []string, name string) int {
		s, ok := getStr(row, name)
		if !ok {
			return 0
		}
		v, _ := strconv.Atoi(s)
		return v
	}

	_, hasBiosample := col["biosample"]
	_, hasAnnotation := col["cluster_annotation"]

	points := make([]CellPoint, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) == 0 {
			continue
		}

		p := CellPoint{
			TSNEX:          getFloat(row, "tsne_x"),
			TSNEY:          getFloat(row, "tsne_y"),
			ClusterOrdered: getInt(row, "cluster_ordered"),
			HasBiosample:   hasBiosample,
			HasAnnotation:  hasAnnotation,
		}
		p.Sample, _ = getStr(row, "samp")
		p.ClusterLabel, _ = getStr(row, "cluster_label")
		p.ClusterName, _ = getStr(row, "cluster_name")
		p.ClusterOrtholog, _ = getStr(row, "cluster_ortholog")
		p.Layer, _ = getStr(row, "layer")

		if want3D {
			p.TSNE1 = getFloat(row, "tsne_1")
			p.TSNE2 = getFloat(row, "tsne_2")
			p.TSNE3 = getFloat(row, "tsne_3")
		}
		if hasBiosample {
			p.Biosample = getInt(row, "biosample")
			p.BiosampleName, _ = getStr(row, "biosample_name")
		}
		if hasAnnotation {
			p.ClusterAnnotation, _ = getStr(row, "cluster_annotation")
			p.ClusterAnnotationOrdered = getInt(row, "cluster_annotation_ordered")
		}

		points = append(points, p)
	}

	return points, nil
}
