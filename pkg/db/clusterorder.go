package db

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"strconv"
)

// SpeciesCluster identifies one cluster of one species in the homologous
// cluster ordering shared by the cross-species plots.
type SpeciesCluster struct {
	Species string
	Cluster int
}

// ReadOrthologClusterOrder parses mm_hs_homologous_cluster.txt into the
// ordered, deduplicated list of (species, cluster) pairs. Mouse and human
// clusters interleave in file order.
func (m *MethDB) ReadOrthologClusterOrder() ([]SpeciesCluster, error) {

	fpath := path.Join(m.DataDir, "mm_hs_homologous_cluster.txt")
	fp, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("open homologous cluster file: %w", err)
	}
	defer fp.Close()

	reader := csv.NewReader(fp)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse homologous cluster file: %w", err)
	}
	if len(records) < 1 {
		return nil, nil
	}

	mouseCol, humanCol := -1, -1
	for i, name := range records[0] {
		switch name {
		case "Mouse Cluster":
			mouseCol = i
		case "Human Cluster":
			humanCol = i
		}
	}
	if mouseCol < 0 || humanCol < 0 {
		return nil, fmt.Errorf("homologous cluster file is missing expected columns")
	}

	seen := make(map[SpeciesCluster]struct{})
	var clusters []SpeciesCluster

	appendOnce := func(sc SpeciesCluster) {
		if _, ok := seen[sc]; ok {
			return
		}
		seen[sc] = struct{}{}
		clusters = append(clusters, sc)
	}

	for _, row := range records[1:] {
		if mouseCol >= len(row) || humanCol >= len(row) {
			continue
		}
		mmu, err := strconv.Atoi(row[mouseCol])
		if err != nil {
			continue
		}
		hsa, err := strconv.Atoi(row[humanCol])
		if err != nil {
			continue
		}
		appendOnce(SpeciesCluster{Species: "mmu", Cluster: mmu})
		appendOnce(SpeciesCluster{Species: "hsa", Cluster: hsa})
	}

	return clusters, nil
}
