package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/scmviz/methylome/logger"
	"github.com/scmviz/methylome/pkg/db"
	"go.uber.org/zap"
)

const geneSearchLimit = 50

// SearchGeneNames matches gene names of a species by prefix. An unknown
// species or a lookup failure yields an empty list, not an error, so the
// search box degrades quietly.
func SearchGeneNames(mdb *db.MethDB, species, query string) ([]GeneInfo, error) {

	if !mdb.SpeciesExists(species) {
		return []GeneInfo{}, nil
	}

	return cached(memoKey(mdb.DataDir, "gene_names", species, query), func() ([]GeneInfo, error) {

		conn, err := mdb.GeneNamesDB(species)
		if err != nil {
			logger.Error("Could not open gene_names.sqlite3", zap.String("species", species), zap.Error(err))
			return []GeneInfo{}, nil
		}

		rows, err := conn.QueryContext(context.TODO(),
			`SELECT geneID, geneName FROM gene_names WHERE geneName LIKE ? LIMIT ?`,
			query+"%", geneSearchLimit)
		if err != nil {
			logger.Error("Gene name query failed", zap.String("species", species), zap.Error(err))
			return []GeneInfo{}, nil
		}
		defer rows.Close()

		genes := make([]GeneInfo, 0, geneSearchLimit)
		for rows.Next() {
			var g GeneInfo
			if err := rows.Scan(&g.GeneID, &g.GeneName); err != nil {
				return nil, fmt.Errorf("scan gene name row: %w", err)
			}
			genes = append(genes, g)
		}
		return genes, rows.Err()
	})
}

// GeneIDToName resolves a gene ID prefix to its record.
func GeneIDToName(mdb *db.MethDB, species, query string) (GeneInfo, error) {

	if !mdb.SpeciesExists(species) || query == "" {
		return GeneInfo{}, nil
	}

	return cached(memoKey(mdb.DataDir, "gene_id", species, query), func() (GeneInfo, error) {

		conn, err := mdb.GeneNamesDB(species)
		if err != nil {
			return GeneInfo{}, fmt.Errorf("open gene names for %s: %w", species, err)
		}

		var g GeneInfo
		err = conn.QueryRowContext(context.TODO(),
			`SELECT geneID, geneName FROM gene_names WHERE geneID LIKE ? LIMIT 1`,
			query+"%").Scan(&g.GeneID, &g.GeneName)
		if err != nil {
			logger.Error("Could not resolve gene ID", zap.String("species", species),
				zap.String("query", query), zap.Error(err))
			return GeneInfo{}, nil
		}
		return g, nil
	})
}

// FindOrthologs looks up the mouse/human ortholog pair. Either the mouse or
// the human gene ID should be given.
func FindOrthologs(mdb *db.MethDB, mmuGID, hsaGID string) (Ortholog, error) {

	if mmuGID == "" && hsaGID == "" { // Should have at least one.
		return Ortholog{}, nil
	}

	conn, err := mdb.OrthologsDB()
	if err != nil {
		logger.Error("Could not load orthologs.sqlite3", zap.Error(err))
		return Ortholog{}, nil
	}

	queryKey := "mmu_gID"
	queryValue := mmuGID
	if mmuGID == "" {
		queryKey = "hsa_gID"
		queryValue = hsaGID
	}

	var ortho Ortholog
	err = conn.QueryRowContext(context.TODO(),
		fmt.Sprintf(`SELECT mmu_gID, hsa_gID FROM orthologs WHERE %s = ?`, queryKey),
		queryValue).Scan(&ortho.MmuGID, &ortho.HsaGID)
	if err != nil {
		// No pair known for this gene.
		return Ortholog{}, nil
	}
	return ortho, nil
}

// ConvertGeneID maps a cached gene ID onto the species being viewed. A human
// ID shown on a mouse ensemble (or vice versa) is swapped through the
// ortholog table. ENSMUSG is the Ensembl prefix for mouse genes.
func ConvertGeneID(mdb *db.MethDB, species, geneID string) string {

	if IsMouse(species) {
		if !strings.Contains(geneID, "ENSMUSG") {
			ortho, _ := FindOrthologs(mdb, "", geneID)
			return ortho.MmuGID
		}
		return geneID
	}

	if strings.Contains(geneID, "ENSMUSG") {
		ortho, _ := FindOrthologs(mdb, geneID, "")
		return ortho.HsaGID
	}
	return geneID
}

// TopCorrelatedGenes returns up to 50 genes most correlated with the query
// gene, ranked by descending correlation.
func TopCorrelatedGenes(mdb *db.MethDB, species, geneID string) ([]CorrGene, error) {

	conn, err := mdb.CorrGenesDB(species)
	if err != nil {
		logger.Error("Could not load top_corr_genes.sqlite3", zap.String("species", species), zap.Error(err))
		return []CorrGene{}, nil
	}

	rows, err := conn.QueryContext(context.TODO(),
		`SELECT Gene2, Correlation FROM corr_genes WHERE Gene1 LIKE ? ORDER BY Correlation DESC LIMIT 50`,
		geneID+"%")
	if err != nil {
		logger.Error("Correlated gene query failed", zap.String("species", species), zap.Error(err))
		return []CorrGene{}, nil
	}
	defer rows.Close()

	var table []CorrGene
	rank := 1
	for rows.Next() {
		var gene2 string
		var corr float64
		if err := rows.Scan(&gene2, &corr); err != nil {
			return nil, fmt.Errorf("scan corr gene row: %w", err)
		}

		info, err := GeneIDToName(mdb, species, gene2)
		if err != nil {
			return nil, err
		}

		table = append(table, CorrGene{
			Rank:     rank,
			GeneID:   info.GeneID,
			GeneName: info.GeneName,
			Corr:     corr,
		})
		rank++
	}
	return table, rows.Err()
}
