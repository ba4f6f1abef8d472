package model

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/scmviz/methylome/pkg/db"
	_ "modernc.org/sqlite"
)

func execAll(t *testing.T, dbpath string, stmts []string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(dbpath), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", dbpath, err)
	}
	conn, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatalf("open %s: %v", dbpath, err)
	}
	defer conn.Close()

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

func writeGeneNamesDB(t *testing.T, dataDir, species string) {
	t.Helper()
	execAll(t, filepath.Join(dataDir, "ensembles", species, "species", "gene_names.sqlite3"), []string{
		`CREATE TABLE gene_names (geneID TEXT, geneName TEXT, chr TEXT, start INTEGER, end INTEGER)`,
		`INSERT INTO gene_names VALUES ('ENSMUSG01.1', 'Gad1', 'chr2', 1, 2)`,
		`INSERT INTO gene_names VALUES ('ENSMUSG02.1', 'Gad2', 'chr2', 3, 4)`,
		`INSERT INTO gene_names VALUES ('ENSMUSG03.1', 'Mef2c', 'chr13', 5, 6)`,
	})
}

func writeOrthologsDB(t *testing.T, dataDir string) {
	t.Helper()
	execAll(t, filepath.Join(dataDir, "datasets", "orthologs.sqlite3"), []string{
		`CREATE TABLE orthologs (mmu_gID TEXT, hsa_gID TEXT)`,
		`INSERT INTO orthologs VALUES ('ENSMUSG01.1', 'ENSG01.1')`,
	})
}

func TestSearchGeneNames(t *testing.T) {
	dataDir := t.TempDir()
	writeGeneNamesDB(t, dataDir, "mouse_test")
	mdb := db.NewMethDB(dataDir)
	defer mdb.Close()

	genes, err := SearchGeneNames(mdb, "mouse_test", "Gad")
	if err != nil {
		t.Fatalf("SearchGeneNames: %v", err)
	}
	if len(genes) != 2 {
		t.Fatalf("expected 2 matches for Gad, got %d", len(genes))
	}
	if genes[0].GeneName != "Gad1" || genes[0].GeneID != "ENSMUSG01.1" {
		t.Errorf("unexpected first match: %+v", genes[0])
	}
}

func TestSearchGeneNamesUnknownSpecies(t *testing.T) {
	mdb := db.NewMethDB(t.TempDir())
	defer mdb.Close()

	genes, err := SearchGeneNames(mdb, "nope", "Gad")
	if err != nil {
		t.Fatalf("SearchGeneNames: %v", err)
	}
	if len(genes) != 0 {
		t.Errorf("unknown species should match nothing, got %v", genes)
	}
}

func TestGeneIDToName(t *testing.T) {
	dataDir := t.TempDir()
	writeGeneNamesDB(t, dataDir, "mouse_test")
	mdb := db.NewMethDB(dataDir)
	defer mdb.Close()

	// Version suffixes differ between annotation releases, the lookup is
	// prefix-based.
	info, err := GeneIDToName(mdb, "mouse_test", "ENSMUSG03")
	if err != nil {
		t.Fatalf("GeneIDToName: %v", err)
	}
	if info.GeneName != "Mef2c" {
		t.Errorf("expected Mef2c, got %+v", info)
	}

	missing, err := GeneIDToName(mdb, "mouse_test", "ENSMUSG99")
	if err != nil {
		t.Fatalf("GeneIDToName: %v", err)
	}
	if missing.GeneID != "" {
		t.Errorf("missing gene should yield zero record, got %+v", missing)
	}
}

func TestFindOrthologs(t *testing.T) {
	dataDir := t.TempDir()
	writeOrthologsDB(t, dataDir)
	mdb := db.NewMethDB(dataDir)
	defer mdb.Close()

	byMouse, err := FindOrthologs(mdb, "ENSMUSG01.1", "")
	if err != nil {
		t.Fatalf("FindOrthologs: %v", err)
	}
	if byMouse.HsaGID != "ENSG01.1" {
		t.Errorf("expected human ortholog ENSG01.1, got %+v", byMouse)
	}

	byHuman, err := FindOrthologs(mdb, "", "ENSG01.1")
	if err != nil {
		t.Fatalf("FindOrthologs: %v", err)
	}
	if byHuman.MmuGID != "ENSMUSG01.1" {
		t.Errorf("expected mouse ortholog ENSMUSG01.1, got %+v", byHuman)
	}

	none, err := FindOrthologs(mdb, "", "")
	if err != nil || none.MmuGID != "" || none.HsaGID != "" {
		t.Errorf("empty query should yield zero record, got %+v, %v", none, err)
	}
}

func TestConvertGeneID(t *testing.T) {
	dataDir := t.TempDir()
	writeOrthologsDB(t, dataDir)
	mdb := db.NewMethDB(dataDir)
	defer mdb.Close()

	// A mouse ID viewed on a mouse ensemble passes through.
	if got := ConvertGeneID(mdb, "mouse_test", "ENSMUSG01.1"); got != "ENSMUSG01.1" {
		t.Errorf("mouse ID on mouse ensemble changed: %s", got)
	}
	// A human ID viewed on a mouse ensemble swaps through the ortholog
	// table, and vice versa.
	if got := ConvertGeneID(mdb, "mouse_test", "ENSG01.1"); got != "ENSMUSG01.1" {
		t.Errorf("human to mouse conversion gave %s", got)
	}
	if got := ConvertGeneID(mdb, "human_test", "ENSMUSG01.1"); got != "ENSG01.1" {
		t.Errorf("mouse to human conversion gave %s", got)
	}
	if got := ConvertGeneID(mdb, "human_test", "ENSG01.1"); got != "ENSG01.1" {
		t.Errorf("human ID on human ensemble changed: %s", got)
	}
}

func TestTopCorrelatedGenes(t *testing.T) {
	dataDir := t.TempDir()
	writeGeneNamesDB(t, dataDir, "mouse_test")
	execAll(t, filepath.Join(dataDir, "ensembles", "mouse_test", "top_corr_genes.sqlite3"), []string{
		`CREATE TABLE corr_genes (Gene1 TEXT, Gene2 TEXT, Correlation REAL)`,
		`INSERT INTO corr_genes VALUES ('ENSMUSG01.1', 'ENSMUSG02.1', 0.6)`,
		`INSERT INTO corr_genes VALUES ('ENSMUSG01.1', 'ENSMUSG03.1', 0.9)`,
	})
	mdb := db.NewMethDB(dataDir)
	defer mdb.Close()

	table, err := TopCorrelatedGenes(mdb, "mouse_test", "ENSMUSG01")
	if err != nil {
		t.Fatalf("TopCorrelatedGenes: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 correlated genes, got %d", len(table))
	}
	if table[0].GeneName != "Mef2c" || table[0].Corr != 0.9 || table[0].Rank != 1 {
		t.Errorf("expected Mef2c ranked first, got %+v", table[0])
	}
	if table[1].Rank != 2 {
		t.Errorf("expected rank 2 second, got %+v", table[1])
	}
}
