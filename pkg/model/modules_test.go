package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scmviz/methylome/pkg/db"
)

func writeGeneModules(t *testing.T, dataDir string) {
	t.Helper()

	content := "module\tmmu_geneName\tmmu_gID\thsa_geneName\thsa_gID\n" +
		"modA\tGad1\tENSMUSG01\tGAD1\tENSG01\n" +
		"modA\tGad2\tENSMUSG02\tGAD2\tENSG02\n" +
		"modB\tMef2c\tENSMUSG03\tMEF2C\tENSG03\n"
	if err := os.WriteFile(filepath.Join(dataDir, "gene_modules.tsv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write gene modules: %v", err)
	}
}

func TestAllGeneModules(t *testing.T) {
	dataDir := t.TempDir()
	writeGeneModules(t, dataDir)
	mdb := db.NewMethDB(dataDir)

	modules, err := AllGeneModules(mdb)
	if err != nil {
		t.Fatalf("AllGeneModules: %v", err)
	}
	if len(modules) != 2 || modules[0] != "modA" || modules[1] != "modB" {
		t.Errorf("unexpected modules: %v", modules)
	}
}

func TestGenesOfModule(t *testing.T) {
	dataDir := t.TempDir()
	writeGeneModules(t, dataDir)
	mdb := db.NewMethDB(dataDir)

	mouseGenes, err := GenesOfModule(mdb, "mouse_test", "modA")
	if err != nil {
		t.Fatalf("GenesOfModule: %v", err)
	}
	if len(mouseGenes) != 2 || mouseGenes[0].GeneName != "Gad1" || mouseGenes[0].GeneID != "ENSMUSG01" {
		t.Errorf("unexpected mouse genes: %+v", mouseGenes)
	}

	humanGenes, err := GenesOfModule(mdb, "human_test", "modB")
	if err != nil {
		t.Fatalf("GenesOfModule: %v", err)
	}
	if len(humanGenes) != 1 || humanGenes[0].GeneName != "MEF2C" || humanGenes[0].GeneID != "ENSG03" {
		t.Errorf("unexpected human genes: %+v", humanGenes)
	}
}
