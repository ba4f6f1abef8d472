package db

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"
)

// ModuleRow is one row of gene_modules.tsv. Both species columns are kept,
// the model layer picks the pair matching the species being viewed.
type ModuleRow struct {
	Module      string
	MmuGeneName string
	MmuGID      string
	HsaGeneName string
	HsaGID      string
}

// ReadGeneModules loads gene_modules.tsv from the data dir root.
func (m *MethDB) ReadGeneModules() ([]ModuleRow, error) {

	fpath := path.Join(m.DataDir, "gene_modules.tsv")
	fp, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("open gene modules: %w", err)
	}
	defer fp.Close()

	reader := csv.NewReader(fp)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse gene modules: %w", err)
	}
	if len(records) < 1 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}

	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rows := make([]ModuleRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, ModuleRow{
			Module:      get(record, "module"),
			MmuGeneName: get(record, "mmu_geneName"),
			MmuGID:      get(record, "mmu_gID"),
			HsaGeneName: get(record, "hsa_geneName"),
			HsaGID:      get(record, "hsa_gID"),
		})
	}

	return rows, nil
}
