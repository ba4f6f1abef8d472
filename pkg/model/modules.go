package model

import (
	"github.com/scmviz/methylome/logger"
	"github.com/scmviz/methylome/pkg/db"
	"go.uber.org/zap"
)

// AllGeneModules lists module names for the module selector, deduplicating
// consecutive rows of gene_modules.tsv.
func AllGeneModules(mdb *db.MethDB) ([]string, error) {

	return cached(memoKey(mdb.DataDir, "gene_modules"), func() ([]string, error) {

		rows, err := mdb.ReadGeneModules()
		if err != nil {
			logger.Error("Could not load gene_modules.tsv", zap.Error(err))
			return []string{}, nil
		}

		var modules []string
		last := ""
		for i, row := range rows {
			if i == 0 || row.Module != last {
				modules = append(modules, row.Module)
				last = row.Module
			}
		}
		return modules, nil
	})
}

// GenesOfModule lists the genes of a module with the name/ID pair of the
// species being viewed.
func GenesOfModule(mdb *db.MethDB, species, module string) ([]ModuleGene, error) {

	return cached(memoKey(mdb.DataDir, "module_genes", species, module), func() ([]ModuleGene, error) {

		rows, err := mdb.ReadGeneModules()
		if err != nil {
			logger.Error("Could not load gene_modules.tsv", zap.Error(err))
			return []ModuleGene{}, nil
		}

		mouse := IsMouse(species)
		var genes []ModuleGene
		for _, row := range rows {
			if row.Module != module {
				continue
			}
			g := ModuleGene{Module: row.Module}
			if mouse {
				g.GeneName = row.MmuGeneName
				g.GeneID = row.MmuGID
			} else {
				g.GeneName = row.HsaGeneName
				g.GeneID = row.HsaGID
			}
			genes = append(genes, g)
		}
		return genes, nil
	})
}
