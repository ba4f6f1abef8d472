// Handlers for gene name search, orthologs, modules and correlations

package handler

import (
	"net/http"

	"github.com/scmviz/methylome/logger"
	"github.com/scmviz/methylome/pkg/model"
	"go.uber.org/zap"
)

// GeneNamesHandler searches genes by name prefix for the autocomplete
// box.
func (appctx *AppContext) GeneNamesHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")
	query := r.URL.Query().Get("q")

	genes, err := model.SearchGeneNames(appctx.DB, species, query)
	if err != nil {
		logger.Error("Gene name search failed",
			zap.String("species", species), zap.Error(err))
	}

	writeJSON(w, genes)
}

// GeneByIDHandler resolves one Ensembl ID to its display name.
func (appctx *AppContext) GeneByIDHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")
	query := r.URL.Query().Get("q")

	gene, err := model.GeneIDToName(appctx.DB, species, query)
	if err != nil {
		logger.Error("Gene ID lookup failed",
			zap.String("species", species), zap.String("gene", query), zap.Error(err))
	}

	writeJSON(w, gene)
}

type moduleEntry struct {
	Module string `json:"module"`
}

// GeneModulesHandler lists the known gene modules.
func (appctx *AppContext) GeneModulesHandler(w http.ResponseWriter, r *http.Request) {

	modules, err := model.AllGeneModules(appctx.DB)
	if err != nil {
		logger.Error("Gene module listing failed", zap.Error(err))
	}

	entries := make([]moduleEntry, 0, len(modules))
	for _, m := range modules {
		entries = append(entries, moduleEntry{Module: m})
	}
	writeJSON(w, entries)
}

// GenesOfModuleHandler lists the genes of one module for the species
// being viewed.
func (appctx *AppContext) GenesOfModuleHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")
	module := r.URL.Query().Get("module")

	genes, err := model.GenesOfModule(appctx.DB, species, module)
	if err != nil {
		logger.Error("Module gene listing failed",
			zap.String("module", module), zap.Error(err))
	}

	writeJSON(w, genes)
}

// CorrGenesHandler lists the genes most correlated with the given gene.
func (appctx *AppContext) CorrGenesHandler(w http.ResponseWriter, r *http.Request) {

	species := r.PathValue("species")
	gene := r.PathValue("gene")

	corr, err := model.TopCorrelatedGenes(appctx.DB, species, gene)
	if err != nil {
		logger.Error("Correlated gene lookup failed",
			zap.String("species", species), zap.String("gene", gene), zap.Error(err))
	}

	writeJSON(w, corr)
}

// OrthologsHandler maps gene IDs between mouse and human. Either
// mmu_gid or hsa_gid may be given.
func (appctx *AppContext) OrthologsHandler(w http.ResponseWriter, r *http.Request) {

	mmuGID := r.URL.Query().Get("mmu_gid")
	hsaGID := r.URL.Query().Get("hsa_gid")

	ortholog, err := model.FindOrthologs(appctx.DB, mmuGID, hsaGID)
	if err != nil {
		logger.Error("Ortholog lookup failed",
			zap.String("mmu_gid", mmuGID), zap.String("hsa_gid", hsaGID), zap.Error(err))
	}

	writeJSON(w, ortholog)
}
