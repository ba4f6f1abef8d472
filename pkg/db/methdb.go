package db

// File and SQLite access for the methylation data directory.
//
// Layout under DataDir:
//   datasets/<group>/<dataset>/metadata.csv
//   datasets/orthologs.sqlite3
//   ensembles/<species>/tsne_points_ordered.tsv
//   ensembles/<species>/tsne_points_ordered_3D.tsv
//   ensembles/<species>/datasets/<dataset>/<mch|mcg>/<geneID>*
//   ensembles/<species>/species/gene_names.sqlite3
//   ensembles/<species>/top_corr_genes.sqlite3
//   gene_modules.tsv
//   mm_hs_homologous_cluster.txt

import (
	"database/sql"
	"fmt"
	"path"
	"sync"

	"github.com/scmviz/methylome/internal/util"
)

type MethDB struct {
	DataDir string

	mu        sync.Mutex
	orthoDB   *sql.DB
	geneNames map[string]*sql.DB
	corrGenes map[string]*sql.DB
}

func NewMethDB(dataDir string) *MethDB {
	// Check for db schema and version here later
	return &MethDB{
		DataDir:   dataDir,
		geneNames: make(map[string]*sql.DB),
		corrGenes: make(map[string]*sql.DB),
	}
}

func (m *MethDB) EnsemblesDir() string {
	return path.Join(m.DataDir, "ensembles")
}

func (m *MethDB) EnsembleDir(species string) string {
	return path.Join(m.DataDir, "ensembles", species)
}

func (m *MethDB) DatasetsDir(species string) string {
	return path.Join(m.EnsembleDir(species), "datasets")
}

func (m *MethDB) MetadataRoot() string {
	return path.Join(m.DataDir, "datasets")
}

func (m *MethDB) SpeciesExists(species string) bool {
	return util.DirExists(m.EnsembleDir(species))
}

// OrthologsDB opens datasets/orthologs.sqlite3 once and keeps the handle.
func (m *MethDB) OrthologsDB() (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.orthoDB != nil {
		return m.orthoDB, nil
	}

	dbpath := path.Join(m.DataDir, "datasets", "orthologs.sqlite3")
	conn, err := openSQLite(dbpath)
	if err != nil {
		return nil, err
	}
	m.orthoDB = conn
	return conn, nil
}

// GeneNamesDB opens the per-species gene name lookup database.
func (m *MethDB) GeneNamesDB(species string) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, ok := m.geneNames[species]; ok {
		return conn, nil
	}

	dbpath := path.Join(m.EnsembleDir(species), "species", "gene_names.sqlite3")
	conn, err := openSQLite(dbpath)
	if err != nil {
		return nil, err
	}
	m.geneNames[species] = conn
	return conn, nil
}

// CorrGenesDB opens the per-species correlated-gene database.
func (m *MethDB) CorrGenesDB(species string) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, ok := m.corrGenes[species]; ok {
		return conn, nil
	}

	dbpath := path.Join(m.EnsembleDir(species), "top_corr_genes.sqlite3")
	conn, err := openSQLite(dbpath)
	if err != nil {
		return nil, err
	}
	m.corrGenes[species] = conn
	return conn, nil
}

func (m *MethDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	if m.orthoDB != nil {
		firstErr = m.orthoDB.Close()
		m.orthoDB = nil
	}
	for k, conn := range m.geneNames {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.geneNames, k)
	}
	for k, conn := range m.corrGenes {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.corrGenes, k)
	}
	return firstErr
}

func openSQLite(dbpath string) (*sql.DB, error) {
	if !util.FileExists(dbpath) {
		return nil, fmt.Errorf("sqlite database not found: %s", dbpath)
	}
	conn, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbpath, err)
	}
	return conn, nil
}
