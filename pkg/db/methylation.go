package db

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MethRecord is one row of a per-gene methylation file. The files are
// headerless TSV: geneID, sample, original, normalized.
type MethRecord struct {
	GeneID     string
	Sample     string
	Original   float64
	Normalized float64
}

// geneFileGlobs returns the matching data files for a gene across every
// dataset directory of the species. Gene files are suffixed with the gene
// name, so the glob is prefix-based like the original data layout.
func (m *MethDB) geneFileGlobs(species, mtype, gene string) []string {

	// A failed ortholog conversion leaves an empty ID, and an empty
	// prefix would glob some other gene's file.
	if gene == "" {
		return nil
	}

	datasetsDir := m.DatasetsDir(species)

	entries, err := os.ReadDir(datasetsDir)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pattern := filepath.Join(datasetsDir, entry.Name(), mtype, gene+"*")
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		files = append(files, matches[0])
	}
	return files
}

// GeneDataExists reports whether any dataset of the species has data files
// for the gene in the requested methylation context.
func (m *MethDB) GeneDataExists(species, mtype, gene string) bool {
	return len(m.geneFileGlobs(species, mtype, gene)) > 0
}

// ReadGeneMethylation concatenates the methylation rows for a gene across
// all dataset directories of a species.
func (m *MethDB) ReadGeneMethylation(species, mtype, gene string) ([]MethRecord, error) {

	files := m.geneFileGlobs(species, mtype, gene)
	if len(files) == 0 {
		return nil, nil
	}

	var records []MethRecord
	for _, fpath := range files {
		rows, err := readMethFile(fpath)
		if err != nil {
			return nil, err
		}
		records = append(records, rows...)
	}
	return records, nil
}

func readMethFile(fpath string) ([]MethRecord, error) {

	fp, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("open methylation file: %w", err)
	}
	defer fp.Close()

	var records []MethRecord

	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("malformed methylation row in %s: %q", fpath, line)
		}

		original, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad original value in %s: %w", fpath, err)
		}
		normalized, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("bad normalized value in %s: %w", fpath, err)
		}

		records = append(records, MethRecord{
			GeneID:     fields[0],
			Sample:     fields[1],
			Original:   original,
			Normalized: normalized,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", fpath, err)
	}

	return records, nil
}
