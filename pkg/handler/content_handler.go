// Handlers for dataset and ensemble metadata listings

package handler

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/scmviz/methylome/internal/util"
	"github.com/scmviz/methylome/logger"
	"go.uber.org/zap"
)

type DataResponse struct {
	Data any `json:"data"`
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// readMetadataCSV reads a metadata.csv into one map per row keyed by the
// header line.
func readMetadataCSV(fpath string) ([]map[string]string, error) {

	f, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MetadataHandler returns the per-cell metadata table of one dataset.
// Datasets live one level below their group directory, so every group is
// searched.
func (appctx *AppContext) MetadataHandler(w http.ResponseWriter, r *http.Request) {

	dataset := r.PathValue("dataset")

	root := appctx.DB.MetadataRoot()
	groups, err := os.ReadDir(root)
	if err != nil {
		logger.Warn("No dataset directory", zap.String("root", root))
		writeJSON(w, DataResponse{Data: nil})
		return
	}

	for _, group := range groups {
		if !group.IsDir() {
			continue
		}
		fpath := filepath.Join(root, group.Name(), dataset, "metadata.csv")
		if !util.FileExists(fpath) {
			continue
		}
		rows, err := readMetadataCSV(fpath)
		if err != nil {
			logger.Error("Failed to read metadata",
				zap.String("dataset", dataset), zap.Error(err))
			break
		}
		writeJSON(w, DataResponse{Data: rows})
		return
	}

	writeJSON(w, DataResponse{Data: nil})
}

// EnsembleListHandler lists every ensemble and the datasets it was built
// from.
func (appctx *AppContext) EnsembleListHandler(w http.ResponseWriter, r *http.Request) {

	ensembles, err := os.ReadDir(appctx.DB.EnsemblesDir())
	if err != nil {
		logger.Warn("No ensemble directory", zap.String("root", appctx.DB.EnsemblesDir()))
		writeJSON(w, DataResponse{Data: nil})
		return
	}

	list := make([]map[string]any, 0, len(ensembles))
	for _, ens := range ensembles {
		if !ens.IsDir() {
			continue
		}

		var datasets []string
		entries, err := os.ReadDir(appctx.DB.DatasetsDir(ens.Name()))
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					datasets = append(datasets, e.Name())
				}
			}
		}
		sort.Strings(datasets)

		row := map[string]any{
			"ensemble": ens.Name(),
			"datasets": strings.Join(datasets, "\n"),
		}
		for i, ds := range datasets {
			row["dataset_"+strconv.Itoa(i+1)] = ds
		}
		list = append(list, row)
	}

	writeJSON(w, DataResponse{Data: list})
}
