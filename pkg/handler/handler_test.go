package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scmviz/methylome/logger"
	methdb "github.com/scmviz/methylome/pkg/db"
	"github.com/scmviz/methylome/pkg/model"
	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(zapcore.ErrorLevel); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// writeFixtureData builds a small but complete data directory: one mouse
// ensemble with tSNE points, mCH data for one gene and its name database.
func writeFixtureData(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()

	ensDir := filepath.Join(dataDir, "ensembles", "mouse_test")
	mchDir := filepath.Join(ensDir, "datasets", "ds1", "mch")
	if err := os.MkdirAll(mchDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	points := "samp\ttsne_x\ttsne_y\tcluster_name\tcluster_ordered\tcluster_ortholog\n" +
		"cellA\t1\t2\tcluster_1\t1\tmmu_1\n" +
		"cellB\t3\t4\tcluster_1\t1\tmmu_1\n" +
		"cellC\t5\t6\tcluster_2\t2\tmmu_2\n"
	if err := os.WriteFile(filepath.Join(ensDir, "tsne_points_ordered.tsv"), []byte(points), 0o644); err != nil {
		t.Fatalf("write points: %v", err)
	}

	meth := "ENSMUSG01.1\tcellA\t0.5\t1.5\n" +
		"ENSMUSG01.1\tcellB\t0.7\t1.9\n" +
		"ENSMUSG01.1\tcellC\t0.6\t1.7\n"
	if err := os.WriteFile(filepath.Join(mchDir, "ENSMUSG01.1_mch.txt"), []byte(meth), 0o644); err != nil {
		t.Fatalf("write methylation: %v", err)
	}

	namesPath := filepath.Join(ensDir, "species", "gene_names.sqlite3")
	if err := os.MkdirAll(filepath.Dir(namesPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	conn, err := sql.Open("sqlite", namesPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()
	for _, stmt := range []string{
		`CREATE TABLE gene_names (geneID TEXT, geneName TEXT)`,
		`INSERT INTO gene_names VALUES ('ENSMUSG01.1', 'Gad1')`,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	return dataDir
}

func newTestContext(t *testing.T, dataDir string) *AppContext {
	t.Helper()
	mdb := methdb.NewMethDB(dataDir)
	t.Cleanup(func() {
		mdb.Close()
		model.ResetCache()
	})
	return &AppContext{DB: mdb}
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rr := httptest.NewRecorder()

	HealthCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp.Health != "ok" {
		t.Errorf("unexpected health: %q", resp.Health)
	}
}

func TestEnsembleListHandler(t *testing.T) {
	appctx := newTestContext(t, writeFixtureData(t))

	req := httptest.NewRequest(http.MethodGet, "/content/ensemble_list", nil)
	rr := httptest.NewRecorder()

	appctx.EnsembleListHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected one ensemble, got %v", resp.Data)
	}
	if resp.Data[0]["ensemble"] != "mouse_test" || resp.Data[0]["dataset_1"] != "ds1" {
		t.Errorf("unexpected ensemble entry: %v", resp.Data[0])
	}
}

func TestMetadataHandler(t *testing.T) {
	dataDir := t.TempDir()
	dsDir := filepath.Join(dataDir, "datasets", "groupA", "ds1")
	if err := os.MkdirAll(dsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	csv := "samp,layer\ncellA,L2/3\ncellB,L5\n"
	if err := os.WriteFile(filepath.Join(dsDir, "metadata.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	appctx := newTestContext(t, dataDir)

	req := httptest.NewRequest(http.MethodGet, "/content/metadata/ds1", nil)
	req.SetPathValue("dataset", "ds1")
	rr := httptest.NewRecorder()

	appctx.MetadataHandler(rr, req)

	var resp struct {
		Data []map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[0]["samp"] != "cellA" || resp.Data[1]["layer"] != "L5" {
		t.Errorf("unexpected metadata rows: %v", resp.Data)
	}
}

func TestMetadataHandlerUnknownDataset(t *testing.T) {
	appctx := newTestContext(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/content/metadata/nope", nil)
	req.SetPathValue("dataset", "nope")
	rr := httptest.NewRecorder()

	appctx.MetadataHandler(rr, req)

	if !strings.Contains(rr.Body.String(), `"data":null`) {
		t.Errorf("missing dataset should yield null data: %s", rr.Body.String())
	}
}

func TestGeneNamesHandler(t *testing.T) {
	appctx := newTestContext(t, writeFixtureData(t))

	req := httptest.NewRequest(http.MethodGet, "/gene/names/mouse_test?q=Gad", nil)
	req.SetPathValue("species", "mouse_test")
	rr := httptest.NewRecorder()

	appctx.GeneNamesHandler(rr, req)

	var genes []model.GeneInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &genes); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(genes) != 1 || genes[0].GeneName != "Gad1" {
		t.Errorf("unexpected genes: %v", genes)
	}
}

func TestMethylationScatterHandler(t *testing.T) {
	appctx := newTestContext(t, writeFixtureData(t))

	req := httptest.NewRequest(http.MethodGet,
		"/plot/scatter/mouse_test?q=ENSMUSG01&mtype=mch&level=normalized", nil)
	req.SetPathValue("species", "mouse_test")
	rr := httptest.NewRecorder()

	appctx.MethylationScatterHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	html := rr.Body.String()
	if !strings.Contains(html, "Plotly.newPlot") {
		t.Errorf("missing plotly call: %s", html)
	}
	if !strings.Contains(html, "Gene body mCH: Gad1") {
		t.Errorf("missing plot title: %s", html)
	}
}

func TestMethylationScatterHandlerUnknownGene(t *testing.T) {
	appctx := newTestContext(t, writeFixtureData(t))

	// No ortholog exists for this ID, so conversion leaves nothing to
	// plot. It must not fall through to another gene's data files.
	req := httptest.NewRequest(http.MethodGet, "/plot/scatter/mouse_test?q=ENSG99", nil)
	req.SetPathValue("species", "mouse_test")
	rr := httptest.NewRecorder()

	appctx.MethylationScatterHandler(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for an unconvertible gene, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "Plotly.newPlot") {
		t.Errorf("unconvertible gene must not render a plot")
	}
}

func TestMethylationScatterHandlerNoGene(t *testing.T) {
	appctx := newTestContext(t, writeFixtureData(t))

	req := httptest.NewRequest(http.MethodGet, "/plot/scatter/mouse_test", nil)
	req.SetPathValue("species", "mouse_test")
	rr := httptest.NewRecorder()

	appctx.MethylationScatterHandler(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 without a gene, got %d", rr.Code)
	}
}

func TestMethylationBoxHandler(t *testing.T) {
	appctx := newTestContext(t, writeFixtureData(t))

	req := httptest.NewRequest(http.MethodGet,
		"/plot/box/mouse_test?q=ENSMUSG01.1&mtype=mch&level=original&outliers=true", nil)
	req.SetPathValue("species", "mouse_test")
	rr := httptest.NewRecorder()

	appctx.MethylationBoxHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"box"`) {
		t.Errorf("missing box traces: %s", rr.Body.String())
	}
}

func TestClusterPlotHandler(t *testing.T) {
	appctx := newTestContext(t, writeFixtureData(t))

	req := httptest.NewRequest(http.MethodGet, "/plot/cluster/mouse_test", nil)
	req.SetPathValue("species", "mouse_test")
	rr := httptest.NewRecorder()

	appctx.ClusterPlotHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if _, ok := resp["traces_2d"]; !ok {
		t.Errorf("missing traces_2d: %s", rr.Body.String())
	}
	if _, ok := resp["layout2d"]; !ok {
		t.Errorf("missing layout2d: %s", rr.Body.String())
	}
	if _, ok := resp["traces_3d"]; ok {
		t.Errorf("no 3D file in fixture, traces_3d should be omitted")
	}
}

func TestClusterColorsHandler(t *testing.T) {
	appctx := newTestContext(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/plot/cluster_colors?num=5", nil)
	rr := httptest.NewRecorder()

	appctx.ClusterColorsHandler(rr, req)

	var resp struct {
		Colors []string `json:"colors"`
		Num    int      `json:"num"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp.Num != 5 || len(resp.Colors) != 5 {
		t.Errorf("unexpected color payload: %+v", resp)
	}
}

func TestMethylationHeatmapHandler(t *testing.T) {
	appctx := newTestContext(t, writeFixtureData(t))

	req := httptest.NewRequest(http.MethodGet,
		"/plot/heatmap/mouse_test?q=ENSMUSG01&mtype=mch&level=normalized", nil)
	req.SetPathValue("species", "mouse_test")
	rr := httptest.NewRecorder()

	appctx.MethylationHeatmapHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	html := rr.Body.String()
	if !strings.Contains(html, `"heatmap"`) {
		t.Errorf("missing heatmap trace: %s", html)
	}
	if !strings.Contains(html, "Gene body mCH by cluster: Gad1") {
		t.Errorf("missing title: %s", html)
	}
}
