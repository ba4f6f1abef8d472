package main

import (
	"mime"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/scmviz/methylome/logger"
	mydb "github.com/scmviz/methylome/pkg/db"
	"github.com/scmviz/methylome/pkg/handler"
	"github.com/scmviz/methylome/pkg/middle"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "modernc.org/sqlite"
)

var (
	methylome_data string
)

func main() {

	// Establish logger
	VERSION := "0.0.2"
	LOG_LEVEL := zapcore.InfoLevel

	if err := logger.InitLogger(LOG_LEVEL); err != nil {
		panic(err)
	}

	// Try load env
	dotenvErr := godotenv.Load()

	if dotenvErr != nil {
		logger.Warn("No .env found, using local environment")
	}

	defer logger.Sync() // Make sure that the buffered is flushed.

	methylome_data = os.Getenv("METHYLOME_DATA")

	if methylome_data == "" {
		logger.Warn("No local environment (METHYLOME_DATA), using default value (./data)")
		methylome_data = "./data"
	}

	port := os.Getenv("METHYLOME_PORT")
	if port == "" {
		port = "8080"
	}

	mdb := mydb.NewMethDB(methylome_data)
	defer mdb.Close()

	appctx := &handler.AppContext{
		DB: mdb,
	}

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Serving data from", zap.String("DATA_DIR", methylome_data))

	mux := NewRouter(appctx)

	// Apply middleware
	mwlogger := middle.CreateMiddlewareLogger(LOG_LEVEL)
	wrapped := middle.RequestIDMiddleware(mwlogger)(middle.LoggingMiddleware(mwlogger)(mux))

	logger.Info("Server starting on :" + port + "...")
	httpErr := http.ListenAndServe("0.0.0.0:"+port, wrapped)
	if httpErr != nil {
		logger.Error("Error starting server:", zap.String("error message", httpErr.Error()))
	}
}

// Move to router.go in the next iteration
func NewRouter(appctx *handler.AppContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Dataset / ensemble metadata
	mux.HandleFunc("GET /content/metadata/{dataset}", appctx.MetadataHandler)
	mux.HandleFunc("GET /content/ensemble_list", appctx.EnsembleListHandler)

	// Gene lookups
	mux.HandleFunc("GET /gene/names/{species}", appctx.GeneNamesHandler)
	mux.HandleFunc("GET /gene/id/{species}", appctx.GeneByIDHandler)
	mux.HandleFunc("GET /gene/modules", appctx.GeneModulesHandler)
	mux.HandleFunc("GET /gene/modules/{species}", appctx.GenesOfModuleHandler)
	mux.HandleFunc("GET /gene/corr/{species}/{gene}", appctx.CorrGenesHandler)
	mux.HandleFunc("GET /gene/orthologs", appctx.OrthologsHandler)

	// Plot fragments
	mux.HandleFunc("GET /plot/cluster/{species}", appctx.ClusterPlotHandler)
	mux.HandleFunc("GET /plot/cluster_colors", appctx.ClusterColorsHandler)
	mux.HandleFunc("GET /plot/scatter/{species}", appctx.MethylationScatterHandler)
	mux.HandleFunc("GET /plot/scatter/{species}/png", appctx.MethylationScatterPNGHandler)
	mux.HandleFunc("GET /plot/box/{species}", appctx.MethylationBoxHandler)
	mux.HandleFunc("GET /plot/box_combined", appctx.CombinedBoxHandler)
	mux.HandleFunc("GET /plot/heatmap/{species}", appctx.MethylationHeatmapHandler)
	mux.HandleFunc("GET /plot/heatmap_combined/{species}", appctx.CombinedHeatmapHandler)

	// API routes
	mux.HandleFunc("GET /api/v1/health", handler.HealthCheck)

	// Static files
	setupStaticFiles(mux)

	return mux
}

// Manually add static for all route that use this
func setupStaticFiles(mux *http.ServeMux) {
	_ = mime.AddExtensionType(".js", "text/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	fs := http.FileServer(http.Dir("./static/"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
