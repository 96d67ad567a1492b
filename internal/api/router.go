package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"site-ems/internal/api/handlers"
	"site-ems/internal/api/middleware"
	"site-ems/internal/export"
	"site-ems/internal/logger"
	"site-ems/internal/runstore"
	"site-ems/internal/scenario"
	"site-ems/internal/ws"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Runner      *scenario.Runner
	Store       *runstore.Store
	Exporter    export.Exporter
	BatteryDir  string
	StaticDir   string
	MaxParallel int
	// Gatherer backs the metrics endpoint; nil disables it.
	Gatherer    prometheus.Gatherer
	MetricsPath string
	Log         logger.Logger
}

// NewRouter wires middleware, API routes, the websocket and static files.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.Nop{}
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))

	batteryHandler := handlers.NewBatteryHandler(d.BatteryDir, d.Log)
	parameterHandler := handlers.NewParameterHandler()
	simulationHandler := handlers.NewSimulationHandler(d.Runner, d.Store, batteryHandler, d.Exporter, d.MaxParallel, d.Log)
	wsHandler := ws.NewHandler(ws.NewHub(d.Log), d.Runner, d.Log)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Gatherer != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	router.GET("/ws", gin.WrapH(wsHandler))

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/parameters", parameterHandler.ListParameters)
		api.GET("/batteries", batteryHandler.ListBatteries)

		api.POST("/simulations", simulationHandler.RunSimulation)
		api.GET("/simulations/:id/ledger", simulationHandler.GetLedger)
		api.GET("/simulations/:id/csv", simulationHandler.GetLedgerCSV)
		api.POST("/simulations/compare", simulationHandler.CompareSimulations)
		api.POST("/simulations/sweep", simulationHandler.SweepCapacities)
	}

	serveStatic(router, d.StaticDir, d.Log)
	return router
}

// serveStatic serves a built single page app from dir if it exists.
func serveStatic(router *gin.Engine, dir string, log logger.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	}
	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(dir); err != nil {
		log.Infof("static directory %s not found, skipping static file serving", dir)
		router.NoRoute(notFound)
		return
	}
	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))

	// Serve index.html for all non-API routes (SPA routing)
	index := filepath.Join(dir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(index)
	})
	log.Infof("serving static files from %s", dir)
}
