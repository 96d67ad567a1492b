package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"site-ems/internal/analysis"
	"site-ems/internal/api/models"
	"site-ems/internal/config"
	"site-ems/internal/export"
	"site-ems/internal/logger"
	"site-ems/internal/model"
	"site-ems/internal/runstore"
	"site-ems/internal/scenario"
	"site-ems/internal/simulation"

	"github.com/gin-gonic/gin"
)

// SimulationHandler handles simulation-related requests
type SimulationHandler struct {
	runner      *scenario.Runner
	store       *runstore.Store
	batteries   *BatteryHandler
	exporter    export.Exporter
	maxParallel int
	log         logger.Logger
}

// NewSimulationHandler creates a new simulation handler. A nil exporter disables export.
func NewSimulationHandler(runner *scenario.Runner, store *runstore.Store, batteries *BatteryHandler, exporter export.Exporter, maxParallel int, log logger.Logger) *SimulationHandler {
	if exporter == nil {
		exporter = export.NopExporter{}
	}
	return &SimulationHandler{
		runner:      runner,
		store:       store,
		batteries:   batteries,
		exporter:    exporter,
		maxParallel: maxParallel,
		log:         log,
	}
}

// RunSimulation handles POST /api/v1/simulations
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req models.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	override := config.BatteryOverride{
		CapacityKWh:     req.CapacityKWh,
		InitialLevelKWh: req.InitialLevelKWh,
	}
	var base config.BatteryConfig
	if req.BatteryID != "" {
		preset, ok := h.resolvePreset(c, req.BatteryID)
		if !ok {
			return
		}
		base = preset
	}
	battery := config.MergeBattery(base, override)

	params := model.DefaultRunParams()
	if req.Days != 0 {
		params.Days = req.Days
	}
	if battery.CapacityKWh != 0 {
		params.CapacityKWh = battery.CapacityKWh
	}
	params.InitialLevelKWh = battery.InitialLevelKWh
	if req.Seed != nil {
		params.Seed = *req.Seed
	}
	params.ZoomDays = req.ZoomDays

	status := "completed"
	run, ok := h.store.Lookup(params, battery.Name)
	if ok {
		status = "cached"
	} else {
		out, err := h.runner.Run(c.Request.Context(), params, battery.Name)
		if err != nil {
			writeRunError(c, err)
			return
		}
		run = h.store.Put(params, battery.Name, out.Result)
		h.export(run)
	}

	c.JSON(http.StatusOK, buildResponse(run, status, req.Options))
}

func (h *SimulationHandler) export(run *runstore.Run) {
	// Export is best effort; the run is already stored.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.exporter.ExportRun(ctx, run.ID, run.Battery, run.Result); err != nil {
		h.log.Warnf("export run %s: %v", run.ID, err)
	}
}

func buildResponse(run *runstore.Run, status string, opts models.SimulationOptions) models.SimulationResponse {
	resp := models.SimulationResponse{
		ID:      run.ID,
		Status:  status,
		Params:  run.Params,
		Battery: run.Battery,
		Summary: models.NewSummary(run.Result, true),
	}
	rows := run.Result.Zoom(run.Params.ZoomDays)
	if opts.IncludeSeries {
		resp.Series = models.NewSeries(rows)
	}
	if opts.IncludeLedger {
		resp.Ledger = models.NewLedger(rows)
	}
	return resp
}

// GetLedger handles GET /api/v1/simulations/:id/ledger
func (h *SimulationHandler) GetLedger(c *gin.Context) {
	run, zoom, ok := h.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.LedgerResponse{
		ID:         run.ID,
		TotalSteps: len(run.Result.Ledger),
		ZoomDays:   zoom,
		Ledger:     models.NewLedger(run.Result.Zoom(zoom)),
	})
}

// GetLedgerCSV handles GET /api/v1/simulations/:id/csv
func (h *SimulationHandler) GetLedgerCSV(c *gin.Context) {
	run, zoom, ok := h.lookupRun(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-%s.csv"`, run.ID))
	c.Status(http.StatusOK)
	if err := simulation.EncodeLedgerCSV(c.Writer, run.Result.Zoom(zoom)); err != nil {
		h.log.Errorf("write csv for run %s: %v", run.ID, err)
		_ = c.Error(err)
	}
}

func (h *SimulationHandler) lookupRun(c *gin.Context) (*runstore.Run, int, bool) {
	var q models.LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return nil, 0, false
	}
	id := c.Param("id")
	run, ok := h.store.Get(id)
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("simulation %q not found or expired", id))
		return nil, 0, false
	}
	return run, q.ZoomDays, true
}

// CompareSimulations handles POST /api/v1/simulations/compare
func (h *SimulationHandler) CompareSimulations(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	variations := make([]analysis.Variation, 0, len(req.Variations))
	for _, v := range req.Variations {
		override := config.BatteryOverride{Name: v.Name, CapacityKWh: v.CapacityKWh, InitialLevelKWh: v.InitialLevelKWh}
		var base config.BatteryConfig
		if v.BatteryID != "" {
			preset, ok := h.resolvePreset(c, v.BatteryID)
			if !ok {
				return
			}
			base = preset
		}
		battery := config.MergeBattery(base, override)
		if battery.CapacityKWh == 0 {
			battery.CapacityKWh = model.DefaultCapacityKWh
		}
		variations = append(variations, analysis.Variation{
			Name:            battery.Name,
			CapacityKWh:     battery.CapacityKWh,
			InitialLevelKWh: battery.InitialLevelKWh,
		})
	}

	params, series, ok := h.sharedSeries(c, req.Days, req.Seed)
	if !ok {
		return
	}
	cmp, err := analysis.Compare(c.Request.Context(), series, variations, h.maxParallel)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CompareResponse{
		Days:       params.Days,
		Seed:       params.Seed,
		Comparison: models.NewComparison(cmp),
	})
}

// SweepCapacities handles POST /api/v1/simulations/sweep
func (h *SimulationHandler) SweepCapacities(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	params, series, ok := h.sharedSeries(c, req.Days, req.Seed)
	if !ok {
		return
	}
	cmp, err := analysis.Sweep(c.Request.Context(), series, req.Capacities, req.InitialLevelKWh, h.maxParallel)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CompareResponse{
		Days:       params.Days,
		Seed:       params.Seed,
		Comparison: models.NewComparison(cmp),
	})
}

// sharedSeries generates the one site series every variation is evaluated against.
func (h *SimulationHandler) sharedSeries(c *gin.Context, days int, seed *uint64) (model.RunParams, model.Series, bool) {
	params := model.DefaultRunParams()
	if days != 0 {
		params.Days = days
	}
	if seed != nil {
		params.Seed = *seed
	}
	if err := params.Validate(); err != nil {
		writeRunError(c, err)
		return params, model.Series{}, false
	}
	series, err := h.runner.Series(params)
	if err != nil {
		writeRunError(c, err)
		return params, model.Series{}, false
	}
	return params, series, true
}

func (h *SimulationHandler) resolvePreset(c *gin.Context, id string) (config.BatteryConfig, bool) {
	preset, err := h.batteries.Resolve(id)
	if errors.Is(err, errPresetNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", err)
		return preset, false
	}
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return preset, false
	}
	return preset, true
}
