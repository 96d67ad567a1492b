package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"site-ems/internal/api/models"
	"site-ems/internal/config"
	"site-ems/internal/logger"

	"github.com/gin-gonic/gin"
)

// errPresetNotFound is returned when a battery_id has no preset file.
var errPresetNotFound = errors.New("battery preset not found")

// BatteryHandler handles battery-related requests
type BatteryHandler struct {
	batteryDir string
	log        logger.Logger
}

// NewBatteryHandler creates a new battery handler
func NewBatteryHandler(dir string, log logger.Logger) *BatteryHandler {
	// Convert to absolute path for reliability
	if absDir, err := filepath.Abs(dir); err == nil {
		dir = absDir
	}
	log.Infof("using battery directory: %s", dir)
	return &BatteryHandler{batteryDir: dir, log: log}
}

// ListBatteries handles GET /api/v1/batteries
func (h *BatteryHandler) ListBatteries(c *gin.Context) {
	batteries := []models.BatteryInfo{}

	presets, skipped, err := config.ListBatteryPresets(h.batteryDir)
	if err != nil {
		// A missing directory is not an error for the UI; it just has no presets.
		h.log.Warnf("read battery directory %s: %v", h.batteryDir, err)
		c.JSON(http.StatusOK, gin.H{"batteries": batteries})
		return
	}
	for path, err := range skipped {
		h.log.Warnf("skipping battery file %s: %v", path, err)
	}
	for _, p := range presets {
		batteries = append(batteries, models.BatteryInfo{
			ID:   p.ID,
			Name: p.Battery.Name,
			File: p.File,
			Specs: models.BatterySpecs{
				CapacityKWh:     p.Battery.CapacityKWh,
				InitialLevelKWh: p.Battery.InitialLevelKWh,
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{"batteries": batteries})
}

// Resolve loads a preset by ID.
func (h *BatteryHandler) Resolve(id string) (config.BatteryConfig, error) {
	path := config.PresetPath(h.batteryDir, id)
	b, err := config.LoadBatteryFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.BatteryConfig{}, fmt.Errorf("%w: %s", errPresetNotFound, id)
	}
	if err != nil {
		return config.BatteryConfig{}, err
	}
	if b.Name == "" {
		b.Name = id
	}
	return b, nil
}
