package models

// SimulationRequest represents the request body for running a site simulation.
// Zero values fall back to the defaults (14 days, 5 kWh, seed 1).
type SimulationRequest struct {
	Days        int     `json:"days,omitempty"`
	CapacityKWh float64 `json:"capacity_kwh,omitempty"`
	// InitialLevelKWh nil keeps the preset level (or an empty battery).
	InitialLevelKWh *float64 `json:"initial_level_kwh,omitempty"`

	Seed     *uint64 `json:"seed,omitempty"`
	ZoomDays int     `json:"zoom_days,omitempty"`
	// BatteryID selects a preset from the battery directory; explicit fields override it.
	BatteryID string            `json:"battery_id,omitempty"`
	Options   SimulationOptions `json:"options,omitempty"`
}

// SimulationOptions contains optional output parameters
type SimulationOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
	IncludeSeries bool `json:"include_series,omitempty"` // default: false
}

// CompareRequest runs several battery variations against one generated site.
type CompareRequest struct {
	Days       int                `json:"days,omitempty"`
	Seed       *uint64            `json:"seed,omitempty"`
	Variations []VariationRequest `json:"variations" binding:"required,min=1,dive"`
}

// VariationRequest defines a variation to test
type VariationRequest struct {
	Name            string   `json:"name" binding:"required"`
	BatteryID       string   `json:"battery_id,omitempty"`
	CapacityKWh     float64  `json:"capacity_kwh,omitempty"`
	InitialLevelKWh *float64 `json:"initial_level_kwh,omitempty"`
}

// SweepRequest runs one variation per capacity and ranks them.
type SweepRequest struct {
	Days            int       `json:"days,omitempty"`
	Seed            *uint64   `json:"seed,omitempty"`
	Capacities      []float64 `json:"capacities_kwh" binding:"required,min=1"`
	InitialLevelKWh float64   `json:"initial_level_kwh,omitempty"`
}

// LedgerQuery are the query parameters of the stored ledger endpoints.
type LedgerQuery struct {
	ZoomDays int `form:"zoom_days" binding:"min=0"`
}
