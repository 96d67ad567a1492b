package model

import "fmt"

// Bounds of the user-adjustable parameters exposed to the presentation layer.
const (
	MinHorizonDays     = 1
	MaxHorizonDays     = 30
	DefaultHorizonDays = 14

	MinCapacityKWh     = 1.0
	MaxCapacityKWh     = 20.0
	DefaultCapacityKWh = 5.0
)

// RunParams is the interactive parameter set of one run.
type RunParams struct {
	Days            int     `json:"days"`
	CapacityKWh     float64 `json:"capacity_kwh"`
	InitialLevelKWh float64 `json:"initial_level_kwh"`
	Seed            uint64  `json:"seed"`
	// ZoomDays limits the displayed rows; 0 shows the whole horizon.
	ZoomDays int `json:"zoom_days,omitempty"`
}

func DefaultRunParams() RunParams {
	return RunParams{
		Days:        DefaultHorizonDays,
		CapacityKWh: DefaultCapacityKWh,
		Seed:        1,
	}
}

// Validate enforces the slider bounds on top of the battery checks.
func (p RunParams) Validate() error {
	if p.Days < MinHorizonDays || p.Days > MaxHorizonDays {
		return fmt.Errorf("days must be within [%d, %d] (got %d): %w", MinHorizonDays, MaxHorizonDays, p.Days, ErrInvalidInput)
	}
	if !(p.CapacityKWh >= MinCapacityKWh && p.CapacityKWh <= MaxCapacityKWh) {
		return fmt.Errorf("capacity_kwh must be within [%v, %v] (got %v): %w", MinCapacityKWh, MaxCapacityKWh, p.CapacityKWh, ErrInvalidInput)
	}
	if p.ZoomDays < 0 || p.ZoomDays > p.Days {
		return fmt.Errorf("zoom_days must be within [0, %d] (got %d): %w", p.Days, p.ZoomDays, ErrInvalidInput)
	}
	_, err := NewBattery(BatteryParams{CapacityKWh: p.CapacityKWh}, p.InitialLevelKWh)
	return err
}
