package models

import "site-ems/internal/model"

// Parameters lists the run parameters with their bounds and defaults.
func Parameters() []ParameterInfo {
	def := model.DefaultRunParams()
	return []ParameterInfo{
		{
			Name:        "days",
			Type:        "int",
			Description: "Simulation horizon in days",
			Min:         model.MinHorizonDays,
			Max:         model.MaxHorizonDays,
			Default:     def.Days,
		},
		{
			Name:        "capacity_kwh",
			Type:        "float",
			Description: "Battery capacity in kWh",
			Min:         model.MinCapacityKWh,
			Max:         model.MaxCapacityKWh,
			Default:     def.CapacityKWh,
		},
		{
			Name:        "initial_level_kwh",
			Type:        "float",
			Description: "Stored energy before the first step, within [0, capacity_kwh]",
			Min:         0.0,
			Default:     def.InitialLevelKWh,
		},
		{
			Name:        "zoom_days",
			Type:        "int",
			Description: "Number of leading days shown in the series; 0 shows the whole horizon",
			Min:         0,
			Max:         model.MaxHorizonDays,
			Default:     def.ZoomDays,
		},
		{
			Name:        "seed",
			Type:        "int",
			Description: "Seed of the day-level weather and solar variation",
			Default:     def.Seed,
		},
	}
}
