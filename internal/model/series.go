package model

import (
	"fmt"
	"time"
)

// Series is the aligned per-step input of one site simulation.
// All slices have the same length, one sample per StepWidth starting at Start.
//
// Energies are kWh per step, temperatures are °C.
type Series struct {
	Start       time.Time
	StepWidth   time.Duration
	StepsPerDay int

	TemperatureC []float64
	SolarKWh     []float64
	DemandKWh    []float64
}

// Len returns the number of steps.
func (s Series) Len() int { return len(s.SolarKWh) }

// Days returns the horizon length in whole days.
func (s Series) Days() int {
	if s.StepsPerDay <= 0 {
		return 0
	}
	return s.Len() / s.StepsPerDay
}

func (s Series) StepStart(i int) time.Time {
	return s.Start.Add(time.Duration(i) * s.StepWidth)
}

func (s Series) StepEnd(i int) time.Time {
	return s.StepStart(i + 1)
}

// Validate checks that the generation and demand series are aligned.
// Temperature is optional and only checked when present.
func (s Series) Validate() error {
	if len(s.SolarKWh) != len(s.DemandKWh) {
		return fmt.Errorf("generation has %d steps, demand has %d: %w", len(s.SolarKWh), len(s.DemandKWh), ErrInvalidInput)
	}
	if len(s.TemperatureC) != 0 && len(s.TemperatureC) != len(s.SolarKWh) {
		return fmt.Errorf("temperature has %d steps, generation has %d: %w", len(s.TemperatureC), len(s.SolarKWh), ErrInvalidInput)
	}
	if s.StepWidth <= 0 {
		return fmt.Errorf("step width must be > 0: %w", ErrInvalidInput)
	}
	return nil
}
