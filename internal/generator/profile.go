package generator

import (
	"fmt"
	"time"

	"site-ems/internal/model"
)

// Profile holds the coefficients of the synthetic site.
//
//	phase       = sin((hour - 6) * pi / 12)
//	temperature = BaseTempC + TempAmplitudeC*phase + shift[day]
//	solar       = scale[day] * max(SolarPeakKWh*phase, 0)
//	demand      = BaseDemandKWh + max(HeatingThresholdC - temperature, 0) * HeatingKWhPerDegree
//
// shift[day] ~ Normal(0, TempShiftStdDevC), scale[day] ~ Uniform(SolarScaleMin, SolarScaleMax).
type Profile struct {
	Start       time.Time
	StepsPerDay int

	BaseTempC        float64
	TempAmplitudeC   float64
	TempShiftStdDevC float64

	SolarPeakKWh  float64
	SolarScaleMin float64
	SolarScaleMax float64

	BaseDemandKWh       float64
	HeatingThresholdC   float64
	HeatingKWhPerDegree float64
}

// DefaultStart is the first step of the default horizon.
var DefaultStart = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

const DefaultStepsPerDay = 48

func DefaultProfile() Profile {
	return Profile{
		Start:       DefaultStart,
		StepsPerDay: DefaultStepsPerDay,

		BaseTempC:        10,
		TempAmplitudeC:   8,
		TempShiftStdDevC: 1.5,

		SolarPeakKWh:  5,
		SolarScaleMin: 0.8,
		SolarScaleMax: 1.2,

		BaseDemandKWh:       3,
		HeatingThresholdC:   15,
		HeatingKWhPerDegree: 0.3,
	}
}

// StepWidth is the fixed width of one step.
func (p Profile) StepWidth() time.Duration {
	if p.StepsPerDay <= 0 {
		return 0
	}
	return 24 * time.Hour / time.Duration(p.StepsPerDay)
}

func (p Profile) Validate() error {
	if p.StepsPerDay <= 0 || (24*time.Hour)%time.Duration(p.StepsPerDay) != 0 {
		return fmt.Errorf("steps_per_day must divide a day evenly (got %d): %w", p.StepsPerDay, model.ErrInvalidInput)
	}
	if p.TempShiftStdDevC < 0 {
		return fmt.Errorf("temp_shift_stddev_c must be >= 0: %w", model.ErrInvalidInput)
	}
	if p.SolarScaleMin < 0 || p.SolarScaleMin > p.SolarScaleMax {
		return fmt.Errorf("solar scale must satisfy 0 <= min <= max: %w", model.ErrInvalidInput)
	}
	if p.SolarPeakKWh < 0 || p.BaseDemandKWh < 0 || p.HeatingKWhPerDegree < 0 {
		return fmt.Errorf("solar peak, base demand and heating slope must be >= 0: %w", model.ErrInvalidInput)
	}
	return nil
}
