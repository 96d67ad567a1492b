package generator

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"site-ems/internal/model"
)

// Generator produces the solar, demand and temperature series of a site.
// Every call to Generate reseeds from the same seed, so repeated calls with the
// same arguments return identical series.
type Generator struct {
	profile Profile
	seed    uint64
}

func New(profile Profile, seed uint64) (*Generator, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Generator{profile: profile, seed: seed}, nil
}

func (g *Generator) Profile() Profile { return g.profile }

// DayVariation holds the per-day random draws.
type DayVariation struct {
	TempShiftC []float64
	SolarScale []float64
}

// Variation draws the day-level factors for the given number of days.
// All temperature shifts are drawn before the solar scales.
func (g *Generator) Variation(days int) DayVariation {
	src := rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15)
	shift := distuv.Normal{Mu: 0, Sigma: g.profile.TempShiftStdDevC, Src: src}
	scale := distuv.Uniform{Min: g.profile.SolarScaleMin, Max: g.profile.SolarScaleMax, Src: src}

	v := DayVariation{
		TempShiftC: make([]float64, days),
		SolarScale: make([]float64, days),
	}
	for d := range v.TempShiftC {
		v.TempShiftC[d] = shift.Rand()
	}
	for d := range v.SolarScale {
		v.SolarScale[d] = scale.Rand()
	}
	return v
}

// Generate builds a horizon of the given number of days.
func (g *Generator) Generate(days int) (model.Series, error) {
	if days < 1 {
		return model.Series{}, fmt.Errorf("days must be >= 1 (got %d): %w", days, model.ErrInvalidInput)
	}
	p := g.profile
	n := days * p.StepsPerDay
	s := model.Series{
		Start:        p.Start,
		StepWidth:    p.StepWidth(),
		StepsPerDay:  p.StepsPerDay,
		TemperatureC: make([]float64, n),
		SolarKWh:     make([]float64, n),
		DemandKWh:    make([]float64, n),
	}

	v := g.Variation(days)
	for i := 0; i < n; i++ {
		day := i / p.StepsPerDay
		ts := s.StepStart(i)
		hour := float64(ts.Hour()) + float64(ts.Minute())/60
		phase := math.Sin((hour - 6) * math.Pi / 12)

		temp := p.BaseTempC + p.TempAmplitudeC*phase + v.TempShiftC[day]
		s.TemperatureC[i] = temp
		s.SolarKWh[i] = v.SolarScale[day] * math.Max(p.SolarPeakKWh*phase, 0)
		s.DemandKWh[i] = p.BaseDemandKWh + math.Max(p.HeatingThresholdC-temp, 0)*p.HeatingKWhPerDegree
	}
	return s, nil
}
