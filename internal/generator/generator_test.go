package generator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-ems/internal/model"
)

func TestGenerate_ShapeAndAlignment(t *testing.T) {
	g, err := New(DefaultProfile(), 42)
	require.NoError(t, err)

	s, err := g.Generate(3)
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, 3*48, s.Len())
	assert.Len(t, s.TemperatureC, 3*48)
	assert.Len(t, s.DemandKWh, 3*48)
	assert.Equal(t, 30*time.Minute, s.StepWidth)
	assert.Equal(t, 3, s.Days())
	assert.Equal(t, DefaultStart, s.StepStart(0))
	assert.Equal(t, DefaultStart.Add(47*30*time.Minute), s.StepStart(47))
}

func TestGenerate_Deterministic(t *testing.T) {
	g1, err := New(DefaultProfile(), 7)
	require.NoError(t, err)
	g2, err := New(DefaultProfile(), 7)
	require.NoError(t, err)

	a, err := g1.Generate(5)
	require.NoError(t, err)
	b, err := g2.Generate(5)
	require.NoError(t, err)
	again, err := g1.Generate(5)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a, again)

	g3, err := New(DefaultProfile(), 8)
	require.NoError(t, err)
	c, err := g3.Generate(5)
	require.NoError(t, err)
	assert.NotEqual(t, a.TemperatureC, c.TemperatureC)
}

func TestGenerate_NoVariationMatchesFormula(t *testing.T) {
	p := DefaultProfile()
	p.TempShiftStdDevC = 0
	p.SolarScaleMin = 1
	p.SolarScaleMax = 1
	g, err := New(p, 1)
	require.NoError(t, err)

	s, err := g.Generate(1)
	require.NoError(t, err)

	// 06:00 -> phase 0
	assert.InDelta(t, 10, s.TemperatureC[12], 1e-9)
	assert.InDelta(t, 0, s.SolarKWh[12], 1e-9)
	assert.InDelta(t, 3+5*0.3, s.DemandKWh[12], 1e-9)

	// 12:00 -> phase 1
	assert.InDelta(t, 18, s.TemperatureC[24], 1e-9)
	assert.InDelta(t, 5, s.SolarKWh[24], 1e-9)
	assert.InDelta(t, 3, s.DemandKWh[24], 1e-9)

	// 00:00 -> phase -1, no sun
	assert.InDelta(t, 2, s.TemperatureC[0], 1e-9)
	assert.Equal(t, 0.0, s.SolarKWh[0])
	assert.InDelta(t, 3+13*0.3, s.DemandKWh[0], 1e-9)
}

func TestGenerate_NonNegativeAndBounded(t *testing.T) {
	g, err := New(DefaultProfile(), 99)
	require.NoError(t, err)
	s, err := g.Generate(30)
	require.NoError(t, err)

	for i := range s.SolarKWh {
		assert.GreaterOrEqual(t, s.SolarKWh[i], 0.0)
		assert.LessOrEqual(t, s.SolarKWh[i], 5*1.2+1e-9)
		assert.GreaterOrEqual(t, s.DemandKWh[i], 3.0)
		assert.False(t, math.IsNaN(s.TemperatureC[i]))
	}
}

func TestVariation_WithinRange(t *testing.T) {
	g, err := New(DefaultProfile(), 3)
	require.NoError(t, err)
	v := g.Variation(30)
	require.Len(t, v.SolarScale, 30)
	for _, x := range v.SolarScale {
		assert.GreaterOrEqual(t, x, 0.8)
		assert.LessOrEqual(t, x, 1.2)
	}
}

func TestGenerate_RejectsBadInput(t *testing.T) {
	g, err := New(DefaultProfile(), 1)
	require.NoError(t, err)
	_, err = g.Generate(0)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	p := DefaultProfile()
	p.StepsPerDay = 7
	_, err = New(p, 1)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	p = DefaultProfile()
	p.SolarScaleMin = 2
	_, err = New(p, 1)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
