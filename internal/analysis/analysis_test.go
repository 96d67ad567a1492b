package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-ems/internal/model"
	"site-ems/internal/simulation"
)

const tol = 1e-9

var t0 = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func twoDaySeries() model.Series {
	return model.Series{
		Start:       t0,
		StepWidth:   12 * time.Hour,
		StepsPerDay: 2,
		SolarKWh:    []float64{6, 0, 6, 0},
		DemandKWh:   []float64{2, 3, 2, 3},
	}
}

func run(t *testing.T, capacity float64) *simulation.Result {
	t.Helper()
	batt, err := model.NewBattery(model.BatteryParams{CapacityKWh: capacity}, 0)
	require.NoError(t, err)
	res, err := simulation.New().Run(twoDaySeries(), batt)
	require.NoError(t, err)
	return res
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(run(t, 3))

	assert.Equal(t, 4, s.Steps)
	assert.Equal(t, t0, s.StartUTC)
	assert.Equal(t, t0.Add(48*time.Hour), s.EndUTC)
	assert.InDelta(t, 12, s.SolarKWh, tol)
	assert.InDelta(t, 10, s.DemandKWh, tol)
	assert.InDelta(t, 0, s.MinLevelKWh, tol)
	assert.InDelta(t, 3, s.MaxLevelKWh, tol)
	assert.InDelta(t, 1.5, s.MeanLevelKWh, tol)
	assert.InDelta(t, 0, s.P05LevelKWh, tol)
	assert.InDelta(t, 3, s.P95LevelKWh, tol)
	assert.InDelta(t, 1, s.SelfSufficiency, tol)
	assert.InDelta(t, 1-2.0/12, s.SelfConsumption, tol)
	assert.InDelta(t, 2, s.EquivalentCycles, tol)

	assert.Equal(t, RunStats{}, ComputeStats(&simulation.Result{}))
}

func TestDaily(t *testing.T) {
	days := Daily(run(t, 1))
	require.Len(t, days, 2)
	for i, d := range days {
		assert.Equal(t, i, d.Day)
		assert.Equal(t, t0.AddDate(0, 0, i), d.Date)
		assert.InDelta(t, 6, d.SolarKWh, tol)
		assert.InDelta(t, 5, d.DemandKWh, tol)
		assert.InDelta(t, 2, d.PurchasedKWh, tol)
		assert.InDelta(t, 3, d.SoldKWh, tol)
	}
}

func TestSweep_RanksByLowestPurchase(t *testing.T) {
	cmp, err := Sweep(context.Background(), twoDaySeries(), []float64{1, 5, 3}, 0, 2)
	require.NoError(t, err)
	require.Len(t, cmp, 3)

	assert.Equal(t, "3 kWh", cmp[0].Variation.Name)
	assert.InDelta(t, 0, cmp[0].Totals.PurchasedKWh, tol)
	assert.InDelta(t, 2, cmp[0].Totals.SoldKWh, tol)

	assert.Equal(t, 5.0, cmp[1].Variation.CapacityKWh)
	assert.InDelta(t, 0, cmp[1].Totals.SoldKWh, tol)

	assert.Equal(t, 1.0, cmp[2].Variation.CapacityKWh)
	assert.InDelta(t, 4, cmp[2].Totals.PurchasedKWh, tol)
	assert.InDelta(t, 6, cmp[2].Totals.SoldKWh, tol)
}

func TestCompare_KeepsOrderAndMatchesSequentialRuns(t *testing.T) {
	vars := []Variation{
		{Name: "small", CapacityKWh: 1},
		{Name: "half-full", CapacityKWh: 5, InitialLevelKWh: 2.5},
		{Name: "mid", CapacityKWh: 3},
	}
	cmp, err := Compare(context.Background(), twoDaySeries(), vars, 0)
	require.NoError(t, err)
	require.Len(t, cmp, 3)
	for i, c := range cmp {
		assert.Equal(t, vars[i], c.Variation)
		_, exchange, err := simulation.Simulate(twoDaySeries().SolarKWh, twoDaySeries().DemandKWh, vars[i].CapacityKWh, vars[i].InitialLevelKWh)
		require.NoError(t, err)
		assert.Equal(t, simulation.Aggregate(exchange), c.Totals)
	}
}

func TestCompare_InvalidVariation(t *testing.T) {
	_, err := Compare(context.Background(), twoDaySeries(), []Variation{
		{Name: "ok", CapacityKWh: 1},
		{Name: "overfull", CapacityKWh: 1, InitialLevelKWh: 2},
	}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Contains(t, err.Error(), "overfull")

	_, err = Sweep(context.Background(), twoDaySeries(), nil, 0, 1)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
