package simulation

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-ems/internal/model"
)

var t0 = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func twoDaySeries() model.Series {
	s := model.Series{
		Start:       t0,
		StepWidth:   12 * time.Hour,
		StepsPerDay: 2,
	}
	// day: surplus then deficit, twice
	s.SolarKWh = []float64{6, 0, 6, 0}
	s.DemandKWh = []float64{2, 3, 2, 3}
	s.TemperatureC = []float64{18, 6, 17, 5}
	return s
}

func TestEngine_Run(t *testing.T) {
	batt, err := model.NewBattery(model.BatteryParams{CapacityKWh: 3}, 0)
	require.NoError(t, err)

	res, err := New().Run(twoDaySeries(), batt)
	require.NoError(t, err)
	require.Len(t, res.Ledger, 4)

	assert.InDeltaSlice(t, []float64{3, 0, 3, 0}, res.Levels(), tol)
	assert.InDeltaSlice(t, []float64{1, 0, 1, 0}, res.Exchange(), tol)
	assert.InDelta(t, 2, res.Totals.SoldKWh, tol)
	assert.InDelta(t, 0, res.Totals.PurchasedKWh, tol)
	assert.Equal(t, 0.0, res.FinalLevelKWh)
	assert.Equal(t, batt.State.LevelKWh, res.FinalLevelKWh)

	r0 := res.Ledger[0]
	assert.Equal(t, model.ActionCharging, r0.Action)
	assert.Equal(t, t0, r0.IntervalStart)
	assert.Equal(t, t0.Add(12*time.Hour), r0.IntervalEnd)
	assert.Equal(t, 18.0, r0.TemperatureC)

	r1 := res.Ledger[1]
	assert.Equal(t, model.ActionDischarging, r1.Action)
	assert.InDelta(t, 3, r1.DischargedKWh, tol)
	assert.InDelta(t, 2, res.Ledger[3].CumSoldKWh, tol)
}

func TestEngine_RunImportsWhenEmpty(t *testing.T) {
	batt, err := model.NewBattery(model.BatteryParams{CapacityKWh: 1}, 0)
	require.NoError(t, err)

	s := twoDaySeries()
	res, err := New().Run(s, batt)
	require.NoError(t, err)

	// 4 kWh surplus, 1 absorbed; 3 kWh deficit, 1 covered.
	assert.InDelta(t, 6, res.Totals.SoldKWh, tol)
	assert.InDelta(t, 4, res.Totals.PurchasedKWh, tol)
	assert.InDelta(t, 4, res.Ledger[3].CumPurchasedKWh, tol)
}

func TestEngine_RunMatchesSimulate(t *testing.T) {
	s := twoDaySeries()
	batt, err := model.NewBattery(model.BatteryParams{CapacityKWh: 2.5}, 1)
	require.NoError(t, err)

	res, err := New().Run(s, batt)
	require.NoError(t, err)

	level, exchange, err := Simulate(s.SolarKWh, s.DemandKWh, 2.5, 1)
	require.NoError(t, err)
	assert.Equal(t, level, res.Levels())
	assert.Equal(t, exchange, res.Exchange())
	assert.Equal(t, Aggregate(exchange), res.Totals)
}

func TestEngine_RunRejectsMisalignedSeries(t *testing.T) {
	batt, err := model.NewBattery(model.BatteryParams{CapacityKWh: 1}, 0)
	require.NoError(t, err)

	s := twoDaySeries()
	s.DemandKWh = s.DemandKWh[:3]
	_, err = New().Run(s, batt)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = New().Run(twoDaySeries(), nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestResult_Zoom(t *testing.T) {
	batt, err := model.NewBattery(model.BatteryParams{CapacityKWh: 3}, 0)
	require.NoError(t, err)
	res, err := New().Run(twoDaySeries(), batt)
	require.NoError(t, err)

	assert.Len(t, res.Zoom(1), 2)
	assert.Len(t, res.Zoom(2), 4)
	assert.Len(t, res.Zoom(0), 4)
	assert.Len(t, res.Zoom(10), 4)
}

func TestWriteLedgerCSV(t *testing.T) {
	batt, err := model.NewBattery(model.BatteryParams{CapacityKWh: 3}, 0)
	require.NoError(t, err)
	res, err := New().Run(twoDaySeries(), batt)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, WriteLedgerCSV(path, res.Ledger))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, ledgerHeader, records[0])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "2025-04-01T00:00:00Z", records[1][1])
	assert.Equal(t, "CHARGING", records[1][7])
	assert.Equal(t, "3.000000", records[1][9])
	assert.Equal(t, "1.000000", records[1][12])
}
