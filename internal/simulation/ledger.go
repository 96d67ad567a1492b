package simulation

import (
	"time"

	"site-ems/internal/model"
)

// LedgerRow is one row of per-step output.
// This is the primary artifact for "what happened" in a run.
type LedgerRow struct {
	Index int

	IntervalStart time.Time
	IntervalEnd   time.Time

	TemperatureC float64
	SolarKWh     float64
	DemandKWh    float64
	NetKWh       float64

	Action model.Action

	LevelStartKWh float64
	LevelEndKWh   float64
	ChargedKWh    float64
	DischargedKWh float64

	GridExchangeKWh float64

	CumPurchasedKWh float64
	CumSoldKWh      float64
}

type Result struct {
	Ledger        []LedgerRow
	Totals        Totals
	CapacityKWh   float64
	InitialKWh    float64
	FinalLevelKWh float64
	StepsPerDay   int
}

// Levels returns the battery level after each step.
func (r *Result) Levels() []float64 {
	out := make([]float64, len(r.Ledger))
	for i, row := range r.Ledger {
		out[i] = row.LevelEndKWh
	}
	return out
}

// Exchange returns the grid exchange of each step.
func (r *Result) Exchange() []float64 {
	out := make([]float64, len(r.Ledger))
	for i, row := range r.Ledger {
		out[i] = row.GridExchangeKWh
	}
	return out
}

// Zoom returns the rows of the first days of the horizon.
// days <= 0 or beyond the horizon returns the whole ledger.
func (r *Result) Zoom(days int) []LedgerRow {
	if days <= 0 || r.StepsPerDay <= 0 {
		return r.Ledger
	}
	n := days * r.StepsPerDay
	if n >= len(r.Ledger) {
		return r.Ledger
	}
	return r.Ledger[:n]
}
