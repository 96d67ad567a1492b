package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"site-ems/internal/simulation"
)

// RunStats is a run-level summary used for comparing battery sizes.
type RunStats struct {
	StartUTC time.Time
	EndUTC   time.Time

	Steps int

	SolarKWh  float64
	DemandKWh float64

	PurchasedKWh float64
	SoldKWh      float64

	MinLevelKWh  float64
	MaxLevelKWh  float64
	MeanLevelKWh float64
	P05LevelKWh  float64
	P95LevelKWh  float64

	// SelfSufficiency is the share of demand not bought from the grid.
	SelfSufficiency float64
	// SelfConsumption is the share of solar used on site instead of sold.
	SelfConsumption float64
	// EquivalentCycles is the discharged energy in multiples of the capacity.
	EquivalentCycles float64
}

// DayTotals are the energy totals of one calendar day of the horizon.
type DayTotals struct {
	Day          int
	Date         time.Time
	SolarKWh     float64
	DemandKWh    float64
	PurchasedKWh float64
	SoldKWh      float64
}

func ComputeStats(res *simulation.Result) RunStats {
	s := RunStats{}
	if res == nil || len(res.Ledger) == 0 {
		return s
	}
	rows := res.Ledger
	s.Steps = len(rows)
	s.StartUTC = rows[0].IntervalStart.UTC()
	s.EndUTC = rows[len(rows)-1].IntervalEnd.UTC()
	s.PurchasedKWh = res.Totals.PurchasedKWh
	s.SoldKWh = res.Totals.SoldKWh

	solar := make([]float64, len(rows))
	demand := make([]float64, len(rows))
	discharged := make([]float64, len(rows))
	for i, row := range rows {
		solar[i] = row.SolarKWh
		demand[i] = row.DemandKWh
		discharged[i] = row.DischargedKWh
	}
	s.SolarKWh = floats.Sum(solar)
	s.DemandKWh = floats.Sum(demand)

	levels := res.Levels()
	s.MinLevelKWh = floats.Min(levels)
	s.MaxLevelKWh = floats.Max(levels)
	s.MeanLevelKWh = stat.Mean(levels, nil)
	sort.Float64s(levels)
	s.P05LevelKWh = stat.Quantile(0.05, stat.Empirical, levels, nil)
	s.P95LevelKWh = stat.Quantile(0.95, stat.Empirical, levels, nil)

	if s.DemandKWh > 0 {
		s.SelfSufficiency = 1 - s.PurchasedKWh/s.DemandKWh
	}
	if s.SolarKWh > 0 {
		s.SelfConsumption = 1 - s.SoldKWh/s.SolarKWh
	}
	if res.CapacityKWh > 0 {
		s.EquivalentCycles = floats.Sum(discharged) / res.CapacityKWh
	}
	return s
}

// Daily groups the ledger by day of the horizon.
func Daily(res *simulation.Result) []DayTotals {
	if res == nil || res.StepsPerDay <= 0 {
		return nil
	}
	days := (len(res.Ledger) + res.StepsPerDay - 1) / res.StepsPerDay
	out := make([]DayTotals, days)
	for i, row := range res.Ledger {
		d := &out[i/res.StepsPerDay]
		if i%res.StepsPerDay == 0 {
			d.Day = i / res.StepsPerDay
			d.Date = row.IntervalStart.UTC().Truncate(24 * time.Hour)
		}
		d.SolarKWh += row.SolarKWh
		d.DemandKWh += row.DemandKWh
		switch {
		case row.GridExchangeKWh > 0:
			d.SoldKWh += row.GridExchangeKWh
		case row.GridExchangeKWh < 0:
			d.PurchasedKWh += -row.GridExchangeKWh
		}
	}
	return out
}
