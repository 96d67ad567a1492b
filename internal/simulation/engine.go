package simulation

import (
	"fmt"

	"site-ems/internal/model"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run executes the greedy dispatch over a generated site series.
// The battery is mutated in place; its final state matches Result.FinalLevelKWh.
func (e *Engine) Run(series model.Series, batt *model.Battery) (*Result, error) {
	if batt == nil {
		return nil, fmt.Errorf("battery is nil: %w", model.ErrInvalidInput)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := batt.Validate(); err != nil {
		return nil, err
	}

	initial := batt.State.LevelKWh
	ledger := make([]LedgerRow, 0, series.Len())
	var cumPurchased, cumSold float64

	for idx := 0; idx < series.Len(); idx++ {
		res := batt.Step(series.SolarKWh[idx] - series.DemandKWh[idx])

		if res.ExchangeKWh > 0 {
			cumSold += res.ExchangeKWh
		} else if res.ExchangeKWh < 0 {
			cumPurchased += -res.ExchangeKWh
		}

		row := LedgerRow{
			Index: idx,

			IntervalStart: series.StepStart(idx),
			IntervalEnd:   series.StepEnd(idx),

			SolarKWh:  series.SolarKWh[idx],
			DemandKWh: series.DemandKWh[idx],
			NetKWh:    res.NetKWh,

			Action: model.ActionFromStep(res),

			LevelStartKWh: res.LevelStartKWh,
			LevelEndKWh:   res.LevelEndKWh,
			ChargedKWh:    res.ChargedKWh,
			DischargedKWh: res.DischargedKWh,

			GridExchangeKWh: res.ExchangeKWh,

			CumPurchasedKWh: cumPurchased,
			CumSoldKWh:      cumSold,
		}
		if len(series.TemperatureC) > 0 {
			row.TemperatureC = series.TemperatureC[idx]
		}
		ledger = append(ledger, row)
	}

	result := &Result{
		Ledger:        ledger,
		CapacityKWh:   batt.Params.CapacityKWh,
		InitialKWh:    initial,
		FinalLevelKWh: batt.State.LevelKWh,
		StepsPerDay:   series.StepsPerDay,
	}
	result.Totals = Aggregate(result.Exchange())
	return result, nil
}
