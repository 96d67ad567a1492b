package simulation

import (
	"fmt"

	"site-ems/internal/model"
)

// Simulate runs the greedy dispatch over aligned generation and demand series and
// returns the battery level and grid exchange after every step.
//
// Validation happens before step 0; on error no step is executed.
// Exchange is positive when energy is exported and negative when it is imported.
func Simulate(generation, demand []float64, capacity, initialLevel float64) (level, exchange []float64, err error) {
	if len(generation) != len(demand) {
		return nil, nil, fmt.Errorf("generation has %d steps, demand has %d: %w", len(generation), len(demand), model.ErrInvalidInput)
	}
	batt, err := model.NewBattery(model.BatteryParams{CapacityKWh: capacity}, initialLevel)
	if err != nil {
		return nil, nil, err
	}

	level = make([]float64, len(generation))
	exchange = make([]float64, len(generation))
	for i := range generation {
		r := batt.Step(generation[i] - demand[i])
		level[i] = r.LevelEndKWh
		exchange[i] = r.ExchangeKWh
	}
	return level, exchange, nil
}
