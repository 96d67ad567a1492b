package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for malformed or out-of-range simulation arguments.
// It is the only error kind produced by the dispatch core.
var ErrInvalidInput = errors.New("invalid input")

// BatteryParams defines the storage parameters of the battery.
// Units:
// - CapacityKWh: kWh
type BatteryParams struct {
	Name        string
	CapacityKWh float64
}

// BatteryState captures mutable state.
type BatteryState struct {
	// LevelKWh is the stored energy in [0, CapacityKWh].
	LevelKWh float64
}

// Battery is a convenience wrapper bundling params + state.
type Battery struct {
	Params BatteryParams
	State  BatteryState
}

// NewBattery rejects an initial level outside [0, capacity] instead of clamping it.
func NewBattery(params BatteryParams, initialLevelKWh float64) (*Battery, error) {
	b := &Battery{
		Params: params,
		State:  BatteryState{LevelKWh: initialLevelKWh},
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Battery) Validate() error {
	p := b.Params
	// Written as !(x > 0) so NaN is rejected too.
	if !(p.CapacityKWh > 0) || math.IsInf(p.CapacityKWh, 1) {
		return fmt.Errorf("capacity must be > 0 (got %v): %w", p.CapacityKWh, ErrInvalidInput)
	}
	lvl := b.State.LevelKWh
	if !(lvl >= 0 && lvl <= p.CapacityKWh) {
		return fmt.Errorf("initial level %v must be within [0, %v]: %w", lvl, p.CapacityKWh, ErrInvalidInput)
	}
	return nil
}

// StepResult captures what happened in one step.
type StepResult struct {
	NetKWh        float64 // generation - demand
	LevelStartKWh float64
	LevelEndKWh   float64
	ChargedKWh    float64 // surplus absorbed by the battery
	DischargedKWh float64 // deficit covered by the battery
	ExchangeKWh   float64 // >0 exported/sold, <0 imported/purchased
}

// Step routes one step's net energy through the battery using the greedy rule:
// surplus charges up to capacity and the rest is exported, deficit discharges down
// to empty and the rest is imported. net == 0 takes the deficit branch and is a no-op.
//
// level_end - level_start + exchange == net holds for every step.
func (b *Battery) Step(netKWh float64) StepResult {
	current := b.State.LevelKWh
	res := StepResult{
		NetKWh:        netKWh,
		LevelStartKWh: current,
	}

	if netKWh > 0 {
		headroom := math.Max(0, b.Params.CapacityKWh-current)
		charge := math.Min(netKWh, headroom)
		if charge == headroom {
			// Pin to capacity; current+headroom can round past it.
			b.State.LevelKWh = b.Params.CapacityKWh
		} else {
			b.State.LevelKWh = current + charge
		}
		res.ChargedKWh = charge
		res.ExchangeKWh = netKWh - charge
	} else {
		discharge := math.Min(-netKWh, math.Max(0, current))
		b.State.LevelKWh = current - discharge
		res.DischargedKWh = discharge
		res.ExchangeKWh = netKWh + discharge
	}

	res.LevelEndKWh = b.State.LevelKWh
	return res
}

// Fraction returns the level as a fraction of capacity.
func (b *Battery) Fraction() float64 {
	if b.Params.CapacityKWh <= 0 {
		return 0
	}
	return b.State.LevelKWh / b.Params.CapacityKWh
}
