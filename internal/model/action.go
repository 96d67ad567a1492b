package model

// Action is a human-friendly battery mode for a timestep.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

// ActionFromStep classifies a step by the change in stored energy.
func ActionFromStep(r StepResult) Action {
	switch {
	case r.ChargedKWh > 0:
		return ActionCharging
	case r.DischargedKWh > 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
