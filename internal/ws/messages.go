package ws

import (
	"encoding/json"

	"site-ems/internal/api/models"
	"site-ems/internal/model"
	"site-ems/internal/scenario"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages
const (
	TypeParamsUpdate = "params:update"
)

// Server -> Client messages
const (
	TypeParamsBounds     = "params:bounds"
	TypeSimulationResult = "simulation:result"
	TypeError            = "error"
)

// ParamsUpdatePayload changes some of the run parameters; omitted fields keep their value.
type ParamsUpdatePayload struct {
	Days            *int     `json:"days,omitempty"`
	CapacityKWh     *float64 `json:"capacity_kwh,omitempty"`
	InitialLevelKWh *float64 `json:"initial_level_kwh,omitempty"`
	Seed            *uint64  `json:"seed,omitempty"`
	ZoomDays        *int     `json:"zoom_days,omitempty"`
}

// Apply returns p with the update applied.
func (u ParamsUpdatePayload) Apply(p model.RunParams) model.RunParams {
	if u.Days != nil {
		p.Days = *u.Days
	}
	if u.CapacityKWh != nil {
		p.CapacityKWh = *u.CapacityKWh
	}
	if u.InitialLevelKWh != nil {
		p.InitialLevelKWh = *u.InitialLevelKWh
	}
	if u.Seed != nil {
		p.Seed = *u.Seed
	}
	if u.ZoomDays != nil {
		p.ZoomDays = *u.ZoomDays
	}
	return p
}

type ParamsBoundsPayload struct {
	Parameters []models.ParameterInfo `json:"parameters"`
}

// SimulationResultPayload carries the (zoomed) series and the full-horizon totals.
type SimulationResultPayload struct {
	Params  model.RunParams          `json:"params"`
	Summary models.SimulationSummary `json:"summary"`
	Series  *models.SeriesPayload    `json:"series"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func ResultFromOutcome(out *scenario.Outcome) SimulationResultPayload {
	return SimulationResultPayload{
		Params:  out.Params,
		Summary: models.NewSummary(out.Result, false),
		Series:  models.NewSeries(out.Result.Zoom(out.Params.ZoomDays)),
	}
}
