package models

import (
	"time"

	"site-ems/internal/analysis"
	"site-ems/internal/model"
	"site-ems/internal/simulation"
)

// SimulationResponse represents the response from a simulation run
type SimulationResponse struct {
	ID      string            `json:"id,omitempty"`
	Status  string            `json:"status"`
	Params  model.RunParams   `json:"params"`
	Battery string            `json:"battery,omitempty"`
	Summary SimulationSummary `json:"summary"`
	Series  *SeriesPayload    `json:"series,omitempty"`
	Ledger  []LedgerRow       `json:"ledger,omitempty"`
}

// SimulationSummary contains aggregated results over the full horizon.
type SimulationSummary struct {
	TotalPurchasedKWh float64     `json:"total_purchased_kwh"`
	TotalSoldKWh      float64     `json:"total_sold_kwh"`
	NetExchangeKWh    float64     `json:"net_exchange_kwh"`
	FinalLevelKWh     float64     `json:"final_level_kwh"`
	TotalSteps        int         `json:"total_steps"`
	Window            TimeWindow  `json:"window"`
	SolarKWh          float64     `json:"solar_kwh"`
	DemandKWh         float64     `json:"demand_kwh"`
	MeanLevelKWh      float64     `json:"mean_level_kwh"`
	SelfSufficiency   float64     `json:"self_sufficiency"`
	SelfConsumption   float64     `json:"self_consumption"`
	EquivalentCycles  float64     `json:"equivalent_cycles"`
	Daily             []DayTotals `json:"daily,omitempty"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type DayTotals struct {
	Date         time.Time `json:"date"`
	SolarKWh     float64   `json:"solar_kwh"`
	DemandKWh    float64   `json:"demand_kwh"`
	PurchasedKWh float64   `json:"purchased_kwh"`
	SoldKWh      float64   `json:"sold_kwh"`
}

// SeriesPayload carries the four plotted series of the (zoomed) window.
type SeriesPayload struct {
	Timestamps      []time.Time `json:"timestamps"`
	TemperatureC    []float64   `json:"temperature_c"`
	SolarKWh        []float64   `json:"solar_kwh"`
	DemandKWh       []float64   `json:"demand_kwh"`
	BatteryLevelKWh []float64   `json:"battery_level_kwh"`
	GridExchangeKWh []float64   `json:"grid_exchange_kwh"`
}

// LedgerRow represents one step in the simulation ledger
type LedgerRow struct {
	Index           int       `json:"index"`
	IntervalStart   time.Time `json:"interval_start"`
	IntervalEnd     time.Time `json:"interval_end"`
	TemperatureC    float64   `json:"temperature_c"`
	SolarKWh        float64   `json:"solar_kwh"`
	DemandKWh       float64   `json:"demand_kwh"`
	NetKWh          float64   `json:"net_kwh"`
	Action          string    `json:"action"` // "CHARGING", "DISCHARGING", "IDLE"
	LevelStartKWh   float64   `json:"battery_level_start_kwh"`
	LevelEndKWh     float64   `json:"battery_level_kwh"`
	ChargedKWh      float64   `json:"charged_kwh"`
	DischargedKWh   float64   `json:"discharged_kwh"`
	GridExchangeKWh float64   `json:"grid_exchange_kwh"`
	CumPurchasedKWh float64   `json:"cum_purchased_kwh"`
	CumSoldKWh      float64   `json:"cum_sold_kwh"`
}

// LedgerResponse is a stored run's ledger.
type LedgerResponse struct {
	ID         string      `json:"id"`
	TotalSteps int         `json:"total_steps"`
	ZoomDays   int         `json:"zoom_days,omitempty"`
	Ledger     []LedgerRow `json:"ledger"`
}

// CompareResponse represents the response from a comparison or a sweep
type CompareResponse struct {
	Days       int                `json:"days"`
	Seed       uint64             `json:"seed"`
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Rank            int               `json:"rank"`
	Name            string            `json:"name"`
	CapacityKWh     float64           `json:"capacity_kwh"`
	InitialLevelKWh float64           `json:"initial_level_kwh"`
	Summary         SimulationSummary `json:"summary"`
}

// BatteryInfo represents information about a battery preset
type BatteryInfo struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	File  string       `json:"file"`
	Specs BatterySpecs `json:"specs"`
}

// BatterySpecs contains battery specifications
type BatterySpecs struct {
	CapacityKWh     float64 `json:"capacity_kwh"`
	InitialLevelKWh float64 `json:"initial_level_kwh"`
}

// ParameterInfo describes an adjustable run parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int"
	Description string      `json:"description"`
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewSummary summarizes a result; daily totals are included when withDaily is set.
func NewSummary(res *simulation.Result, withDaily bool) SimulationSummary {
	st := analysis.ComputeStats(res)
	s := SimulationSummary{
		TotalPurchasedKWh: res.Totals.PurchasedKWh,
		TotalSoldKWh:      res.Totals.SoldKWh,
		NetExchangeKWh:    res.Totals.Net(),
		FinalLevelKWh:     res.FinalLevelKWh,
		TotalSteps:        st.Steps,
		Window:            TimeWindow{Start: st.StartUTC, End: st.EndUTC},
		SolarKWh:          st.SolarKWh,
		DemandKWh:         st.DemandKWh,
		MeanLevelKWh:      st.MeanLevelKWh,
		SelfSufficiency:   st.SelfSufficiency,
		SelfConsumption:   st.SelfConsumption,
		EquivalentCycles:  st.EquivalentCycles,
	}
	if withDaily {
		for _, d := range analysis.Daily(res) {
			s.Daily = append(s.Daily, DayTotals{
				Date:         d.Date,
				SolarKWh:     d.SolarKWh,
				DemandKWh:    d.DemandKWh,
				PurchasedKWh: d.PurchasedKWh,
				SoldKWh:      d.SoldKWh,
			})
		}
	}
	return s
}

// NewSeries builds the plotted series from ledger rows.
func NewSeries(rows []simulation.LedgerRow) *SeriesPayload {
	p := &SeriesPayload{
		Timestamps:      make([]time.Time, len(rows)),
		TemperatureC:    make([]float64, len(rows)),
		SolarKWh:        make([]float64, len(rows)),
		DemandKWh:       make([]float64, len(rows)),
		BatteryLevelKWh: make([]float64, len(rows)),
		GridExchangeKWh: make([]float64, len(rows)),
	}
	for i, r := range rows {
		p.Timestamps[i] = r.IntervalStart
		p.TemperatureC[i] = r.TemperatureC
		p.SolarKWh[i] = r.SolarKWh
		p.DemandKWh[i] = r.DemandKWh
		p.BatteryLevelKWh[i] = r.LevelEndKWh
		p.GridExchangeKWh[i] = r.GridExchangeKWh
	}
	return p
}

func NewLedger(rows []simulation.LedgerRow) []LedgerRow {
	out := make([]LedgerRow, len(rows))
	for i, r := range rows {
		out[i] = LedgerRow{
			Index:           r.Index,
			IntervalStart:   r.IntervalStart,
			IntervalEnd:     r.IntervalEnd,
			TemperatureC:    r.TemperatureC,
			SolarKWh:        r.SolarKWh,
			DemandKWh:       r.DemandKWh,
			NetKWh:          r.NetKWh,
			Action:          string(r.Action),
			LevelStartKWh:   r.LevelStartKWh,
			LevelEndKWh:     r.LevelEndKWh,
			ChargedKWh:      r.ChargedKWh,
			DischargedKWh:   r.DischargedKWh,
			GridExchangeKWh: r.GridExchangeKWh,
			CumPurchasedKWh: r.CumPurchasedKWh,
			CumSoldKWh:      r.CumSoldKWh,
		}
	}
	return out
}

// NewComparison converts ranked or ordered comparisons; Rank is the 1-based position
// by lowest purchase regardless of the output order.
func NewComparison(cmp []analysis.Comparison) []ComparisonResult {
	ranked := make([]analysis.Comparison, len(cmp))
	copy(ranked, cmp)
	analysis.RankByPurchased(ranked)
	rankOf := make(map[*simulation.Result]int, len(ranked))
	for i, c := range ranked {
		rankOf[c.Result] = i + 1
	}

	out := make([]ComparisonResult, len(cmp))
	for i, c := range cmp {
		out[i] = ComparisonResult{
			Rank:            rankOf[c.Result],
			Name:            c.Variation.Name,
			CapacityKWh:     c.Variation.CapacityKWh,
			InitialLevelKWh: c.Variation.InitialLevelKWh,
			Summary:         NewSummary(c.Result, false),
		}
	}
	return out
}
