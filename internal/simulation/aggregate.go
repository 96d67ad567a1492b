package simulation

// Totals are the grid energy totals of a run, both non-negative.
type Totals struct {
	PurchasedKWh float64 `json:"total_purchased_kwh"`
	SoldKWh      float64 `json:"total_sold_kwh"`
}

// Net returns sold minus purchased, which equals the sum of the exchange series.
func (t Totals) Net() float64 { return t.SoldKWh - t.PurchasedKWh }

// Aggregate splits a grid exchange series into energy purchased (negative samples)
// and energy sold (positive samples). Zero samples count towards neither.
func Aggregate(exchange []float64) Totals {
	var t Totals
	for _, x := range exchange {
		switch {
		case x > 0:
			t.SoldKWh += x
		case x < 0:
			t.PurchasedKWh += -x
		}
	}
	return t
}
