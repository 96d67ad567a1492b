package simulation

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"index",
	"interval_start",
	"interval_end",
	"temperature_c",
	"solar_kwh",
	"demand_kwh",
	"net_kwh",
	"action",
	"battery_level_start_kwh",
	"battery_level_kwh",
	"charged_kwh",
	"discharged_kwh",
	"grid_exchange_kwh",
	"cum_purchased_kwh",
	"cum_sold_kwh",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return EncodeLedgerCSV(f, ledger)
}

// EncodeLedgerCSV writes the header and one record per row to w.
func EncodeLedgerCSV(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.IntervalStart),
			fmtTime(r.IntervalEnd),
			fmtFloat(r.TemperatureC),
			fmtFloat(r.SolarKWh),
			fmtFloat(r.DemandKWh),
			fmtFloat(r.NetKWh),
			string(r.Action),
			fmtFloat(r.LevelStartKWh),
			fmtFloat(r.LevelEndKWh),
			fmtFloat(r.ChargedKWh),
			fmtFloat(r.DischargedKWh),
			fmtFloat(r.GridExchangeKWh),
			fmtFloat(r.CumPurchasedKWh),
			fmtFloat(r.CumSoldKWh),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
