package export

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"site-ems/internal/logger"
	"site-ems/internal/simulation"
)

// Measurement is the line protocol measurement of exported ledger rows.
const Measurement = "site_energy"

// pointWriter is the subset of api.WriteAPIBlocking used by the exporter.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Exporter is implemented by run exporters.
type Exporter interface {
	ExportRun(ctx context.Context, runID, battery string, res *simulation.Result) error
	Close()
}

// NopExporter drops runs.
type NopExporter struct{}

func (NopExporter) ExportRun(context.Context, string, string, *simulation.Result) error { return nil }
func (NopExporter) Close()                                                               {}

// InfluxExporter writes every ledger row of a run to InfluxDB.
type InfluxExporter struct {
	client influxdb2.Client
	writer pointWriter
	log    logger.Logger
}

func NewInfluxExporter(url, token, org, bucket string) *InfluxExporter {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxExporter{
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
		log:    logger.New("influx-export"),
	}
}

// NewInfluxExporterWithFallback pings the instance and returns a NopExporter when it is not healthy.
func NewInfluxExporterWithFallback(ctx context.Context, url, token, org, bucket string) Exporter {
	e := NewInfluxExporter(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	health, err := e.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			e.log.Errorf("influx health check error: %v", err)
		} else {
			e.log.Errorf("influx health status: %s", health.Status)
		}
		e.client.Close()
		return NopExporter{}
	}
	return e
}

// ExportRun writes the rows in one batch.
func (e *InfluxExporter) ExportRun(ctx context.Context, runID, battery string, res *simulation.Result) error {
	points := Points(runID, battery, res)
	if len(points) == 0 {
		return nil
	}
	if err := e.writer.WritePoint(ctx, points...); err != nil {
		return err
	}
	e.log.Debugw("run exported", map[string]any{"run_id": runID, "points": len(points)})
	return nil
}

func (e *InfluxExporter) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

// Points converts a ledger to line protocol points, one per step.
func Points(runID, battery string, res *simulation.Result) []*write.Point {
	if res == nil {
		return nil
	}
	out := make([]*write.Point, 0, len(res.Ledger))
	for _, row := range res.Ledger {
		p := write.NewPointWithMeasurement(Measurement).
			AddTag("run_id", runID).
			AddTag("action", string(row.Action)).
			AddField("temperature_c", round3(row.TemperatureC)).
			AddField("solar_kwh", round3(row.SolarKWh)).
			AddField("demand_kwh", round3(row.DemandKWh)).
			AddField("battery_level_kwh", round3(row.LevelEndKWh)).
			AddField("grid_exchange_kwh", round3(row.GridExchangeKWh)).
			SetTime(row.IntervalStart)
		if battery != "" {
			p.AddTag("battery", battery)
		}
		out = append(out, p)
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
