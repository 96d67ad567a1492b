package export

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-ems/internal/logger"
	"site-ems/internal/model"
	"site-ems/internal/simulation"
)

var t0 = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func sampleResult() *simulation.Result {
	return &simulation.Result{
		Ledger: []simulation.LedgerRow{
			{Index: 0, IntervalStart: t0, TemperatureC: 12.3456, SolarKWh: 2, DemandKWh: 1, Action: model.ActionCharging, LevelEndKWh: 1, GridExchangeKWh: 0},
			{Index: 1, IntervalStart: t0.Add(30 * time.Minute), SolarKWh: 0, DemandKWh: 3, Action: model.ActionDischarging, LevelEndKWh: 0, GridExchangeKWh: -2},
		},
		StepsPerDay: 48,
	}
}

type recordingWriter struct {
	points []*write.Point
}

func (w *recordingWriter) WritePoint(_ context.Context, p ...*write.Point) error {
	w.points = append(w.points, p...)
	return nil
}

func TestInfluxExporter_ExportRunBatchesRows(t *testing.T) {
	w := &recordingWriter{}
	e := &InfluxExporter{writer: w, log: logger.Nop{}}

	require.NoError(t, e.ExportRun(context.Background(), "run-1", "home", sampleResult()))
	require.Len(t, w.points, 2)
	assert.Equal(t, Measurement, w.points[0].Name())
	assert.Equal(t, t0.Add(30*time.Minute), w.points[1].Time())

	require.NoError(t, e.ExportRun(context.Background(), "run-2", "home", &simulation.Result{}))
	assert.Len(t, w.points, 2)
}

func TestInfluxExporter_WritesLineProtocol(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	e := NewInfluxExporter(srv.URL, "token", "org", "bucket")
	defer e.Close()
	require.NoError(t, e.ExportRun(context.Background(), "run-1", "home", sampleResult()))

	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	expected := strings.TrimSpace(write.PointToLineProtocol(Points("run-1", "home", sampleResult())[0], time.Nanosecond))
	assert.Equal(t, expected, lines[0])
	assert.Contains(t, lines[0], "temperature_c=12.346")
	assert.Contains(t, lines[1], "grid_exchange_kwh=-2")
}

func TestNewInfluxExporterWithFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewInfluxExporterWithFallback(context.Background(), srv.URL, "tok", "org", "bucket")
	_, ok := e.(NopExporter)
	assert.True(t, ok, "expected NopExporter on failing health check")
}
