package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// RunRecord summarizes one simulation run.
type RunRecord struct {
	Outcome      string
	Steps        int
	PurchasedKWh float64
	SoldKWh      float64
}

// Sink receives run summaries.
type Sink interface {
	RecordRun(RunRecord) error
}

// NopSink drops every record.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error { return nil }

// MultiSink fans a record out to several sinks, returning the first error encountered.
type MultiSink struct {
	Sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordRun(r RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(r); err != nil {
			return err
		}
	}
	return nil
}

// PromSink records runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	purchased prometheus.Counter
	sold      prometheus.Counter
	steps     prometheus.Histogram
}

// NewPromSink registers the run metrics on reg.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ems_simulation_runs_total",
		Help: "Total number of simulation runs by outcome",
	}, []string{"outcome"})
	purchased := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ems_energy_purchased_kwh_total",
		Help: "Energy imported from the grid across successful runs",
	})
	sold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ems_energy_sold_kwh_total",
		Help: "Energy exported to the grid across successful runs",
	})
	steps := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ems_simulation_steps",
		Help:    "Number of steps per successful run",
		Buckets: prometheus.LinearBuckets(48, 48*5, 6),
	})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if purchased, err = register(reg, purchased); err != nil {
		return nil, err
	}
	if sold, err = register(reg, sold); err != nil {
		return nil, err
	}
	if steps, err = register(reg, steps); err != nil {
		return nil, err
	}
	return &PromSink{runs: runs, purchased: purchased, sold: sold, steps: steps}, nil
}

// register returns the already registered collector when c was registered before.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *PromSink) RecordRun(r RunRecord) error {
	s.runs.WithLabelValues(r.Outcome).Inc()
	if r.Outcome != OutcomeOK {
		return nil
	}
	s.purchased.Add(r.PurchasedKWh)
	s.sold.Add(r.SoldKWh)
	s.steps.Observe(float64(r.Steps))
	return nil
}
