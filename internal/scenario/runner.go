package scenario

import (
	"context"
	"errors"

	"site-ems/internal/config"
	"site-ems/internal/generator"
	"site-ems/internal/logger"
	"site-ems/internal/metrics"
	"site-ems/internal/model"
	"site-ems/internal/simulation"
)

// Outcome is one finished site run with the series it was computed from.
type Outcome struct {
	Params  model.RunParams
	Battery string
	Series  model.Series
	Result  *simulation.Result
}

// Runner generates a site series and dispatches a battery over it.
// A Runner holds no per-run state and is safe for concurrent use.
type Runner struct {
	profile generator.Profile
	engine  *simulation.Engine
	sink    metrics.Sink
	log     logger.Logger
}

type Option func(*Runner)

func WithMetrics(s metrics.Sink) Option {
	return func(r *Runner) {
		if s != nil {
			r.sink = s
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRunner(profile generator.Profile, opts ...Option) (*Runner, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		profile: profile,
		engine:  simulation.New(),
		sink:    metrics.NopSink{},
		log:     logger.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runner) Profile() generator.Profile { return r.profile }

// Run executes an interactive run. Parameters must be within the slider bounds.
func (r *Runner) Run(ctx context.Context, params model.RunParams, battery string) (*Outcome, error) {
	if err := params.Validate(); err != nil {
		r.record(nil, err)
		return nil, err
	}
	return r.execute(ctx, r.profile, params, battery)
}

// RunConfig executes a scenario file. Only the battery and horizon checks apply,
// so capacities and horizons outside the interactive bounds are accepted.
func RunConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	profile, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	r, err := NewRunner(profile, opts...)
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, profile, ParamsFromConfig(cfg), cfg.Battery.Name)
}

// ParamsFromConfig maps a scenario file onto run parameters. A missing seed means seed 1.
func ParamsFromConfig(cfg *config.Config) model.RunParams {
	p := model.RunParams{
		Days:            cfg.Horizon.Days,
		CapacityKWh:     cfg.Battery.CapacityKWh,
		InitialLevelKWh: cfg.Battery.InitialLevelKWh,
		Seed:            model.DefaultRunParams().Seed,
		ZoomDays:        cfg.Horizon.ZoomDays,
	}
	if cfg.Generator.Seed != nil {
		p.Seed = *cfg.Generator.Seed
	}
	return p
}

// Series generates the site series for params without running the battery.
func (r *Runner) Series(params model.RunParams) (model.Series, error) {
	gen, err := generator.New(r.profile, params.Seed)
	if err != nil {
		return model.Series{}, err
	}
	return gen.Generate(params.Days)
}

func (r *Runner) execute(ctx context.Context, profile generator.Profile, params model.RunParams, battery string) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gen, err := generator.New(profile, params.Seed)
	if err != nil {
		r.record(nil, err)
		return nil, err
	}
	series, err := gen.Generate(params.Days)
	if err != nil {
		r.record(nil, err)
		return nil, err
	}
	batt, err := model.NewBattery(model.BatteryParams{Name: battery, CapacityKWh: params.CapacityKWh}, params.InitialLevelKWh)
	if err != nil {
		r.record(nil, err)
		return nil, err
	}
	res, err := r.engine.Run(series, batt)
	r.record(res, err)
	if err != nil {
		return nil, err
	}
	r.log.Debugw("run finished", map[string]any{
		"days":          params.Days,
		"capacity_kwh":  params.CapacityKWh,
		"seed":          params.Seed,
		"purchased_kwh": res.Totals.PurchasedKWh,
		"sold_kwh":      res.Totals.SoldKWh,
	})
	return &Outcome{Params: params, Battery: battery, Series: series, Result: res}, nil
}

func (r *Runner) record(res *simulation.Result, err error) {
	rec := metrics.RunRecord{Outcome: metrics.OutcomeOK}
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		rec.Outcome = metrics.OutcomeInvalid
	case err != nil:
		rec.Outcome = metrics.OutcomeError
	case res != nil:
		rec.Steps = len(res.Ledger)
		rec.PurchasedKWh = res.Totals.PurchasedKWh
		rec.SoldKWh = res.Totals.SoldKWh
	}
	if mErr := r.sink.RecordRun(rec); mErr != nil {
		r.log.Warnf("record run metrics: %v", mErr)
	}
}
