package analysis

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"site-ems/internal/model"
	"site-ems/internal/simulation"
)

// Variation is one battery setup evaluated against a shared site series.
type Variation struct {
	Name            string  `json:"name"`
	CapacityKWh     float64 `json:"capacity_kwh"`
	InitialLevelKWh float64 `json:"initial_level_kwh"`
}

type Comparison struct {
	Variation Variation
	Totals    simulation.Totals
	Stats     RunStats
	Result    *simulation.Result
}

// Compare runs every variation over the same series. Runs share only the read-only
// series and execute concurrently, at most limit at a time (limit <= 0 means no limit).
// Results keep the order of variations; the first failing variation aborts the rest.
func Compare(ctx context.Context, series model.Series, variations []Variation, limit int) ([]Comparison, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	out := make([]Comparison, len(variations))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	engine := simulation.New()
	for i, v := range variations {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			batt, err := model.NewBattery(model.BatteryParams{Name: v.Name, CapacityKWh: v.CapacityKWh}, v.InitialLevelKWh)
			if err != nil {
				return fmt.Errorf("variation %q: %w", v.Name, err)
			}
			res, err := engine.Run(series, batt)
			if err != nil {
				return fmt.Errorf("variation %q: %w", v.Name, err)
			}
			out[i] = Comparison{Variation: v, Totals: res.Totals, Stats: ComputeStats(res), Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CapacityVariations names one variation per capacity, all starting at initialLevel.
func CapacityVariations(capacities []float64, initialLevel float64) []Variation {
	out := make([]Variation, 0, len(capacities))
	for _, c := range capacities {
		out = append(out, Variation{
			Name:            fmt.Sprintf("%g kWh", c),
			CapacityKWh:     c,
			InitialLevelKWh: initialLevel,
		})
	}
	return out
}

// Sweep compares capacities and returns them ranked.
func Sweep(ctx context.Context, series model.Series, capacities []float64, initialLevel float64, limit int) ([]Comparison, error) {
	if len(capacities) == 0 {
		return nil, fmt.Errorf("no capacities to sweep: %w", model.ErrInvalidInput)
	}
	cmp, err := Compare(ctx, series, CapacityVariations(capacities, initialLevel), limit)
	if err != nil {
		return nil, err
	}
	RankByPurchased(cmp)
	return cmp, nil
}

// RankByPurchased sorts ascending by energy purchased, then descending by energy sold,
// then by capacity.
func RankByPurchased(cmp []Comparison) {
	sort.SliceStable(cmp, func(i, j int) bool {
		a, b := cmp[i], cmp[j]
		if a.Totals.PurchasedKWh != b.Totals.PurchasedKWh {
			return a.Totals.PurchasedKWh < b.Totals.PurchasedKWh
		}
		if a.Totals.SoldKWh != b.Totals.SoldKWh {
			return a.Totals.SoldKWh > b.Totals.SoldKWh
		}
		return a.Variation.CapacityKWh < b.Variation.CapacityKWh
	})
}
