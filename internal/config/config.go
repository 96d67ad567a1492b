package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"site-ems/internal/generator"
	"site-ems/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk scenario shape (YAML).
type Config struct {
	// Optional: load battery parameters from a separate YAML (e.g. examples/batteries/*.yaml).
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string          `yaml:"battery_file"`
	Battery     BatteryConfig   `yaml:"battery"`
	Horizon     HorizonConfig   `yaml:"horizon"`
	Generator   GeneratorConfig `yaml:"generator"`
}

type BatteryConfig struct {
	Name            string  `yaml:"name" json:"name,omitempty"`
	CapacityKWh     float64 `yaml:"capacity_kwh" json:"capacity_kwh"`
	InitialLevelKWh float64 `yaml:"initial_level_kwh" json:"initial_level_kwh,omitempty"`
}

type HorizonConfig struct {
	Days        int    `yaml:"days"`
	StepsPerDay int    `yaml:"steps_per_day"`
	Start       string `yaml:"start"` // RFC3339, default 2025-04-01T00:00:00Z
	ZoomDays    int    `yaml:"zoom_days"`
}

// GeneratorConfig overrides the default site profile. Nil fields keep the default;
// pointers are used because zero is a meaningful value (e.g. no temperature spread).
type GeneratorConfig struct {
	Seed *uint64 `yaml:"seed"`

	BaseTempC        *float64 `yaml:"base_temp_c"`
	TempAmplitudeC   *float64 `yaml:"temp_amplitude_c"`
	TempShiftStdDevC *float64 `yaml:"temp_shift_stddev_c"`

	SolarPeakKWh  *float64 `yaml:"solar_peak_kwh"`
	SolarScaleMin *float64 `yaml:"solar_scale_min"`
	SolarScaleMax *float64 `yaml:"solar_scale_max"`

	BaseDemandKWh       *float64 `yaml:"base_demand_kwh"`
	HeatingThresholdC   *float64 `yaml:"heating_threshold_c"`
	HeatingKWhPerDegree *float64 `yaml:"heating_kwh_per_degree"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	var override struct {
		Battery BatteryOverride `yaml:"battery"`
	}
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, err
	}
	// If battery_file is set, load it and apply the fields set in the battery block on top.
	if c.BatteryFile != "" {
		batteryPath := c.BatteryFile
		if !filepath.IsAbs(batteryPath) {
			// Relative paths are resolved against the config file directory first,
			// then against the working directory.
			cand := filepath.Join(filepath.Dir(path), batteryPath)
			if _, err := os.Stat(cand); err == nil {
				batteryPath = cand
			}
		}
		loaded, err := LoadBatteryFile(batteryPath)
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, override.Battery)
	}
	return &c, nil
}

// SetDefaults fills the horizon and the battery capacity when omitted.
// The initial level defaults to an empty battery.
func (c *Config) SetDefaults() {
	if c.Horizon.Days == 0 {
		c.Horizon.Days = model.DefaultHorizonDays
	}
	if c.Horizon.StepsPerDay == 0 {
		c.Horizon.StepsPerDay = generator.DefaultStepsPerDay
	}
	if c.Battery.CapacityKWh == 0 {
		c.Battery.CapacityKWh = model.DefaultCapacityKWh
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Horizon.Days < 1 {
		return fmt.Errorf("horizon.days must be >= 1: %w", model.ErrInvalidInput)
	}
	if c.Horizon.ZoomDays < 0 || c.Horizon.ZoomDays > c.Horizon.Days {
		return fmt.Errorf("horizon.zoom_days must be within [0, %d]: %w", c.Horizon.Days, model.ErrInvalidInput)
	}
	if _, err := c.Profile(); err != nil {
		return err
	}
	// Validate battery params by constructing a model.Battery.
	_, err := model.NewBattery(c.Battery.ToModelParams(), c.Battery.InitialLevelKWh)
	if err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	return nil
}

func (b BatteryConfig) ToModelParams() model.BatteryParams {
	return model.BatteryParams{
		Name:        b.Name,
		CapacityKWh: b.CapacityKWh,
	}
}

// Profile builds the generator profile from the defaults and the overrides.
func (c *Config) Profile() (generator.Profile, error) {
	p := generator.DefaultProfile()
	if c.Horizon.StepsPerDay != 0 {
		p.StepsPerDay = c.Horizon.StepsPerDay
	}
	if c.Horizon.Start != "" {
		start, err := time.Parse(time.RFC3339, c.Horizon.Start)
		if err != nil {
			return p, fmt.Errorf("horizon.start: %v: %w", err, model.ErrInvalidInput)
		}
		p.Start = start
	}
	g := c.Generator
	overlay(&p.BaseTempC, g.BaseTempC)
	overlay(&p.TempAmplitudeC, g.TempAmplitudeC)
	overlay(&p.TempShiftStdDevC, g.TempShiftStdDevC)
	overlay(&p.SolarPeakKWh, g.SolarPeakKWh)
	overlay(&p.SolarScaleMin, g.SolarScaleMin)
	overlay(&p.SolarScaleMax, g.SolarScaleMax)
	overlay(&p.BaseDemandKWh, g.BaseDemandKWh)
	overlay(&p.HeatingThresholdC, g.HeatingThresholdC)
	overlay(&p.HeatingKWhPerDegree, g.HeatingKWhPerDegree)
	return p, p.Validate()
}

func overlay(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// batteryFile accepts both preset layouts: flat fields, or the same fields
// nested under a battery key (the scenario file shape).
type batteryFile struct {
	BatteryConfig `yaml:",inline"`
	Battery       *BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a battery preset. A preset without a positive capacity is rejected.
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var f batteryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return BatteryConfig{}, err
	}
	b := f.BatteryConfig
	if f.Battery != nil {
		b = *f.Battery
	}
	if !(b.CapacityKWh > 0) {
		return BatteryConfig{}, fmt.Errorf("battery file %s: capacity_kwh must be > 0: %w", path, model.ErrInvalidInput)
	}
	return b, nil
}

// BatteryOverride carries the fields a scenario or request sets on top of a preset.
// InitialLevelKWh is a pointer so an explicit 0 empties a preset that starts charged.
type BatteryOverride struct {
	Name            string   `yaml:"name"`
	CapacityKWh     float64  `yaml:"capacity_kwh"`
	InitialLevelKWh *float64 `yaml:"initial_level_kwh"`
}

// MergeBattery overlays the fields set in override onto base.
// This is used when loading a battery file and then applying overrides from the request.
func MergeBattery(base BatteryConfig, override BatteryOverride) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityKWh != 0 {
		out.CapacityKWh = override.CapacityKWh
	}
	if override.InitialLevelKWh != nil {
		out.InitialLevelKWh = *override.InitialLevelKWh
	}
	return out
}
