package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-ems/internal/model"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scenario.yaml", "battery:\n  name: site\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultHorizonDays, cfg.Horizon.Days)
	assert.Equal(t, 48, cfg.Horizon.StepsPerDay)
	assert.Equal(t, model.DefaultCapacityKWh, cfg.Battery.CapacityKWh)
	assert.Equal(t, 0.0, cfg.Battery.InitialLevelKWh)
}

func TestLoad_BatteryFileMergedWithOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "home.yaml", "battery:\n  name: home\n  capacity_kwh: 10\n  initial_level_kwh: 2\n")
	path := writeFile(t, dir, "scenario.yaml", `battery_file: home.yaml
battery:
  initial_level_kwh: 4
horizon:
  days: 3
  start: "2025-06-01T00:00:00Z"
generator:
  seed: 11
  temp_shift_stddev_c: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "home", cfg.Battery.Name)
	assert.Equal(t, 10.0, cfg.Battery.CapacityKWh)
	assert.Equal(t, 4.0, cfg.Battery.InitialLevelKWh)
	require.NotNil(t, cfg.Generator.Seed)
	assert.Equal(t, uint64(11), *cfg.Generator.Seed)

	p, err := cfg.Profile()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, 0.0, p.TempShiftStdDevC)
	assert.Equal(t, 5.0, p.SolarPeakKWh)
}

func TestValidate_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"level above capacity": "battery:\n  capacity_kwh: 5\n  initial_level_kwh: 6\n",
		"negative capacity":    "battery:\n  capacity_kwh: -1\n",
		"zoom past horizon":    "horizon:\n  days: 2\n  zoom_days: 3\n",
		"bad start":            "horizon:\n  start: yesterday\n",
		"uneven steps":         "horizon:\n  steps_per_day: 7\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "scenario.yaml", data)
			_, err := Load(path)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestMergeBattery(t *testing.T) {
	base := BatteryConfig{Name: "a", CapacityKWh: 10, InitialLevelKWh: 1}
	out := MergeBattery(base, BatteryOverride{CapacityKWh: 12})
	assert.Equal(t, BatteryConfig{Name: "a", CapacityKWh: 12, InitialLevelKWh: 1}, out)

	zero := 0.0
	out = MergeBattery(base, BatteryOverride{InitialLevelKWh: &zero})
	assert.Equal(t, BatteryConfig{Name: "a", CapacityKWh: 10, InitialLevelKWh: 0}, out)
}

func TestLoadBatteryFile_FlatAndNested(t *testing.T) {
	dir := t.TempDir()
	flat := writeFile(t, dir, "flat.yaml", "name: Flat\ncapacity_kwh: 7\ninitial_level_kwh: 1\n")
	nested := writeFile(t, dir, "nested.yaml", "battery:\n  name: Nested\n  capacity_kwh: 8\n")

	b, err := LoadBatteryFile(flat)
	require.NoError(t, err)
	assert.Equal(t, BatteryConfig{Name: "Flat", CapacityKWh: 7, InitialLevelKWh: 1}, b)

	b, err = LoadBatteryFile(nested)
	require.NoError(t, err)
	assert.Equal(t, BatteryConfig{Name: "Nested", CapacityKWh: 8}, b)
}

func TestLoadBatteryFile_RejectsMissingCapacity(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"empty.yaml":    "name: nothing\n",
		"negative.yaml": "capacity_kwh: -2\n",
		"typo.yaml":     "battery:\n  capacity: 10\n",
	} {
		_, err := LoadBatteryFile(writeFile(t, dir, name, data))
		assert.ErrorIs(t, err, model.ErrInvalidInput, name)
	}

	writeFile(t, dir, "empty.yaml", "name: nothing\n")
	path := writeFile(t, dir, "scenario.yaml", "battery_file: empty.yaml\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestLoad_ShippedScenario(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "scenario.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Home 10 kWh", cfg.Battery.Name)
	assert.Equal(t, 10.0, cfg.Battery.CapacityKWh)
	assert.Equal(t, 2.5, cfg.Battery.InitialLevelKWh)
	assert.Equal(t, 14, cfg.Horizon.Days)
}

func TestLoad_ExplicitZeroLevelOverridesBatteryFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "home.yaml", "capacity_kwh: 10\ninitial_level_kwh: 2\n")
	path := writeFile(t, dir, "scenario.yaml", "battery_file: home.yaml\nbattery:\n  initial_level_kwh: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Battery.CapacityKWh)
	assert.Equal(t, 0.0, cfg.Battery.InitialLevelKWh)
}

func TestListBatteryPresets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_large.yaml", "battery:\n  name: Large\n  capacity_kwh: 20\n")
	writeFile(t, dir, "a_small.yaml", "battery:\n  capacity_kwh: 2\n")
	writeFile(t, dir, "broken.yaml", "battery: [\n")
	writeFile(t, dir, "notes.txt", "ignored")

	presets, skipped, err := ListBatteryPresets(dir)
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "a_small", presets[0].ID)
	assert.Equal(t, "a_small", presets[0].Battery.Name)
	assert.Equal(t, "Large", presets[1].Battery.Name)
	assert.Len(t, skipped, 1)

	assert.Equal(t, filepath.Join(dir, "a_small.yaml"), PresetPath(dir, "../a_small"))
}

func TestLoadServer_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "server.yaml", `port: 9000
battery_dir: presets
influx:
  url: http://localhost:8086
  org: ems
  bucket: runs
`)
	t.Setenv("EMS_INFLUX__TOKEN", "secret")
	t.Setenv("EMS_MAX_PARALLEL", "2")

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "presets", cfg.BatteryDir)
	assert.Equal(t, 2, cfg.MaxParallel)
	assert.Equal(t, 3600, cfg.RunTTLSeconds)
	assert.True(t, cfg.Influx.Enabled())
	assert.Equal(t, "secret", cfg.Influx.Token)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadServer_NestedEnvOnly(t *testing.T) {
	t.Setenv("EMS_INFLUX__URL", "http://influx:8086")
	t.Setenv("EMS_INFLUX__ORG", "site")
	t.Setenv("EMS_INFLUX__BUCKET", "energy")
	t.Setenv("EMS_METRICS__ENABLED", "true")
	t.Setenv("EMS_BATTERY_DIR", "/srv/presets")

	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, InfluxConfig{URL: "http://influx:8086", Org: "site", Bucket: "energy"}, cfg.Influx)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/srv/presets", cfg.BatteryDir)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadServer_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadServer(writeFile(t, dir, "server.toml", "port = 1"))
	assert.Error(t, err)

	_, err = LoadServer(writeFile(t, dir, "server.json", `{"port": 70000}`))
	assert.Error(t, err)

	_, err = LoadServer(writeFile(t, dir, "influx.yaml", "influx:\n  url: http://x\n"))
	assert.Error(t, err)
}
