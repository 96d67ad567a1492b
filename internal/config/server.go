package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. EMS_PORT, EMS_BATTERY_DIR or EMS_INFLUX__URL.
const EnvPrefix = "EMS_"

// ServerConfig configures the API process.
type ServerConfig struct {
	Port       int    `json:"port"`
	Env        string `json:"env"`
	StaticDir  string `json:"static_dir"`
	BatteryDir string `json:"battery_dir"`
	// Seconds a stored run stays addressable by ID.
	RunTTLSeconds int `json:"run_ttl_seconds"`
	// Maximum concurrent runs for compare/sweep.
	MaxParallel int `json:"max_parallel"`

	Metrics MetricsConfig `json:"metrics"`
	Influx  InfluxConfig  `json:"influx"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// InfluxConfig enables the run export when URL is set.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func (c InfluxConfig) Enabled() bool { return c.URL != "" }

func (c *ServerConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Env == "" {
		c.Env = "production"
	}
	if c.BatteryDir == "" {
		c.BatteryDir = "examples/batteries"
	}
	if c.RunTTLSeconds == 0 {
		c.RunTTLSeconds = 3600
	}
	if c.MaxParallel == 0 {
		c.MaxParallel = 4
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.RunTTLSeconds < 0 {
		return fmt.Errorf("run_ttl_seconds must be >= 0")
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be >= 1")
	}
	if c.Influx.Enabled() && (c.Influx.Org == "" || c.Influx.Bucket == "") {
		return fmt.Errorf("influx.org and influx.bucket are required when influx.url is set")
	}
	return nil
}

// LoadServer reads the server config from path (YAML or JSON) and applies EMS_ environment
// overrides. An empty path loads from the environment only.
func LoadServer(path string) (*ServerConfig, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg ServerConfig
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps EMS_INFLUX__URL to influx.url and EMS_BATTERY_DIR to battery_dir.
func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
