package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. INSIGHTS_LISTEN_ADDR.
const EnvPrefix = "INSIGHTS"

// ErrInvalid marks a configuration value that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Global configuration structure.
type Global struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Dashboard
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	MaxDatasets int    `mapstructure:"max_datasets" yaml:"max_datasets"`

	// Analysis
	PreviewRows   int `mapstructure:"preview_rows" yaml:"preview_rows"`
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	MaxRows       int `mapstructure:"max_rows" yaml:"max_rows"`

	// Charts
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`
}

// Keys lists the settable configuration keys in file order.
var Keys = []string{
	"log_level", "log_format", "listen_addr", "max_upload_mb", "max_datasets",
	"preview_rows", "histogram_bins", "max_rows", "chart_width", "chart_height",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_mb", 50)
	v.SetDefault("max_datasets", 16)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("histogram_bins", 30)
	v.SetDefault("max_rows", 0)
	v.SetDefault("chart_width", 960)
	v.SetDefault("chart_height", 540)
}

// Default returns the built-in defaults without reading files or the environment.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Dir returns ~/.insights.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".insights"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.insights/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env file in the working directory) > config file > defaults.
// Flags are applied by the caller on top.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is normal; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the shells cannot work with.
func (c *Global) Validate() error {
	var problems []string
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format %q (want console or json)", c.LogFormat))
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"max_upload_mb", c.MaxUploadMB},
		{"max_datasets", c.MaxDatasets},
		{"histogram_bins", c.HistogramBins},
		{"chart_width", c.ChartWidth},
		{"chart_height", c.ChartHeight},
	} {
		if f.v <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %d", f.name, f.v))
		}
	}
	if c.PreviewRows < 0 {
		problems = append(problems, fmt.Sprintf("preview_rows must not be negative, got %d", c.PreviewRows))
	}
	if c.MaxRows < 0 {
		problems = append(problems, fmt.Sprintf("max_rows must not be negative, got %d", c.MaxRows))
	}
	if c.ListenAddr == "" {
		problems = append(problems, "listen_addr is empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
