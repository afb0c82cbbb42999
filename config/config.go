package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/ltdstatus/observe"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LTDSTATUS"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the service configuration.
type Config struct {
	BaseURL         string        `mapstructure:"base_url"`
	ListenAddr      string        `mapstructure:"listen_addr"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxInFlight     int           `mapstructure:"max_in_flight"`
	MaxProducts     int           `mapstructure:"max_products"`
	MaxEditions     int           `mapstructure:"max_editions"`
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TracingExporter string        `mapstructure:"tracing_exporter"`
	TraceSamplePct  float64       `mapstructure:"trace_sample_pct"`
	MetricsExporter string        `mapstructure:"metrics_exporter"`
	ServiceName     string        `mapstructure:"service_name"`
	Version         string        `mapstructure:"version"`
}

// SetDefaults registers every key with its default. Keys without a default
// are not seen by AutomaticEnv during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://keeper.lsst.codes")
	v.SetDefault("listen_addr", ":5000")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_in_flight", 32)
	v.SetDefault("max_products", 8)
	v.SetDefault("max_editions", 16)
	v.SetDefault("probe_timeout", time.Duration(0))
	v.SetDefault("max_body_bytes", int64(4<<20))
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("tracing_exporter", "none")
	v.SetDefault("trace_sample_pct", 1.0)
	v.SetDefault("metrics_exporter", "prometheus")
	v.SetDefault("service_name", "uservice-ltdstatus")
	v.SetDefault("version", "dev")
}

// New returns a viper instance reading LTDSTATUS_* environment variables and,
// when configFile is non-empty, that file.
func New(configFile string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	SetDefaults(v)
	return v
}

// Load reads the config file (if one is set), decodes, expands ${VAR}
// references in string values and validates.
func Load(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expand() error {
	for _, field := range []*string{
		&c.BaseURL,
		&c.ListenAddr,
		&c.ServiceName,
		&c.Version,
	} {
		out, err := ExpandEnvStrict(*field)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		*field = out
	}
	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		invalid("base_url must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.ListenAddr == "" {
		invalid("listen_addr is required")
	}
	if !slices.Contains(observe.ValidLogLevels, c.LogLevel) {
		invalid("unknown log_level %q", c.LogLevel)
	}
	if c.MaxInFlight <= 0 {
		invalid("max_in_flight must be positive, got %d", c.MaxInFlight)
	}
	if c.MaxProducts <= 0 {
		invalid("max_products must be positive, got %d", c.MaxProducts)
	}
	if c.MaxEditions <= 0 {
		invalid("max_editions must be positive, got %d", c.MaxEditions)
	}
	if c.ProbeTimeout < 0 {
		invalid("probe_timeout must not be negative, got %s", c.ProbeTimeout)
	}
	if c.MaxBodyBytes <= 0 {
		invalid("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.ShutdownTimeout < 0 {
		invalid("shutdown_timeout must not be negative, got %s", c.ShutdownTimeout)
	}
	if !slices.Contains(observe.ValidTracingExporters, c.TracingExporter) {
		invalid("unknown tracing_exporter %q", c.TracingExporter)
	}
	if c.TraceSamplePct < observe.MinSamplePct || c.TraceSamplePct > observe.MaxSamplePct {
		invalid("trace_sample_pct must be between 0 and 1, got %v", c.TraceSamplePct)
	}
	if !slices.Contains(observe.ValidMetricsExporters, c.MetricsExporter) {
		invalid("unknown metrics_exporter %q", c.MetricsExporter)
	}
	if c.ServiceName == "" {
		invalid("service_name is required")
	}

	return errors.Join(errs...)
}

// Observe returns the telemetry configuration.
func (c *Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingExporter != "" && c.TracingExporter != "none",
			Exporter:  c.TracingExporter,
			SamplePct: c.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "" && c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}
