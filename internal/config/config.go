package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"sim-epsp/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Stimulus StimulusConfig `mapstructure:"stimulus"`
	Sampling SamplingConfig `mapstructure:"sampling"`
	Output   OutputConfig   `mapstructure:"output"`
	Plot     PlotConfig     `mapstructure:"plot"`
	Database DatabaseConfig `mapstructure:"database"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name string `mapstructure:"name"`
}

// StimulusConfig selects the kinetic model and its parameters.
type StimulusConfig struct {
	Kinetics string        `mapstructure:"kinetics"`
	Fast     FastConfig    `mapstructure:"fast"`
	Slow     SlowConfig    `mapstructure:"slow"`
	Duration time.Duration `mapstructure:"duration"`
	// Delay is "auto" or a duration string.
	Delay   string `mapstructure:"delay"`
	Comment string `mapstructure:"comment"`
}

// FastConfig holds double-exponential parameters; amplitudes in pA.
type FastConfig struct {
	A1        float64       `mapstructure:"a1"`
	TauRise1  time.Duration `mapstructure:"tau_rise1"`
	TauDecay1 time.Duration `mapstructure:"tau_decay1"`
	A2        float64       `mapstructure:"a2"`
	TauRise2  time.Duration `mapstructure:"tau_rise2"`
	TauDecay2 time.Duration `mapstructure:"tau_decay2"`
}

// SlowConfig holds single-exponential parameters; amplitude in pA.
type SlowConfig struct {
	A        float64       `mapstructure:"a"`
	TauRise  time.Duration `mapstructure:"tau_rise"`
	TauDecay time.Duration `mapstructure:"tau_decay"`
}

// SamplingConfig governs the time base.
type SamplingConfig struct {
	Mode         string        `mapstructure:"mode"`
	RateHz       float64       `mapstructure:"rate_hz"`
	DtFine       time.Duration `mapstructure:"dt_fine"`
	DtCoarse     time.Duration `mapstructure:"dt_coarse"`
	FineDuration time.Duration `mapstructure:"fine_duration"`
}

// OutputConfig sets where artefacts are written.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	Manifest bool   `mapstructure:"manifest"`
	Plot     bool   `mapstructure:"plot"`
}

// PlotConfig tunes figure rendering.
type PlotConfig struct {
	Backend      string        `mapstructure:"backend"`
	Width        int           `mapstructure:"width"`
	Height       int           `mapstructure:"height"`
	ZoomMin      time.Duration `mapstructure:"zoom_min"`
	ZoomFraction float64       `mapstructure:"zoom_fraction"`
}

// DatabaseConfig encapsulates the optional PostgreSQL catalog.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIMEPSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "simepsp")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("stimulus.kinetics", "fast")
	v.SetDefault("stimulus.fast.a1", 150.0)
	v.SetDefault("stimulus.fast.tau_rise1", "10us")
	v.SetDefault("stimulus.fast.tau_decay1", "1ms")
	v.SetDefault("stimulus.fast.a2", 70.0)
	v.SetDefault("stimulus.fast.tau_rise2", "3ms")
	v.SetDefault("stimulus.fast.tau_decay2", "20ms")
	v.SetDefault("stimulus.slow.a", 150.0)
	v.SetDefault("stimulus.slow.tau_rise", "10ms")
	v.SetDefault("stimulus.slow.tau_decay", "15ms")
	v.SetDefault("stimulus.duration", "100ms")
	v.SetDefault("stimulus.delay", "0s")
	v.SetDefault("stimulus.comment", "")

	v.SetDefault("sampling.mode", "uniform")
	v.SetDefault("sampling.rate_hz", 20000.0)
	v.SetDefault("sampling.dt_fine", "10us")
	v.SetDefault("sampling.dt_coarse", "1ms")
	v.SetDefault("sampling.fine_duration", "10ms")

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.manifest", true)
	v.SetDefault("output.plot", true)

	v.SetDefault("plot.backend", "chart")
	v.SetDefault("plot.width", 1200)
	v.SetDefault("plot.height", 800)
	v.SetDefault("plot.zoom_min", "10ms")
	v.SetDefault("plot.zoom_fraction", 0.1)

	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}
}

// Validate performs basic sanity checks on the configuration values.
// Kinetic parameters are checked by the waveform models themselves.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Stimulus.Kinetics) {
	case "fast", "slow":
	default:
		return fmt.Errorf("stimulus.kinetics must be fast or slow, got %q", c.Stimulus.Kinetics)
	}
	if c.Stimulus.Duration <= 0 {
		return fmt.Errorf("stimulus.duration must be greater than zero")
	}
	switch strings.ToLower(c.Sampling.Mode) {
	case "uniform", "variable":
	default:
		return fmt.Errorf("sampling.mode must be uniform or variable, got %q", c.Sampling.Mode)
	}
	if c.Sampling.RateHz <= 0 {
		return fmt.Errorf("sampling.rate_hz must be greater than zero")
	}
	if c.Sampling.DtFine <= 0 || c.Sampling.DtCoarse <= 0 {
		return fmt.Errorf("sampling.dt_fine and sampling.dt_coarse must be greater than zero")
	}
	if c.Sampling.FineDuration < 0 {
		return fmt.Errorf("sampling.fine_duration cannot be negative")
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("plot.width and plot.height must be greater than zero")
	}
	if c.Plot.ZoomFraction < 0 || c.Plot.ZoomFraction > 1 {
		return fmt.Errorf("plot.zoom_fraction must lie within [0, 1]")
	}
	return nil
}
