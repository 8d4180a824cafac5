package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/orbitalsim/pkg/astronomy/nbody"
)

const (
	configDirName = ".orbitalsim"
	envPrefix     = "ORBITALSIM"
	secondsPerDay = 86400
)

// Config represents the simulator configuration
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SimulationConfig controls how the system is built and advanced
type SimulationConfig struct {
	Catalog       string `yaml:"catalog" mapstructure:"catalog"`
	AsteroidCount int    `yaml:"asteroid_count" mapstructure:"asteroid_count"`
	Seed          uint64 `yaml:"seed" mapstructure:"seed"`
	Aligned       bool   `yaml:"aligned" mapstructure:"aligned"`

	// one step per frame; each frame covers TimeMultiplierDays / FPS days
	FPS                int     `yaml:"fps" mapstructure:"fps"`
	TimeMultiplierDays float64 `yaml:"time_multiplier_days" mapstructure:"time_multiplier_days"`
	Seconds            float64 `yaml:"seconds" mapstructure:"seconds"`

	Policy            string  `yaml:"policy" mapstructure:"policy"`
	Accumulator       string  `yaml:"accumulator" mapstructure:"accumulator"`
	Degenerate        string  `yaml:"degenerate" mapstructure:"degenerate"`
	MinSeparation     float32 `yaml:"min_separation" mapstructure:"min_separation"`
	SkipAsteroidPairs bool    `yaml:"skip_asteroid_pairs" mapstructure:"skip_asteroid_pairs"`
	Workers           int     `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls snapshot output
type OutputConfig struct {
	SnapshotFile  string `yaml:"snapshot_file" mapstructure:"snapshot_file"`
	SnapshotEvery int    `yaml:"snapshot_every" mapstructure:"snapshot_every"`
}

// LogConfig controls the logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Catalog:            "solar",
			AsteroidCount:      500,
			Seed:               nbody.DefaultSeed,
			FPS:                60,
			TimeMultiplierDays: 10,
			Seconds:            10,
			Policy:             nbody.StarDominant.String(),
			Accumulator:        nbody.AccumulateCarry.String(),
			Degenerate:         nbody.DegeneratePropagate.String(),
			MinSeparation:      nbody.DefaultMinSeparation,
			Workers:            1,
		},
		Output: OutputConfig{
			SnapshotEvery: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// TimeStep returns the simulated seconds covered by one frame
func (c *Config) TimeStep() float32 {
	return float32(c.Simulation.TimeMultiplierDays * secondsPerDay / float64(c.Simulation.FPS))
}

// TotalSteps returns the number of frames a run covers
func (c *Config) TotalSteps() int {
	return int(c.Simulation.Seconds * float64(c.Simulation.FPS))
}

// SimulationOptions maps the config onto the force policy and simulation
// options
func (c *Config) SimulationOptions(logger *log.Logger) (nbody.ForcePolicy, []nbody.Option, error) {
	policy, err := nbody.ParseForcePolicy(c.Simulation.Policy)
	if err != nil {
		return 0, nil, err
	}
	mode, err := nbody.ParseAccumulatorMode(c.Simulation.Accumulator)
	if err != nil {
		return 0, nil, err
	}
	degenerate, err := nbody.ParseDegeneratePolicy(c.Simulation.Degenerate)
	if err != nil {
		return 0, nil, err
	}

	return policy, []nbody.Option{
		nbody.WithSeed(c.Simulation.Seed),
		nbody.WithAligned(c.Simulation.Aligned),
		nbody.WithAccumulatorMode(mode),
		nbody.WithDegeneratePolicy(degenerate),
		nbody.WithMinSeparation(c.Simulation.MinSeparation),
		nbody.WithSkipAsteroidPairs(c.Simulation.SkipAsteroidPairs),
		nbody.WithWorkers(c.Simulation.Workers),
		nbody.WithLogger(logger),
	}, nil
}

// LoadConfig reads the config file at path, or searches the default
// locations when path is empty. Missing files yield the defaults;
// ORBITALSIM_* environment variables override both.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, configDirName))
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, c *Config) {
	s := c.Simulation
	v.SetDefault("simulation.catalog", s.Catalog)
	v.SetDefault("simulation.asteroid_count", s.AsteroidCount)
	v.SetDefault("simulation.seed", s.Seed)
	v.SetDefault("simulation.aligned", s.Aligned)
	v.SetDefault("simulation.fps", s.FPS)
	v.SetDefault("simulation.time_multiplier_days", s.TimeMultiplierDays)
	v.SetDefault("simulation.seconds", s.Seconds)
	v.SetDefault("simulation.policy", s.Policy)
	v.SetDefault("simulation.accumulator", s.Accumulator)
	v.SetDefault("simulation.degenerate", s.Degenerate)
	v.SetDefault("simulation.min_separation", s.MinSeparation)
	v.SetDefault("simulation.skip_asteroid_pairs", s.SkipAsteroidPairs)
	v.SetDefault("simulation.workers", s.Workers)
	v.SetDefault("output.snapshot_file", c.Output.SnapshotFile)
	v.SetDefault("output.snapshot_every", c.Output.SnapshotEvery)
	v.SetDefault("log.level", c.Log.Level)
}

// SaveConfig writes the configuration as YAML to path, or to the default
// location when path is empty, and returns the file written
func SaveConfig(config *Config, path string) (string, error) {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	s := config.Simulation

	if s.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", s.FPS)
	}
	if !(s.TimeMultiplierDays > 0) {
		return fmt.Errorf("time multiplier must be positive, got %g", s.TimeMultiplierDays)
	}
	if s.Seconds < 0 {
		return fmt.Errorf("seconds cannot be negative, got %g", s.Seconds)
	}
	if s.AsteroidCount < 0 {
		return fmt.Errorf("asteroid count cannot be negative, got %d", s.AsteroidCount)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", s.Workers)
	}
	if _, err := nbody.ParseForcePolicy(s.Policy); err != nil {
		return err
	}
	if _, err := nbody.ParseAccumulatorMode(s.Accumulator); err != nil {
		return err
	}
	if _, err := nbody.ParseDegeneratePolicy(s.Degenerate); err != nil {
		return err
	}

	if config.Output.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot interval cannot be negative, got %d", config.Output.SnapshotEvery)
	}

	if _, err := log.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the default config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, configDirName, "config.yaml"), nil
}
