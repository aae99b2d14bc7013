package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/integrators"
	"github.com/san-kum/bemuq/internal/logging"
	"github.com/san-kum/bemuq/internal/physics"
)

const (
	DefaultDataDir  = "./data"
	DefaultRuns     = 100
	BuiltinModel    = "small_office"
	BuiltinSim      = "reference"
	DefaultLogLevel = "info"
)

// Environment variables that override file values.
const (
	EnvDataDir  = "BEMUQ_DATA_DIR"
	EnvSeed     = "BEMUQ_SEED"
	EnvWorkers  = "BEMUQ_WORKERS"
	EnvLogLevel = "LOG_LEVEL"
)

type Config struct {
	Name    string `yaml:"name,omitempty"`
	Method  string `yaml:"method"`
	Seed    int64  `yaml:"seed"`
	Workers int    `yaml:"workers"`
	DataDir string `yaml:"data_dir"`
	Catalog string `yaml:"catalog"`
	// Model is a model file, or small_office for the built-in building.
	Model     string `yaml:"model"`
	Simulator string `yaml:"simulator"`
	FailFast  bool   `yaml:"fail_fast"`
	// Responses restricts analysis to these meters. Empty means all.
	Responses  []string            `yaml:"responses,omitempty"`
	LHS        design.LHSConfig    `yaml:"lhs"`
	Morris     design.MorrisConfig `yaml:"morris"`
	Simulation physics.Options     `yaml:"simulation"`
	LogLevel   string              `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Method:     string(design.MethodMorris),
		DataDir:    DefaultDataDir,
		Model:      BuiltinModel,
		Simulator:  BuiltinSim,
		LHS:        design.LHSConfig{Runs: DefaultRuns},
		Morris:     design.DefaultMorrisConfig(),
		Simulation: physics.DefaultOptions(),
		LogLevel:   DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Responses = append([]string(nil), c.Responses...)
	return &out
}

// DesignMethod parses Method.
func (c *Config) DesignMethod() (design.Method, error) {
	return design.ParseMethod(c.Method)
}

// Validate checks everything that can be checked before the catalog is read.
// Parameter-count dependent checks happen when the design is drawn.
func (c *Config) Validate() error {
	method, err := c.DesignMethod()
	if err != nil {
		return err
	}
	switch method {
	case design.MethodLHD:
		if err := c.LHS.Validate(1); err != nil {
			return err
		}
	case design.MethodMorris:
		if err := c.Morris.Validate(1); err != nil {
			return err
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	sim := c.Simulation
	if sim.Days <= 0 {
		return fmt.Errorf("config: simulation days must be positive, got %g", sim.Days)
	}
	if sim.WarmupDays < 0 || sim.WarmupDays >= sim.Days {
		return fmt.Errorf("config: warmup_days must be in [0, days), got %g", sim.WarmupDays)
	}
	if sim.Step <= 0 {
		return fmt.Errorf("config: simulation step must be positive, got %g", sim.Step)
	}
	if _, err := integrators.ByName(sim.Integrator); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch sim.Control {
	case "", physics.ControlIdeal, physics.ControlPID, physics.ControlNone:
	default:
		return fmt.Errorf("config: unknown simulation control %q", sim.Control)
	}
	return nil
}

// LoadEnv reads .env files into the process environment. Missing files are
// not an error; variables already set win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// SetupLogging installs the process logger at the configured level.
func (c *Config) SetupLogging() (logr.Logger, error) {
	l, err := logging.New(c.LogLevel)
	if err != nil {
		return l, fmt.Errorf("config: %w", err)
	}
	logging.SetLogger(l)
	return l, nil
}

// ApplyEnv overrides file values with BEMUQ_* and LOG_LEVEL variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}
