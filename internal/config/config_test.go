package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Method != "morris" {
		t.Errorf("expected method morris, got %s", cfg.Method)
	}
	if cfg.Model != BuiltinModel {
		t.Errorf("expected built-in model, got %s", cfg.Model)
	}
	if cfg.Simulation.Step <= 0 {
		t.Error("step should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("morris", "screening")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Morris.Trajectories != 10 {
		t.Errorf("expected 10 trajectories, got %d", cfg.Morris.Trajectories)
	}

	cfg.Morris.Trajectories = 99
	if GetPreset("morris", "screening").Morris.Trajectories != 10 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("morris", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("sobol", "screening")
	if cfg != nil {
		t.Error("expected nil for nonexistent method")
	}
}

func TestFindPreset(t *testing.T) {
	cfg := FindPreset("ua-500")
	if cfg == nil {
		t.Fatal("expected ua-500 preset")
	}
	if cfg.LHS.Runs != 500 {
		t.Errorf("expected 500 runs, got %d", cfg.LHS.Runs)
	}
	if FindPreset("nope") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("lhd")
	if len(presets) == 0 {
		t.Error("expected presets for lhd")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent method")
	}
}

func TestPresetsValidate(t *testing.T) {
	for method, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", method, name, err)
			}
			if cfg.Method != method {
				t.Errorf("%s/%s: filed under the wrong method %q", method, name, cfg.Method)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown method", func(c *Config) { c.Method = "sobol" }},
		{"no runs", func(c *Config) { c.Method = "lhd"; c.LHS.Runs = 0 }},
		{"one level", func(c *Config) { c.Morris.Levels = 1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"no days", func(c *Config) { c.Simulation.Days = 0 }},
		{"warmup too long", func(c *Config) { c.Simulation.WarmupDays = c.Simulation.Days }},
		{"no step", func(c *Config) { c.Simulation.Step = 0 }},
		{"bad integrator", func(c *Config) { c.Simulation.Integrator = "verlet" }},
		{"bad control", func(c *Config) { c.Simulation.Control = "bangbang" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")

	cfg := DefaultConfig()
	cfg.Method = "lhd"
	cfg.LHS.Runs = 64
	cfg.Seed = 7
	cfg.Responses = []string{"heating_kwh"}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.LHS.Runs != 64 || loaded.Seed != 7 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if m, _ := loaded.DesignMethod(); m != design.MethodLHD {
		t.Errorf("expected lhd, got %s", m)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("method: lhd\nlhs:\n  runs: 20\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulation.Days != 14 {
		t.Errorf("expected default simulation days, got %g", cfg.Simulation.Days)
	}
	if cfg.Morris.Levels != 4 {
		t.Errorf("expected default morris levels, got %d", cfg.Morris.Levels)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/runs")
	t.Setenv(EnvSeed, "1234")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvLogLevel, "debug")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/tmp/runs" || cfg.Seed != 1234 || cfg.Workers != 3 || cfg.LogLevel != "debug" {
		t.Errorf("env not applied: %+v", cfg)
	}

	t.Setenv(EnvSeed, "abc")
	if err := DefaultConfig().ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric seed")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BEMUQ_WORKERS=5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvWorkers, "")
	os.Unsetenv(EnvWorkers)

	if err := LoadEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(EnvWorkers); got != "5" {
		t.Errorf("expected BEMUQ_WORKERS=5 from .env, got %q", got)
	}
}

func TestSetupLoggingUsesFileLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "debug.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	defer logging.SetLogger(logging.Log())

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	l, err := cfg.SetupLogging()
	if err != nil {
		t.Fatal(err)
	}
	if !l.V(logging.DEBUG).Enabled() {
		t.Error("debug verbosity from the config file not enabled")
	}
	if !logging.Log().V(logging.DEBUG).Enabled() {
		t.Error("process logger not replaced")
	}

	cfg.LogLevel = "loud"
	if _, err := cfg.SetupLogging(); err == nil {
		t.Error("expected error for unknown level")
	}
}
