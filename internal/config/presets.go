package config

import (
	"sort"

	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/physics"
)

// Presets are grouped by design method.
var Presets = map[string]map[string]*Config{
	string(design.MethodMorris): {
		"screening": {
			Method: "morris", Model: BuiltinModel, Simulator: BuiltinSim, DataDir: DefaultDataDir, LogLevel: DefaultLogLevel,
			Morris:     design.MorrisConfig{Trajectories: 10, Levels: 4, Lower: 0.05, Upper: 0.95},
			Simulation: physics.Options{Days: 14, WarmupDays: 2, Step: 300, ResponseTime: 900, Integrator: "rk4"},
		},
		"quick-screen": {
			Method: "morris", Model: BuiltinModel, Simulator: BuiltinSim, DataDir: DefaultDataDir, LogLevel: DefaultLogLevel,
			Morris:     design.MorrisConfig{Trajectories: 4, Levels: 4, Lower: 0.05, Upper: 0.95},
			Simulation: physics.Options{Days: 7, WarmupDays: 1, Step: 600, ResponseTime: 900, Integrator: "rk4"},
		},
		"fine-screen": {
			Method: "morris", Model: BuiltinModel, Simulator: BuiltinSim, DataDir: DefaultDataDir, LogLevel: DefaultLogLevel,
			Morris:     design.MorrisConfig{Trajectories: 20, Levels: 6, Lower: 0.05, Upper: 0.95},
			Simulation: physics.Options{Days: 28, WarmupDays: 3, Step: 300, ResponseTime: 900, Integrator: "rk4"},
		},
	},
	string(design.MethodLHD): {
		"ua-100": {
			Method: "lhd", Model: BuiltinModel, Simulator: BuiltinSim, DataDir: DefaultDataDir, LogLevel: DefaultLogLevel,
			LHS:        design.LHSConfig{Runs: 100},
			Simulation: physics.Options{Days: 14, WarmupDays: 2, Step: 300, ResponseTime: 900, Integrator: "rk4"},
		},
		"ua-500": {
			Method: "lhd", Model: BuiltinModel, Simulator: BuiltinSim, DataDir: DefaultDataDir, LogLevel: DefaultLogLevel,
			LHS:        design.LHSConfig{Runs: 500},
			Simulation: physics.Options{Days: 14, WarmupDays: 2, Step: 600, ResponseTime: 900, Integrator: "rk4"},
		},
		"ua-centered": {
			Method: "lhd", Model: BuiltinModel, Simulator: BuiltinSim, DataDir: DefaultDataDir, LogLevel: DefaultLogLevel,
			LHS:        design.LHSConfig{Runs: 50, Centered: true},
			Simulation: physics.Options{Days: 14, WarmupDays: 2, Step: 300, ResponseTime: 900, Integrator: "rk4"},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(method, preset string) *Config {
	methodPresets, ok := Presets[method]
	if !ok {
		return nil
	}
	cfg, ok := methodPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// FindPreset looks a preset up by name alone. Preset names are unique
// across methods.
func FindPreset(preset string) *Config {
	for method := range Presets {
		if cfg := GetPreset(method, preset); cfg != nil {
			return cfg
		}
	}
	return nil
}

func ListPresets(method string) []string {
	methodPresets, ok := Presets[method]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(methodPresets))
	for name := range methodPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
