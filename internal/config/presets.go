package config

import "sort"

var Presets = map[string]map[string]*Config{
	"projectile": {
		"cannon": {
			Scenario: "projectile", Integrator: "rk4", Dt: 0.1, Duration: 10.0,
			Params: map[string]float64{"angle": 60, "speed": 50},
		},
		"lob": {
			Scenario: "projectile", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			Params: map[string]float64{"angle": 80, "speed": 60},
		},
		"flat": {
			Scenario: "projectile", Integrator: "rk4", Dt: 0.01, Duration: 5.0,
			Params: map[string]float64{"angle": 10, "speed": 100},
		},
		"moon": {
			Scenario: "projectile", Integrator: "rk4", Dt: 0.1, Duration: 60.0,
			Params: map[string]float64{"angle": 45, "speed": 50, "gravity": 1.62},
		},
		"euler": {
			Scenario: "projectile", Integrator: "euler", Dt: 0.1, Duration: 10.0,
			Params: map[string]float64{"angle": 60, "speed": 50},
		},
	},
	"rocket": {
		"sport": {
			Scenario: "rocket", Integrator: "rk4", Dt: 0.01, Duration: 60.0,
		},
		"vertical": {
			Scenario: "rocket", Integrator: "rk4", Dt: 0.01, Duration: 60.0,
			Params: map[string]float64{"rail_angle": 90},
		},
		"windy": {
			Scenario: "rocket", Integrator: "rk4", Dt: 0.01, Duration: 60.0,
			Params: map[string]float64{"rail_angle": 75, "rail_length": 1.5},
		},
		"heavy": {
			Scenario: "rocket", Integrator: "rk4", Dt: 0.01, Duration: 60.0,
			Params: map[string]float64{"dry_mass": 4.0, "inertia": 1.1},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names of a scenario in sorted order.
func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
