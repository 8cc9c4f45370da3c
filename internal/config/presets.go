package config

import "math"

// Presets are ready-to-run configurations per model.
var Presets = map[string]map[string]*Config{
	"doublewell": {
		"default": {
			Model: "doublewell", Masses: []float64{1}, InitState: []float64{1},
			Temperature: 300, Friction: 10, Dt: 0.002,
			Steps: 500000, Interval: 20, Rattles: 1, Walkers: 1, Bins: 30,
			Variables: []Variable{{
				ID: "x", Coordinate: 0, Min: -2, Max: 2,
				ForceConstant: 2000, Mass: 30, Temperature: 3000,
			}},
		},
		"shallow": {
			Model: "doublewell", Params: map[string]float64{"A": 2},
			Masses: []float64{1}, InitState: []float64{1},
			Temperature: 300, Friction: 10, Dt: 0.002,
			Steps: 200000, Interval: 20, Rattles: 1, Walkers: 1, Bins: 25,
			Variables: []Variable{{
				ID: "x", Coordinate: 0, Min: -2, Max: 2,
				ForceConstant: 2000, Mass: 30, Temperature: 1500,
			}},
		},
	},
	"rotor": {
		"default": {
			Model: "rotor", Masses: []float64{1}, InitState: []float64{0},
			Temperature: 300, Friction: 10, Dt: 0.002,
			Steps: 500000, Interval: 20, Rattles: 1, Walkers: 1, Bins: 36,
			Variables: []Variable{{
				ID: "phi", Coordinate: 0, Min: -math.Pi, Max: math.Pi, Periodic: true,
				ForceConstant: 1000, Mass: 30, Temperature: 1500,
			}},
		},
		"walkers": {
			Model: "rotor", Masses: []float64{1}, InitState: []float64{0},
			Temperature: 300, Friction: 10, Dt: 0.002,
			Steps: 150000, Interval: 20, Rattles: 1, Walkers: 4, Bins: 36,
			Variables: []Variable{{
				ID: "phi", Coordinate: 0, Min: -math.Pi, Max: math.Pi, Periodic: true,
				ForceConstant: 1000, Mass: 30, Temperature: 1500,
			}},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	return modelPresets[preset]
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
