// Package config loads and validates sampling run configurations.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ufedsim/ufedsim/internal/cv"
	"github.com/ufedsim/ufedsim/internal/model"
)

const (
	DefaultDt          = 0.002
	DefaultSteps       = 500000
	DefaultInterval    = 20
	DefaultTemperature = 300.0
	DefaultFriction    = 10.0
	DefaultRattles     = 1
	DefaultBins        = 30
	DefaultWalkers     = 1
)

// Variable is the YAML form of one collective variable and its
// extended-particle coupling.
type Variable struct {
	ID            string  `yaml:"id"`
	Coordinate    int     `yaml:"coordinate"`
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
	Periodic      bool    `yaml:"periodic"`
	ForceConstant float64 `yaml:"force_constant"`
	Mass          float64 `yaml:"mass"`
	Temperature   float64 `yaml:"temperature"`
	Sigma         float64 `yaml:"sigma"`
}

type Config struct {
	Model       string             `yaml:"model"`
	Params      map[string]float64 `yaml:"params,omitempty"`
	Masses      []float64          `yaml:"masses"`
	InitState   []float64          `yaml:"init_state"`
	Temperature float64            `yaml:"temperature"`
	Friction    float64            `yaml:"friction"`
	Dt          float64            `yaml:"dt"`
	Steps       int                `yaml:"steps"`
	Interval    int                `yaml:"interval"`
	Rattles     int                `yaml:"rattles"`
	Seed        uint64             `yaml:"seed"`
	Walkers     int                `yaml:"walkers"`
	Bins        int                `yaml:"bins"`
	Variables   []Variable         `yaml:"variables"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "doublewell",
		Masses:      []float64{1},
		InitState:   []float64{1},
		Temperature: DefaultTemperature,
		Friction:    DefaultFriction,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Interval:    DefaultInterval,
		Rattles:     DefaultRattles,
		Walkers:     DefaultWalkers,
		Bins:        DefaultBins,
		Variables: []Variable{{
			ID: "x", Coordinate: 0, Min: -2, Max: 2,
			ForceConstant: 2000, Mass: 30, Temperature: 3000,
		}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	// An explicit empty params block means the same as none at all.
	if len(cfg.Params) == 0 {
		cfg.Params = nil
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

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("config: interval must be positive, got %d", c.Interval)
	}
	if c.Walkers < 1 {
		return fmt.Errorf("config: walkers must be at least 1, got %d", c.Walkers)
	}
	if c.Rattles < 0 {
		return fmt.Errorf("config: rattles must be non-negative, got %d", c.Rattles)
	}
	if len(c.Variables) == 0 {
		return fmt.Errorf("config: at least one variable is required")
	}
	for _, v := range c.Variables {
		if v.Max <= v.Min {
			return fmt.Errorf("config: variable %q has empty range [%g, %g]", v.ID, v.Min, v.Max)
		}
	}
	return nil
}

// CollectiveVariables converts the variable blocks into descriptors.
func (c *Config) CollectiveVariables() []cv.CollectiveVariable {
	vars := make([]cv.CollectiveVariable, len(c.Variables))
	for i, v := range c.Variables {
		vars[i] = cv.CollectiveVariable{
			ID:            v.ID,
			MinValue:      v.Min,
			MaxValue:      v.Max,
			Periodic:      v.Periodic,
			ForceConstant: v.ForceConstant,
			Mass:          v.Mass,
			Temperature:   v.Temperature,
			Sigma:         v.Sigma,
		}
	}
	return vars
}

// Coordinates returns the model coordinate bound to each variable.
func (c *Config) Coordinates() []int {
	coords := make([]int, len(c.Variables))
	for i, v := range c.Variables {
		coords[i] = v.Coordinate
	}
	return coords
}

// Potential builds the configured model and applies parameter
// overrides.
func (c *Config) Potential() (model.Potential, error) {
	pot, err := model.New(c.Model)
	if err != nil {
		return nil, err
	}
	if len(c.Params) > 0 {
		cfg, ok := pot.(model.Configurable)
		if !ok {
			return nil, fmt.Errorf("config: model %q takes no parameters", c.Model)
		}
		for name, v := range c.Params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
	}
	return pot, nil
}
