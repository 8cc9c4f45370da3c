// Package ufed couples physical coordinates to extended variables at
// elevated temperature and drives the sampling loop.
package ufed

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/ufedsim/ufedsim/internal/cv"
	"github.com/ufedsim/ufedsim/internal/engine"
	"github.com/ufedsim/ufedsim/internal/integrators"
	"github.com/ufedsim/ufedsim/internal/model"
	"github.com/ufedsim/ufedsim/internal/sample"
)

// Observer is notified at every recording event.
type Observer interface {
	OnSample(step int, values, extended []float64)
}

// Config controls one sampling run.
type Config struct {
	Steps    int
	Interval int
	Seed     uint64
}

// Simulation owns the physical coordinates, the extended particles
// harmonically coupled to them, and implements engine.Engine for the
// integrator. Each collective variable is one designated coordinate of
// the model; general CV functions live behind the force engine and are
// out of scope here.
type Simulation struct {
	pot   model.Potential
	vars  []cv.CollectiveVariable
	coord []int
	nPhys int

	x, v, f engine.State
	m       []float64
	temps   []float64

	observers []Observer
}

// New validates the coupling setup and allocates state. masses holds
// one entry per model coordinate; extended masses come from the CV
// descriptors. temperature is the physical system temperature.
func New(pot model.Potential, masses []float64, temperature float64,
	vars []cv.CollectiveVariable, coords []int) (*Simulation, error) {

	nPhys := pot.Dim()
	if len(masses) != nPhys {
		return nil, fmt.Errorf("%w: %d masses for %d coordinates",
			engine.ErrDimensionMismatch, len(masses), nPhys)
	}
	if len(coords) != len(vars) {
		return nil, fmt.Errorf("%w: %d coordinates for %d variables",
			engine.ErrDimensionMismatch, len(coords), len(vars))
	}
	for _, m := range masses {
		if m <= 0 {
			return nil, engine.ErrUndefinedMass
		}
	}
	for i, v := range vars {
		if v.Mass <= 0 {
			return nil, fmt.Errorf("%w: variable %q", engine.ErrUndefinedMass, v.ID)
		}
		if coords[i] < 0 || coords[i] >= nPhys {
			return nil, fmt.Errorf("ufed: variable %q bound to coordinate %d of %d",
				v.ID, coords[i], nPhys)
		}
	}

	n := nPhys + len(vars)
	s := &Simulation{
		pot:   pot,
		vars:  append([]cv.CollectiveVariable(nil), vars...),
		coord: append([]int(nil), coords...),
		nPhys: nPhys,
		x:     make(engine.State, n),
		v:     make(engine.State, n),
		f:     make(engine.State, n),
		m:     make([]float64, n),
		temps: make([]float64, n),
	}
	copy(s.m, masses)
	for i := 0; i < nPhys; i++ {
		s.temps[i] = temperature
	}
	for j, v := range vars {
		s.m[nPhys+j] = v.Mass
		s.temps[nPhys+j] = v.Temperature
	}
	return s, nil
}

// AddObserver registers a recording-time callback.
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetPositions sets the physical coordinates and places each extended
// particle on top of its collective variable.
func (s *Simulation) SetPositions(x []float64) error {
	if len(x) != s.nPhys {
		return fmt.Errorf("%w: %d positions for %d coordinates",
			engine.ErrDimensionMismatch, len(x), s.nPhys)
	}
	copy(s.x[:s.nPhys], x)
	for j := range s.vars {
		s.x[s.nPhys+j] = s.vars[j].Fold(s.x[s.coord[j]])
	}
	return nil
}

// SetRandomVelocities draws every velocity from the Maxwell-Boltzmann
// distribution at its degree of freedom's temperature.
func (s *Simulation) SetRandomVelocities(seed uint64) {
	rng := rand.New(rand.NewSource(int64(seed)))
	for i := range s.v {
		s.v[i] = math.Sqrt(engine.Boltzmann*s.temps[i]/s.m[i]) * rng.NormFloat64()
	}
}

// Variables returns the CV descriptors in declaration order.
func (s *Simulation) Variables() []cv.CollectiveVariable { return s.vars }

// engine.Engine implementation.

func (s *Simulation) Masses() []float64        { return s.m }
func (s *Simulation) Positions() engine.State  { return s.x }
func (s *Simulation) Velocities() engine.State { return s.v }
func (s *Simulation) Forces() engine.State     { return s.f }

func (s *Simulation) ComputeForces() error {
	s.pot.Forces(s.x[:s.nPhys], s.f[:s.nPhys])
	for j := range s.vars {
		dx := s.vars[j].Wrap(s.x[s.coord[j]] - s.x[s.nPhys+j])
		k := s.vars[j].ForceConstant
		s.f[s.coord[j]] -= k * dx
		s.f[s.nPhys+j] = k * dx
	}
	return nil
}

// The built-in models carry no holonomic constraints, so both
// projections are identities.
func (s *Simulation) ConstrainPositions() error  { return nil }
func (s *Simulation) ConstrainVelocities() error { return nil }

func (s *Simulation) Temperatures() []float64 { return s.temps }

// Energy returns the potential energy including the coupling terms.
func (s *Simulation) Energy() float64 {
	e := s.pot.Energy(s.x[:s.nPhys])
	for j := range s.vars {
		e += s.vars[j].RestraintEnergy(s.x[s.coord[j]], s.x[s.nPhys+j])
	}
	return e
}

// Run advances the system cfg.Steps times with the given stepper and
// records CV and extended values every cfg.Interval steps. Periodic
// values are folded into their declared ranges before recording. The
// returned table is owned by the caller; the simulation never touches
// it again.
func (s *Simulation) Run(ctx context.Context, stepper integrators.Stepper, cfg Config) (*sample.Table, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("ufed: steps must be positive, got %d", cfg.Steps)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("ufed: recording interval must be positive, got %d", cfg.Interval)
	}

	ids := make([]string, len(s.vars))
	for j, v := range s.vars {
		ids[j] = v.ID
	}
	table := sample.New(ids...)

	values := make([]float64, len(s.vars))
	extended := make([]float64, len(s.vars))

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return table, ctx.Err()
		default:
		}

		if err := stepper.Step(s); err != nil {
			return nil, err
		}

		if i%cfg.Interval != 0 {
			continue
		}
		for j, v := range s.vars {
			values[j] = v.Fold(s.x[s.coord[j]])
			extended[j] = v.Fold(s.x[s.nPhys+j])
		}
		if err := table.Append(values, extended); err != nil {
			return nil, err
		}
		for _, o := range s.observers {
			o.OnSample(i, values, extended)
		}
	}
	return table, nil
}
