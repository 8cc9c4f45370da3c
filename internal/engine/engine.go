// Package engine defines the boundary between the integrator and
// whatever computes forces and enforces constraints.
//
// The integrator never inspects the physics behind an [Engine]; it only
// reads and writes the per-degree-of-freedom arrays the engine exposes
// and asks it to recompute forces or project state back onto any
// constraint manifold. Failures on that side are fatal to the step and
// propagate unchanged.
package engine

import (
	"errors"
	"math"
)

// Boltzmann is the molar gas constant in kJ/(mol K), the thermal scale
// used for all kT products.
const Boltzmann = 8.31446261815324e-3

// State is a flat per-degree-of-freedom vector (positions, velocities,
// or forces).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Engine is the force/constraint side of the integration step. The
// slices returned by Masses, Positions, Velocities and Forces are live
// views: the integrator mutates positions and velocities in place, and
// Forces must reflect the most recent ComputeForces call.
type Engine interface {
	Masses() []float64
	Positions() State
	Velocities() State
	Forces() State

	// ComputeForces refreshes the force array from current positions.
	ComputeForces() error

	// ConstrainPositions projects positions onto the constraint
	// manifold. ConstrainVelocities removes velocity components
	// normal to it. Engines without holonomic constraints return nil
	// without touching state.
	ConstrainPositions() error
	ConstrainVelocities() error
}

// Thermostatted is implemented by engines whose degrees of freedom sit
// at different temperatures, such as extended variables elevated above
// the physical system. The integrator falls back to its construction
// temperature for engines that do not implement it.
type Thermostatted interface {
	Temperatures() []float64
}

// Domain errors surfaced by engine implementations.
var (
	// ErrUndefinedMass indicates a degree of freedom with a zero or
	// negative mass.
	ErrUndefinedMass = errors.New("engine: undefined or non-positive mass")

	// ErrInconsistentConstraints indicates constraint projection could
	// not converge.
	ErrInconsistentConstraints = errors.New("engine: inconsistent constraints")

	// ErrDimensionMismatch indicates engine arrays of unequal length.
	ErrDimensionMismatch = errors.New("engine: dimension mismatch between state arrays")
)
