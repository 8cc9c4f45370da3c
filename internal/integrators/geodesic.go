// Package integrators implements Langevin integration schemes over the
// engine interface.
package integrators

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/ufedsim/ufedsim/internal/engine"
)

// Stepper advances an engine's phase space by one timestep.
type Stepper interface {
	Step(e engine.Engine) error
}

type opKind int

const (
	opForceKick opKind = iota
	opDrift
	opConstrainPositions
	opConstrainVelocities
	opNoiseKick
)

// op is one typed phase-space update. scale is the fraction of the step
// size it spans: the kick half-step or the drift substep width.
type op struct {
	kind  opKind
	scale float64
}

// GeodesicBAOAB is a geodesic Langevin integrator with the symmetric
// splitting B-A-O-A-B: half force kicks (B), constrained drifts (A) and
// an Ornstein-Uhlenbeck velocity update (O) in the middle.
//
// rattles controls constraint handling: 0 disables all projection, 1
// applies a single positional correction per A-step, and n > 1 divides
// each A-step into n individually constrained substeps.
type GeodesicBAOAB struct {
	temperature float64
	friction    float64
	dt          float64
	rattles     int

	program []op
	z       float64
	rng     *rand.Rand

	x0     engine.State
	kt     []float64
	forced bool
}

// NewGeodesicBAOAB builds the fixed operation sequence for the given
// temperature, friction coefficient, step size and rattle count. The
// noise source starts from seed zero; use SetSeed for anything else.
func NewGeodesicBAOAB(temperature, friction, dt float64, rattles int) *GeodesicBAOAB {
	g := &GeodesicBAOAB{
		temperature: temperature,
		friction:    friction,
		dt:          dt,
		rattles:     rattles,
		z:           math.Exp(-friction * dt),
		rng:         rand.New(rand.NewSource(0)),
	}
	g.program = g.compile()
	return g
}

// SetSeed resets the noise generator. Identical seeds, states and
// engine responses reproduce trajectories bit for bit.
func (g *GeodesicBAOAB) SetSeed(seed uint64) {
	g.rng = rand.New(rand.NewSource(int64(seed)))
}

// Rattles reports the constraint-iteration count the scheme was built
// with.
func (g *GeodesicBAOAB) Rattles() int { return g.rattles }

// StepSize reports the timestep.
func (g *GeodesicBAOAB) StepSize() float64 { return g.dt }

func (g *GeodesicBAOAB) compile() []op {
	var p []op

	b := func() {
		p = append(p, op{opForceKick, 0.5})
		if g.rattles > 0 {
			p = append(p, op{opConstrainVelocities, 0})
		}
	}
	a := func() {
		n := max(1, g.rattles)
		h := 0.5 / float64(n)
		for i := 0; i < n; i++ {
			p = append(p, op{opDrift, h})
			if g.rattles > 0 {
				p = append(p, op{opConstrainPositions, h})
				p = append(p, op{opConstrainVelocities, 0})
			}
		}
	}
	o := func() {
		p = append(p, op{opNoiseKick, 1})
		if g.rattles > 0 {
			p = append(p, op{opConstrainVelocities, 0})
		}
	}

	b()
	a()
	o()
	a()
	b()
	return p
}

func (g *GeodesicBAOAB) ensureScratch(e engine.Engine, n int) {
	if len(g.x0) != n {
		g.x0 = make(engine.State, n)
		g.kt = make([]float64, n)
		g.forced = false
	}
	if th, ok := e.(engine.Thermostatted); ok {
		for i, t := range th.Temperatures() {
			g.kt[i] = engine.Boltzmann * t
		}
	} else {
		for i := range g.kt {
			g.kt[i] = engine.Boltzmann * g.temperature
		}
	}
}

// Step advances positions and velocities in place by one timestep. Any
// engine error aborts the step and is returned unchanged.
func (g *GeodesicBAOAB) Step(e engine.Engine) error {
	x := e.Positions()
	v := e.Velocities()
	m := e.Masses()
	g.ensureScratch(e, len(x))

	for _, o := range g.program {
		switch o.kind {
		case opForceKick:
			if !g.forced {
				if err := e.ComputeForces(); err != nil {
					return err
				}
				g.forced = true
			}
			f := e.Forces()
			h := o.scale * g.dt
			for i := range v {
				v[i] += h * f[i] / m[i]
			}

		case opDrift:
			h := o.scale * g.dt
			for i := range x {
				x[i] += h * v[i]
			}
			g.forced = false

		case opConstrainPositions:
			copy(g.x0, x)
			if err := e.ConstrainPositions(); err != nil {
				return err
			}
			inv := 1.0 / (o.scale * g.dt)
			for i := range v {
				v[i] += (x[i] - g.x0[i]) * inv
			}

		case opConstrainVelocities:
			if err := e.ConstrainVelocities(); err != nil {
				return err
			}

		case opNoiseKick:
			damp := math.Sqrt(1 - g.z*g.z)
			for i := range v {
				v[i] = g.z*v[i] + damp*math.Sqrt(g.kt[i]/m[i])*g.rng.NormFloat64()
			}
		}
	}
	return nil
}

// String renders the compiled operation sequence, one step per line.
func (g *GeodesicBAOAB) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "geodesic BAOAB (dt=%g, friction=%g, rattles=%d)\n", g.dt, g.friction, g.rattles)
	for i, o := range g.program {
		var line string
		switch o.kind {
		case opForceKick:
			line = fmt.Sprintf("v <- v + %g*dt*f/m", o.scale)
		case opDrift:
			line = fmt.Sprintf("x <- x + %g*dt*v", o.scale)
		case opConstrainPositions:
			line = fmt.Sprintf("constrain positions; v <- v + (x - x0)/(%g*dt)", o.scale)
		case opConstrainVelocities:
			line = "constrain velocities"
		case opNoiseKick:
			line = "v <- z*v + sqrt((1 - z*z)*kT/m)*gaussian"
		}
		fmt.Fprintf(&sb, "%4d: %s\n", i, line)
	}
	return sb.String()
}
