// Package model provides the built-in physical potentials driven by the
// sampling layer.
package model

import (
	"fmt"
	"math"
)

// Potential is a differentiable energy surface over particle
// coordinates. Forces writes -dV/dx into f, which must have length
// Dim().
type Potential interface {
	Dim() int
	Energy(x []float64) float64
	Forces(x, f []float64)
}

// Configurable mirrors the parameter access the models expose to the
// CLI layer.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// New builds a registered potential by name.
func New(name string) (Potential, error) {
	switch name {
	case "doublewell":
		return NewDoubleWell(), nil
	case "rotor":
		return NewRotor(), nil
	default:
		return nil, fmt.Errorf("model: unknown potential %q", name)
	}
}

// DoubleWell is a bistable quartic well V(x) = A*(x^2 - B)^2 with
// minima at +-sqrt(B). Its single coordinate is a natural non-periodic
// collective variable.
type DoubleWell struct {
	A, B float64
}

func NewDoubleWell() *DoubleWell {
	return &DoubleWell{A: 5, B: 1}
}

func (d *DoubleWell) Dim() int { return 1 }

func (d *DoubleWell) Energy(x []float64) float64 {
	q := x[0]*x[0] - d.B
	return d.A * q * q
}

func (d *DoubleWell) Forces(x, f []float64) {
	f[0] = -4 * d.A * x[0] * (x[0]*x[0] - d.B)
}

func (d *DoubleWell) GetParams() map[string]float64 {
	return map[string]float64{"A": d.A, "B": d.B}
}

func (d *DoubleWell) SetParam(name string, v float64) error {
	switch name {
	case "A":
		d.A = v
	case "B":
		d.B = v
	default:
		return fmt.Errorf("model: doublewell has no parameter %q", name)
	}
	return nil
}

// Rotor is a one-dimensional hindered rotor with a cosine barrier
// V(theta) = 0.5*Height*(1 + cos(Folds*theta)), a stand-in for a
// dihedral angle: its coordinate is periodic on [-pi, pi).
type Rotor struct {
	Height float64
	Folds  float64
}

func NewRotor() *Rotor {
	return &Rotor{Height: 10, Folds: 1}
}

func (r *Rotor) Dim() int { return 1 }

func (r *Rotor) Energy(x []float64) float64 {
	return 0.5 * r.Height * (1 + math.Cos(r.Folds*x[0]))
}

func (r *Rotor) Forces(x, f []float64) {
	f[0] = 0.5 * r.Height * r.Folds * math.Sin(r.Folds*x[0])
}

func (r *Rotor) GetParams() map[string]float64 {
	return map[string]float64{"height": r.Height, "folds": r.Folds}
}

func (r *Rotor) SetParam(name string, v float64) error {
	switch name {
	case "height":
		r.Height = v
	case "folds":
		r.Folds = v
	default:
		return fmt.Errorf("model: rotor has no parameter %q", name)
	}
	return nil
}
