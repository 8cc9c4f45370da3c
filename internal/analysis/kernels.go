package analysis

import "math"

// kernel is one per-dimension factor of the separable interpolation
// kernel. exponent is the log of the factor at displacement dx, and
// derivative is d(exponent)/d(dx). Each instance carries its own
// captured variance, so per-dimension behavior stays independent.
type kernel interface {
	exponent(dx float64) float64
	derivative(dx float64) float64
}

// gaussianKernel serves non-periodic dimensions.
type gaussianKernel struct {
	variance float64
}

func (k gaussianKernel) exponent(dx float64) float64 {
	return -0.5 * dx * dx / k.variance
}

func (k gaussianKernel) derivative(dx float64) float64 {
	return -dx / k.variance
}

// periodicKernel serves periodic dimensions: a von Mises bump whose
// trigonometric form wraps displacements by construction. factor is
// 2*pi over the variable's range.
type periodicKernel struct {
	variance float64
	factor   float64
}

func (k periodicKernel) exponent(dx float64) float64 {
	return (math.Cos(k.factor*dx) - 1) / k.variance
}

func (k periodicKernel) derivative(dx float64) float64 {
	return -math.Sin(k.factor*dx) * k.factor / k.variance
}
