package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FreeEnergy is a fitted kernel-superposition model of the potential of
// mean force. It is immutable once built: evaluation never re-solves.
type FreeEnergy struct {
	kernels []kernel
	anchors [][]float64
	weights []float64
	offset  float64
}

// FreeEnergy fits kernel weights so that the directional derivatives of
// the superposition match the negative observed mean forces at every
// anchor, in the least-squares sense.
//
// sigma sets the kernel width: none derives per-dimension variances
// from the bin widths, one value applies everywhere, and one value per
// dimension is used as given. The stacked system is often
// rank-deficient: in one dimension the gradient matrix is skew
// symmetric, hence singular whenever the anchor count is odd. It is
// solved through an SVD with a relative singular-value cutoff, yielding
// the minimum-norm solution; any rank deficiency shows up as a bounded
// residual in the reproduced anchor forces, not as a failure.
func (a *Analyzer) FreeEnergy(sigma ...float64) (*FreeEnergy, error) {
	n := a.Dim()
	m := a.Anchors()
	if m == 0 {
		return nil, ErrNoSamples
	}

	for _, s := range sigma {
		if s <= 0 {
			return nil, fmt.Errorf("%w: sigma must be positive, got %g", ErrBadSigma, s)
		}
	}
	variances := make([]float64, n)
	switch len(sigma) {
	case 0:
		for d, v := range a.vars {
			w := v.Range() / float64(a.bins[d])
			variances[d] = w * w
		}
	case 1:
		for d := range variances {
			variances[d] = sigma[0] * sigma[0]
		}
	case n:
		for d, s := range sigma {
			variances[d] = s * s
		}
	default:
		return nil, fmt.Errorf("%w: got %d values for %d dimensions", ErrBadSigma, len(sigma), n)
	}

	kernels := make([]kernel, n)
	for d, v := range a.vars {
		if v.Periodic {
			kernels[d] = periodicKernel{variance: variances[d], factor: 2 * math.Pi / v.Range()}
		} else {
			kernels[d] = gaussianKernel{variance: variances[d]}
		}
	}

	anchors := make([][]float64, m)
	for i := 0; i < m; i++ {
		anchors[i] = make([]float64, n)
		for d := 0; d < n; d++ {
			anchors[i][d] = a.Centers[d][i]
		}
	}

	f := &FreeEnergy{kernels: kernels, anchors: anchors}

	// One equation per anchor and dimension: the fitted mean force at
	// an anchor must reproduce the observed one. Rows are stacked
	// dimension-major, anchor-minor; columns index anchor weights.
	coeffs := mat.NewDense(n*m, m, nil)
	rhs := mat.NewVecDense(n*m, nil)
	for i := 0; i < n; i++ {
		for ai := 0; ai < m; ai++ {
			r := i*m + ai
			for c := 0; c < m; c++ {
				coeffs.Set(r, c, f.gradient(anchors[ai], anchors[c], i))
			}
			rhs.SetVec(r, -a.MeanForces[i][ai])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(coeffs, mat.SVDThin) {
		return nil, ErrSingularFit
	}
	// Relative cutoff on singular values: machine epsilon scaled by
	// the larger matrix dimension, after numpy's lstsq default.
	const eps = 2.220446049250313e-16
	rank := svd.Rank(eps * float64(n*m))
	if rank == 0 {
		return nil, ErrSingularFit
	}

	var w mat.VecDense
	svd.SolveVecTo(&w, rhs, rank)
	f.weights = make([]float64, m)
	for c := range f.weights {
		f.weights[c] = w.AtVec(c)
	}

	// Zero-floor shift: the fitted surface's minimum over the anchor
	// set becomes zero.
	at := make([]float64, m)
	for i, x := range anchors {
		at[i] = f.superposition(x)
	}
	f.offset = floats.Min(at)
	return f, nil
}

// kernelValue is the separable multidimensional kernel centered at c.
func (f *FreeEnergy) kernelValue(x, c []float64) float64 {
	sum := 0.0
	for d, k := range f.kernels {
		sum += k.exponent(x[d] - c[d])
	}
	return math.Exp(sum)
}

// gradient is the partial derivative of kernelValue along dir.
func (f *FreeEnergy) gradient(x, c []float64, dir int) float64 {
	return f.kernelValue(x, c) * f.kernels[dir].derivative(x[dir]-c[dir])
}

func (f *FreeEnergy) superposition(x []float64) float64 {
	sum := 0.0
	for c, anchor := range f.anchors {
		sum += f.weights[c] * f.kernelValue(x, anchor)
	}
	return sum
}

// Dim returns the number of collective variables of the fit.
func (f *FreeEnergy) Dim() int { return len(f.kernels) }

func (f *FreeEnergy) checkPoint(x []float64) {
	if len(x) != len(f.kernels) {
		panic(fmt.Sprintf("analysis: point has %d coordinates, fit has %d dimensions",
			len(x), len(f.kernels)))
	}
}

// At evaluates the potential of mean force at a point, shifted so the
// minimum over the anchors is zero.
func (f *FreeEnergy) At(x ...float64) float64 {
	f.checkPoint(x)
	return f.superposition(x) - f.offset
}

// MeanForceAt evaluates the mean force along dimension dir at a point:
// the negative analytic derivative of the fitted potential.
func (f *FreeEnergy) MeanForceAt(dir int, x ...float64) float64 {
	f.checkPoint(x)
	sum := 0.0
	for c, anchor := range f.anchors {
		sum += f.weights[c] * f.gradient(x, anchor, dir)
	}
	return -sum
}

// Profile evaluates the potential at each point independently.
func (f *FreeEnergy) Profile(points [][]float64) []float64 {
	out := make([]float64, len(points))
	for i, x := range points {
		out[i] = f.At(x...)
	}
	return out
}

// MeanForceProfile evaluates the mean force along dir at each point
// independently.
func (f *FreeEnergy) MeanForceProfile(dir int, points [][]float64) []float64 {
	out := make([]float64, len(points))
	for i, x := range points {
		out[i] = f.MeanForceAt(dir, x...)
	}
	return out
}
