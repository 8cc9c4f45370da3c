package analysis

import (
	"math"
	"testing"
)

func TestPeriodicKernelWraps(t *testing.T) {
	r := 2 * math.Pi
	k := periodicKernel{variance: 0.25, factor: 2 * math.Pi / r}

	eps := 1e-4
	near := k.derivative(-eps)
	far := k.derivative(r - eps)

	if math.Signbit(near) != math.Signbit(far) {
		t.Fatalf("derivative sign flips across the wrap: %.8g vs %.8g", near, far)
	}
	if math.Abs(near-far) > 1e-9*math.Abs(near) {
		t.Errorf("derivative not wrapped: %.12g vs %.12g", near, far)
	}

	if d := k.exponent(0) - k.exponent(r); math.Abs(d) > 1e-12 {
		t.Errorf("exponent not periodic: difference %.3g", d)
	}
}

func TestGaussianKernelShape(t *testing.T) {
	k := gaussianKernel{variance: 4}

	if got := k.exponent(0); got != 0 {
		t.Errorf("exponent(0) = %g, want 0", got)
	}
	if got, want := k.exponent(2), -0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("exponent(2) = %g, want %g", got, want)
	}
	if got, want := k.derivative(2), -0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("derivative(2) = %g, want %g", got, want)
	}
}

func TestKernelsKeepOwnVariance(t *testing.T) {
	// Each instance captures its variance at construction; building
	// several in a loop must not alias the last one.
	variances := []float64{1, 4, 9}
	ks := make([]kernel, 0, len(variances))
	for _, v := range variances {
		ks = append(ks, gaussianKernel{variance: v})
	}
	for i, v := range variances {
		want := -1 / v
		if got := ks[i].derivative(1); math.Abs(got-want) > 1e-12 {
			t.Errorf("kernel %d: derivative(1) = %g, want %g", i, got, want)
		}
	}
}
