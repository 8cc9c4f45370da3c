package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufedsim/ufedsim/internal/cv"
	"github.com/ufedsim/ufedsim/internal/sample"
)

func linearCV() cv.CollectiveVariable {
	return cv.CollectiveVariable{
		ID:            "x",
		MinValue:      -1,
		MaxValue:      1,
		ForceConstant: 500,
	}
}

func TestBinningMeansAndForces(t *testing.T) {
	x := linearCV()
	tab := sample.New("x")
	// Two samples in the same bin, displaced symmetrically: the center
	// is their mean and the mean force follows the harmonic restraint.
	require.NoError(t, tab.Append([]float64{0.12}, []float64{0.10}))
	require.NoError(t, tab.Append([]float64{0.16}, []float64{0.14}))

	a, err := New([]cv.CollectiveVariable{x}, tab, 10)
	require.NoError(t, err)

	require.Equal(t, 1, a.Anchors())
	assert.Equal(t, []float64{2}, a.Histogram)
	assert.InDelta(t, 0.12, a.Centers[0][0], 1e-12)
	assert.InDelta(t, 500*0.02, a.MeanForces[0][0], 1e-9)
}

func TestZeroCountBinsExcluded(t *testing.T) {
	x := linearCV()
	tab := sample.New("x")
	// Populate only the first and last of 10 bins.
	require.NoError(t, tab.Append([]float64{-0.95}, []float64{-0.95}))
	require.NoError(t, tab.Append([]float64{0.95}, []float64{0.95}))

	a, err := New([]cv.CollectiveVariable{x}, tab, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, a.Anchors())
	assert.Len(t, a.Centers[0], 2)
	assert.Len(t, a.MeanForces[0], 2)
	assert.Less(t, a.Centers[0][0], 0.0)
	assert.Greater(t, a.Centers[0][1], 0.0)
}

func TestOutOfRangeSamplesDropped(t *testing.T) {
	x := linearCV()
	tab := sample.New("x")
	require.NoError(t, tab.Append([]float64{0}, []float64{0}))
	require.NoError(t, tab.Append([]float64{0}, []float64{1.5}))
	require.NoError(t, tab.Append([]float64{0}, []float64{-1.5}))

	a, err := New([]cv.CollectiveVariable{x}, tab, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Anchors())
	assert.Equal(t, []float64{1}, a.Histogram)
}

func TestTopEdgeClampsIntoLastBin(t *testing.T) {
	x := linearCV()
	tab := sample.New("x")
	require.NoError(t, tab.Append([]float64{1}, []float64{1}))

	a, err := New([]cv.CollectiveVariable{x}, tab, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Anchors())
	assert.InDelta(t, 1.0, a.Centers[0][0], 1e-12)
}

func TestEmptyTableIsInsufficientData(t *testing.T) {
	_, err := New([]cv.CollectiveVariable{linearCV()}, sample.New("x"), 10)
	assert.True(t, errors.Is(err, ErrNoSamples))
}

func TestDimensionMismatch(t *testing.T) {
	tab := sample.New("x", "y")
	require.NoError(t, tab.Append([]float64{0, 0}, []float64{0, 0}))

	_, err := New([]cv.CollectiveVariable{linearCV()}, tab, 10)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestColumnsMatchedByID(t *testing.T) {
	a := cv.CollectiveVariable{ID: "a", MinValue: 0, MaxValue: 1, ForceConstant: 100}
	b := cv.CollectiveVariable{ID: "b", MinValue: 10, MaxValue: 11, ForceConstant: 100}

	// Disjoint ranges and reversed column order: positional pairing
	// would drop every sample as out of range.
	tab := sample.New("b", "a")
	require.NoError(t, tab.Append([]float64{10.52, 0.48}, []float64{10.5, 0.5}))

	an, err := New([]cv.CollectiveVariable{a, b}, tab, 2)
	require.NoError(t, err)
	require.Equal(t, 1, an.Anchors())
	assert.InDelta(t, 0.5, an.Centers[0][0], 1e-12)
	assert.InDelta(t, 10.5, an.Centers[1][0], 1e-12)
	assert.InDelta(t, 100*-0.02, an.MeanForces[0][0], 1e-9)
	assert.InDelta(t, 100*0.02, an.MeanForces[1][0], 1e-9)

	missing := sample.New("b", "c")
	require.NoError(t, missing.Append([]float64{10.5, 0}, []float64{10.5, 0}))
	_, err = New([]cv.CollectiveVariable{a, b}, missing, 2)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestBadBinSpec(t *testing.T) {
	tab := sample.New("x")
	require.NoError(t, tab.Append([]float64{0}, []float64{0}))
	vars := []cv.CollectiveVariable{linearCV()}

	_, err := New(vars, tab, 10, 10)
	assert.True(t, errors.Is(err, ErrBinSpec))

	_, err = New(vars, tab, 0)
	assert.True(t, errors.Is(err, ErrBinSpec))
}

func TestDeterministicConstruction(t *testing.T) {
	x := linearCV()
	tab := sample.New("x")
	for i := 0; i < 200; i++ {
		s := -0.9 + 1.8*float64(i)/199
		require.NoError(t, tab.Append([]float64{s + 0.01*math.Sin(float64(i))}, []float64{s}))
	}
	vars := []cv.CollectiveVariable{x}

	a1, err := New(vars, tab, 20)
	require.NoError(t, err)
	a2, err := New(vars, tab, 20)
	require.NoError(t, err)

	assert.Equal(t, a1.Histogram, a2.Histogram)
	assert.Equal(t, a1.Centers, a2.Centers)
	assert.Equal(t, a1.MeanForces, a2.MeanForces)

	f1, err := a1.FreeEnergy()
	require.NoError(t, err)
	f2, err := a2.FreeEnergy()
	require.NoError(t, err)
	assert.Equal(t, f1.weights, f2.weights)
}

func TestTwoDimensionalBinning(t *testing.T) {
	phi := cv.CollectiveVariable{ID: "phi", MinValue: -math.Pi, MaxValue: math.Pi,
		Periodic: true, ForceConstant: 1000}
	x := linearCV()
	tab := sample.New("phi", "x")
	require.NoError(t, tab.Append([]float64{-3, -0.5}, []float64{-3, -0.5}))
	require.NoError(t, tab.Append([]float64{3, 0.5}, []float64{3, 0.5}))
	require.NoError(t, tab.Append([]float64{3, 0.5}, []float64{3, 0.5}))

	a, err := New([]cv.CollectiveVariable{phi, x}, tab, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Anchors())
	assert.Equal(t, []float64{1, 2}, a.Histogram)
}
