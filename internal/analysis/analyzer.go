// Package analysis reconstructs free-energy surfaces from recorded
// extended-variable samples and mean restraint forces.
package analysis

import (
	"fmt"

	"github.com/ufedsim/ufedsim/internal/cv"
	"github.com/ufedsim/ufedsim/internal/sample"
)

// Analyzer bins extended-variable samples over the declared CV ranges
// and keeps the populated cells as anchors for the kernel fit.
//
// Histogram holds the sample count of each populated cell, Centers the
// mean sampled position per dimension, and MeanForces the mean
// restraint force per dimension, all indexed by anchor in flattened
// row-major cell order. Construction is a single pass over the table;
// the result is never mutated afterwards.
type Analyzer struct {
	vars []cv.CollectiveVariable
	bins []int

	Histogram  []float64
	Centers    [][]float64
	MeanForces [][]float64
}

// New bins the table over the CV ranges. Table columns are matched to
// descriptors by id, so the CSV column order need not follow the
// descriptor order. bins is either a single count applied to every
// dimension or one count per dimension. Samples outside a declared
// range are dropped.
func New(vars []cv.CollectiveVariable, table *sample.Table, bins ...int) (*Analyzer, error) {
	n := len(vars)
	if table.Dim() != n {
		return nil, fmt.Errorf("%w: table has %d variables, descriptors have %d",
			ErrDimensionMismatch, table.Dim(), n)
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("%w: empty sample table", ErrNoSamples)
	}

	cols := make([]int, n)
	for d, v := range vars {
		cols[d] = -1
		for j, id := range table.IDs() {
			if id == v.ID {
				cols[d] = j
				break
			}
		}
		if cols[d] < 0 {
			return nil, fmt.Errorf("%w: table has no column for variable %q",
				ErrDimensionMismatch, v.ID)
		}
	}

	var perDim []int
	switch len(bins) {
	case 1:
		perDim = make([]int, n)
		for d := range perDim {
			perDim[d] = bins[0]
		}
	case n:
		perDim = append([]int(nil), bins...)
	default:
		return nil, fmt.Errorf("%w: got %d counts for %d dimensions", ErrBinSpec, len(bins), n)
	}
	for _, b := range perDim {
		if b < 1 {
			return nil, fmt.Errorf("%w: bin count %d", ErrBinSpec, b)
		}
	}

	cells := 1
	for _, b := range perDim {
		cells *= b
	}

	counts := make([]float64, cells)
	sumPos := make([][]float64, n)
	sumForce := make([][]float64, n)
	for d := 0; d < n; d++ {
		sumPos[d] = make([]float64, cells)
		sumForce[d] = make([]float64, cells)
	}

	idx := make([]int, n)
rows:
	for i := 0; i < table.Len(); i++ {
		for d := 0; d < n; d++ {
			_, s := table.At(i, cols[d])
			v := &vars[d]
			width := v.Range() / float64(perDim[d])
			j := int((s - v.MinValue) / width)
			if j == perDim[d] && s == v.MaxValue {
				j = perDim[d] - 1 // top edge belongs to the last bin
			}
			if j < 0 || j >= perDim[d] || s < v.MinValue {
				continue rows
			}
			idx[d] = j
		}
		flat := 0
		for d := 0; d < n; d++ {
			flat = flat*perDim[d] + idx[d]
		}
		counts[flat]++
		for d := 0; d < n; d++ {
			val, s := table.At(i, cols[d])
			sumPos[d][flat] += s
			sumForce[d][flat] += vars[d].RestraintForce(val, s)
		}
	}

	a := &Analyzer{
		vars:       append([]cv.CollectiveVariable(nil), vars...),
		bins:       perDim,
		Centers:    make([][]float64, n),
		MeanForces: make([][]float64, n),
	}
	for d := 0; d < n; d++ {
		a.Centers[d] = make([]float64, 0)
		a.MeanForces[d] = make([]float64, 0)
	}
	for flat := 0; flat < cells; flat++ {
		c := counts[flat]
		if c == 0 {
			continue
		}
		a.Histogram = append(a.Histogram, c)
		for d := 0; d < n; d++ {
			a.Centers[d] = append(a.Centers[d], sumPos[d][flat]/c)
			a.MeanForces[d] = append(a.MeanForces[d], sumForce[d][flat]/c)
		}
	}
	if len(a.Histogram) == 0 {
		return nil, fmt.Errorf("%w: all samples outside declared ranges", ErrNoSamples)
	}
	return a, nil
}

// Dim returns the number of collective variables.
func (a *Analyzer) Dim() int { return len(a.vars) }

// Anchors returns the number of populated bins.
func (a *Analyzer) Anchors() int { return len(a.Histogram) }
