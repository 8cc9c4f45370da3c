package analysis

import "errors"

// Analyzer failures. All of them are detected before any histogram or
// fit computation begins; no partial result is ever returned.
var (
	// ErrDimensionMismatch indicates a sample table whose variable
	// count disagrees with the CV descriptors.
	ErrDimensionMismatch = errors.New("analysis: sample table dimension mismatch")

	// ErrBinSpec indicates a bin specification that is neither one
	// count nor one count per dimension, or a non-positive count.
	ErrBinSpec = errors.New("analysis: invalid bin specification")

	// ErrBadSigma indicates a kernel-width list whose length disagrees
	// with the number of dimensions.
	ErrBadSigma = errors.New("analysis: sigma length mismatch")

	// ErrNoSamples indicates that no histogram cell received a sample.
	ErrNoSamples = errors.New("analysis: no populated bins to fit")

	// ErrSingularFit indicates the least-squares factorization itself
	// failed. Rank deficiency is not an error: it yields the
	// minimum-norm solution.
	ErrSingularFit = errors.New("analysis: least-squares factorization failed")
)
