// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lpmodel encodes a source/target distribution pair as the
// minimum mean absolute deviation transportation LP of §3.3 of the
// Traffic Morphing paper, and decodes the solver's output back into a
// morphmat.Matrix. The LP itself is solved by
// gonum.org/v1/gonum/optimize/convex/lp -- a real, generic LP engine
// bound directly, rather than shelling out to glpsol the way
// _examples/original_source/morpheus.py does.
package lpmodel

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/asn-d6/morpher/dist"
	"github.com/asn-d6/morpher/morpherr"
	"github.com/asn-d6/morpher/morphmat"
)

// DefaultTol is the equality-constraint tolerance passed to the solver:
// constraints are honored to within 1e-6.
const DefaultTol = 1e-6

// SolveOptions configures a Solve or SolvePartitioned call.
type SolveOptions struct {
	// Tol is the LP equality-constraint tolerance. Zero means
	// DefaultTol.
	Tol float64

	// Deadline, if non-zero, bounds a partitioned solve.
	// SolvePartitioned checks it before starting each sub-LP; on expiry
	// the operation fails with morpherr.ErrDeadlineExceeded without
	// starting the next one. Solve itself does not check it, and a
	// sub-LP that has already started runs to completion.
	Deadline time.Time
}

func (o SolveOptions) tol() float64 {
	if o.Tol == 0 {
		return DefaultTol
	}
	return o.Tol
}

func (o SolveOptions) expired() bool {
	return !o.Deadline.IsZero() && time.Now().After(o.Deadline)
}

// Solve builds the morphing-matrix LP for the (source, target) pair and
// solves it via gonum's Simplex, returning the resulting morphing
// matrix. source and target must have equal length; Solve fails with
// morpherr.ErrInvalidArgument otherwise.
func Solve(source, target dist.Distribution, opts SolveOptions) (*morphmat.Matrix, error) {
	if source.Len() != target.Len() {
		return nil, &morpherr.InvalidArgument{
			Field:  "source, target",
			Reason: fmt.Sprintf("distributions have different lengths (%d vs %d)", source.Len(), target.Len()),
		}
	}
	if source.Len() == 0 {
		return nil, &morpherr.InvalidArgument{Field: "source", Reason: "distribution has zero length"}
	}

	n := source.Len()
	c, A, b := build(source, target)

	x, err := solveWithRetry(c, A, b, opts.tol())
	if err != nil {
		return nil, err
	}

	dense := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			dense.Set(i, j, x[idx(i, j, n)])
		}
	}
	return morphmat.FromDense(dense)
}

// build encodes the morphing-matrix LP in standard form (minimize c'x
// s.t. Ax = b, x >= 0), variables flattened column-major as M[i,j] ->
// x[idx(i,j,n)]. The two constraint blocks mirror
// _examples/original_source/morpheus.py's GLPK model almost line for
// line: "column_prob" (every column sums to 1) and "morphing_creation"
// (M applied to source reproduces target) -- except morpheus.py's GLPK
// model states all n column_prob rows plus all n morphing_creation rows,
// and GLPK's presolve silently drops the redundant one. The n
// column_prob rows and n morphing_creation rows are not independent:
// summing the morphing_creation rows reproduces Σ_j source[j]·column_prob_j,
// so together they have rank 2n-1, not 2n. lp.Simplex has no presolve and
// requires A to have full row rank, so the last column_prob row (j = n-1,
// implied by the other 2n-1) is omitted here, leaving 2n-1 rows.
func build(source, target dist.Distribution) (c []float64, A *mat.Dense, b []float64) {
	n := source.Len()
	nVars := n * n
	c = make([]float64, nVars)
	for j := 0; j < n; j++ {
		sj := source.At(j + 1)
		for i := 0; i < n; i++ {
			c[idx(i, j, n)] = sj * absInt(i-j)
		}
	}

	numColumnProb := n - 1
	A = mat.NewDense(numColumnProb+n, nVars, nil)
	b = make([]float64, numColumnProb+n)

	// column_prob: for each j < n-1, sum_i M[i,j] == 1. The j == n-1 row
	// is omitted; it is linearly dependent on the rest.
	for j := 0; j < numColumnProb; j++ {
		for i := 0; i < n; i++ {
			A.Set(j, idx(i, j, n), 1)
		}
		b[j] = 1
	}

	// morphing_creation: for each i, sum_j M[i,j]*source[j] == target[i].
	for i := 0; i < n; i++ {
		row := numColumnProb + i
		for j := 0; j < n; j++ {
			A.Set(row, idx(i, j, n), source.At(j+1))
		}
		b[row] = target.At(i + 1)
	}

	return c, A, b
}

func idx(i, j, n int) int { return j*n + i }

func absInt(x int) float64 {
	if x < 0 {
		x = -x
	}
	return float64(x)
}

// solveWithRetry calls lp.Simplex, retrying once on a transient solver
// failure; infeasibility is never retried since a second attempt
// cannot change the LP's feasibility.
func solveWithRetry(c []float64, A mat.Matrix, b []float64, tol float64) ([]float64, error) {
	_, x, err := lp.Simplex(c, A, b, tol, nil)
	if err == nil {
		return x, nil
	}
	if errors.Is(err, lp.ErrInfeasible) {
		return nil, fmt.Errorf("%w: %v", morpherr.ErrInfeasible, err)
	}

	// One retry on a transient backend failure.
	_, x, err = lp.Simplex(c, A, b, tol, nil)
	if err == nil {
		return x, nil
	}
	if errors.Is(err, lp.ErrInfeasible) {
		return nil, fmt.Errorf("%w: %v", morpherr.ErrInfeasible, err)
	}
	return nil, fmt.Errorf("%w: %v", morpherr.ErrSolver, err)
}
