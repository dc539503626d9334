// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package morphmat implements the column-stochastic morphing matrix
// described in §3.3 of the Traffic Morphing paper, and its two-level
// partitioned counterpart: M[i,j] is the probability that an input of
// length j is rewritten to length i.
package morphmat

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/asn-d6/morpher/morpherr"
)

// StochasticTolerance bounds how far a column sum may be from 1: the
// [0.99999, 1.00001] window.
const StochasticTolerance = 1e-5

// zeroClamp is the threshold below which an entry is treated as exactly
// zero.
const zeroClamp = 1e-9

// Matrix is an immutable, column-stochastic n×n morphing matrix, stored
// in compressed-sparse-column form to match both the sparsity of the LP
// solution and the per-column access pattern of sampling. Matrix is
// safe for concurrent read-only use.
type Matrix struct {
	n      int
	colPtr []int     // length n+1; column j's entries are [colPtr[j-1], colPtr[j])
	rowIdx []int     // 1-based row index (length i) for each stored entry
	vals   []float64 // probability for each stored entry
}

// PotentialEntry is one (length, probability) pair yielded by Potential,
// the listing operation grounded on
// _examples/original_source/dream.py's get_potential.
type PotentialEntry struct {
	Length      int
	Probability float64
}

// Potentials is the ordered list Potential returns. Its String method
// renders the console listing dream.py's get_potential prints, for use
// by debug tooling.
type Potentials []PotentialEntry

func (p Potentials) String() string {
	var b strings.Builder
	for _, e := range p {
		fmt.Fprintf(&b, "%d -> %.6f\n", e.Length, e.Probability)
	}
	return b.String()
}

// FromDense validates m and builds a sparse Matrix from it. m must be
// square, and every column must sum to 1 within StochasticTolerance
// regardless of source mass (the matrix itself carries no notion of
// source mass; that lives in the Distribution that produced it).
// Entries with absolute value below 1e-9 are clamped to zero.
func FromDense(m *mat.Dense) (*Matrix, error) {
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: matrix is %dx%d, not square", morpherr.ErrNotStochastic, r, c)
	}
	n := r
	colPtr := make([]int, n+1)
	var rowIdx []int
	var vals []float64

	for j := 0; j < n; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			v := m.At(i, j)
			if v < zeroClamp && v > -zeroClamp {
				continue
			}
			sum += v
		}
		if !floats.EqualWithinAbs(sum, 1, StochasticTolerance) {
			return nil, fmt.Errorf("%w: column %d sums to %g", morpherr.ErrNotStochastic, j+1, sum)
		}
		for i := 0; i < n; i++ {
			v := m.At(i, j)
			if v < zeroClamp && v > -zeroClamp {
				continue
			}
			rowIdx = append(rowIdx, i+1)
			vals = append(vals, v)
		}
		colPtr[j+1] = len(rowIdx)
	}

	return &Matrix{n: n, colPtr: colPtr, rowIdx: rowIdx, vals: vals}, nil
}

// FromEntries builds a Matrix directly from a sparse coordinate list
// (1-based i, j), validating stochasticity the same way FromDense does.
// It is the counterpart FromDense lacks for loaders (matio) that never
// materialize a dense matrix.
func FromEntries(n int, entries []Entry) (*Matrix, error) {
	if n <= 0 {
		return nil, &morpherr.InvalidArgument{Field: "n", Reason: "matrix size must be positive"}
	}
	byCol := make([][]Entry, n)
	for _, e := range entries {
		if e.I < 1 || e.I > n || e.J < 1 || e.J > n {
			return nil, &morpherr.InvalidArgument{Field: "entries", Reason: fmt.Sprintf("index (%d,%d) out of range for size %d", e.I, e.J, n)}
		}
		if e.Value < zeroClamp && e.Value > -zeroClamp {
			continue
		}
		byCol[e.J-1] = append(byCol[e.J-1], e)
	}

	colPtr := make([]int, n+1)
	var rowIdx []int
	var vals []float64
	for j := 0; j < n; j++ {
		sum := 0.0
		for _, e := range byCol[j] {
			sum += e.Value
		}
		if !floats.EqualWithinAbs(sum, 1, StochasticTolerance) {
			return nil, fmt.Errorf("%w: column %d sums to %g", morpherr.ErrNotStochastic, j+1, sum)
		}
		col := byCol[j]
		sort.SliceStable(col, func(a, b int) bool { return col[a].I < col[b].I })
		for _, e := range col {
			rowIdx = append(rowIdx, e.I)
			vals = append(vals, e.Value)
		}
		colPtr[j+1] = len(rowIdx)
	}
	return &Matrix{n: n, colPtr: colPtr, rowIdx: rowIdx, vals: vals}, nil
}

// Entry is a single (row, column, value) coordinate, 1-based, as used by
// FromEntries and matio's sparse coordinate-list encoding.
type Entry struct {
	I, J  int
	Value float64
}

// N returns n, the matrix's dimension.
func (m *Matrix) N() int { return m.n }

// Column returns a dense copy of column j (1-based), length N().
func (m *Matrix) Column(j int) []float64 {
	m.checkIndex(j)
	col := make([]float64, m.n)
	for k := m.colPtr[j-1]; k < m.colPtr[j]; k++ {
		col[m.rowIdx[k]-1] = m.vals[k]
	}
	return col
}

// Potential yields every (length, probability) pair with probability > 0
// in column j (1-based), in ascending length order.
func (m *Matrix) Potential(j int) Potentials {
	m.checkIndex(j)
	var out Potentials
	for k := m.colPtr[j-1]; k < m.colPtr[j]; k++ {
		out = append(out, PotentialEntry{Length: m.rowIdx[k], Probability: m.vals[k]})
	}
	return out
}

// Entries returns every nonzero (row, col, value) triple, 1-based, in
// column-major order -- the form matio's sparse persistence writes out.
func (m *Matrix) Entries() []Entry {
	out := make([]Entry, 0, len(m.vals))
	for j := 0; j < m.n; j++ {
		for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			out = append(out, Entry{I: m.rowIdx[k], J: j + 1, Value: m.vals[k]})
		}
	}
	return out
}

// Dense materializes the matrix as a *mat.Dense, for callers that need
// random (i,j) access rather than the column-oriented sampling path.
func (m *Matrix) Dense() *mat.Dense {
	d := mat.NewDense(m.n, m.n, nil)
	for _, e := range m.Entries() {
		d.Set(e.I-1, e.J-1, e.Value)
	}
	return d
}

// SampleTarget draws a target length from column j (1-based) by
// inverse-CDF: let C_k = sum_{i<=k} M[i,j]; return the smallest k with
// r <= C_k. If r is nil, a fresh uniform [0,1) draw from rnd is used
// (or from the package-level source if rnd is nil too, mirroring
// stat/distuv's Src *rand.Rand nil-fallback convention). A value of
// r == 0 is a legitimate draw and returns the smallest index with
// nonzero cumulative probability -- it is not treated as "unset".
func (m *Matrix) SampleTarget(j int, r *float64, rnd *rand.Rand) int {
	m.checkIndex(j)
	v := draw(r, rnd)

	cdf := 0.0
	for k := m.colPtr[j-1]; k < m.colPtr[j]; k++ {
		cdf += m.vals[k]
		if v <= cdf {
			return m.rowIdx[k]
		}
	}
	// Rounding pushed r past the last CDF value; return n.
	return m.n
}

// Sample implements packetmorph.TargetSampler: it draws a fresh target
// length for sLen using the package-level or supplied RNG. It never
// errors; the error return exists so *Matrix and *Partitioned share one
// interface even though only the latter can fail (on a missing
// inter-partition matrix).
func (m *Matrix) Sample(sLen int, rnd *rand.Rand) (int, error) {
	return m.SampleTarget(sLen, nil, rnd), nil
}

func draw(r *float64, rnd *rand.Rand) float64 {
	if r != nil {
		return *r
	}
	if rnd != nil {
		return rnd.Float64()
	}
	return rand.Float64()
}

func (m *Matrix) checkIndex(j int) {
	if j < 1 || j > m.n {
		panic(fmt.Sprintf("morphmat: column %d out of range [1, %d]", j, m.n))
	}
}
