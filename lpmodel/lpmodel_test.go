// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpmodel

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/asn-d6/morpher/dist"
	"github.com/asn-d6/morpher/morpherr"
)

func uniformDist(t *testing.T, n int) dist.Distribution {
	t.Helper()
	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}
	d, err := dist.New(p)
	if err != nil {
		t.Fatalf("dist.New: %v", err)
	}
	return d
}

func pointMass(t *testing.T, n, at int) dist.Distribution {
	t.Helper()
	p := make([]float64, n)
	p[at-1] = 1
	d, err := dist.New(p)
	if err != nil {
		t.Fatalf("dist.New: %v", err)
	}
	return d
}

// TestSolveIdentity checks that when S = T = uniform over {1..5}, the
// optimal M is the identity, with zero expected padding.
func TestSolveIdentity(t *testing.T) {
	d := uniformDist(t, 5)
	m, err := Solve(d, d, SolveOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for j := 1; j <= 5; j++ {
		col := m.Column(j)
		for i, v := range col {
			want := 0.0
			if i+1 == j {
				want = 1
			}
			if !floats.EqualWithinAbs(v, want, 1e-4) {
				t.Errorf("column %d entry %d = %g, want %g", j, i+1, v, want)
			}
		}
	}
}

// TestSolveShift checks that when S is a point mass at 1 and T a point
// mass at 5, M must map column 1 entirely to row 5.
func TestSolveShift(t *testing.T) {
	s := pointMass(t, 5, 1)
	tgt := pointMass(t, 5, 5)
	m, err := Solve(s, tgt, SolveOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	col := m.Column(1)
	for i, v := range col {
		want := 0.0
		if i+1 == 5 {
			want = 1
		}
		if !floats.EqualWithinAbs(v, want, 1e-4) {
			t.Errorf("column 1 entry %d = %g, want %g", i+1, v, want)
		}
	}
}

func TestSolveRejectsLengthMismatch(t *testing.T) {
	s := uniformDist(t, 3)
	tg := uniformDist(t, 4)
	_, err := Solve(s, tg, SolveOptions{})
	if !errors.Is(err, morpherr.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}

// TestSolveSatisfiesConstraints checks properties P1 (column
// stochasticity) and P2 (target production) on a non-trivial
// distribution pair.
func TestSolveSatisfiesConstraints(t *testing.T) {
	s, err := dist.New([]float64{0.1, 0.4, 0.2, 0.2, 0.1})
	if err != nil {
		t.Fatalf("dist.New: %v", err)
	}
	tg, err := dist.New([]float64{0.3, 0.1, 0.1, 0.1, 0.4})
	if err != nil {
		t.Fatalf("dist.New: %v", err)
	}
	m, err := Solve(s, tg, SolveOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	n := 5
	// P1: every column sums to 1 within 1e-5.
	for j := 1; j <= n; j++ {
		sum := 0.0
		for _, v := range m.Column(j) {
			sum += v
		}
		if !floats.EqualWithinAbs(sum, 1, 1e-5) {
			t.Errorf("column %d sums to %g, want 1", j, sum)
		}
	}

	// P2: ||M*S - T||_inf < 1e-5.
	ms := make([]float64, n)
	for j := 1; j <= n; j++ {
		col := m.Column(j)
		for i, v := range col {
			ms[i] += v * s.At(j)
		}
	}
	for i := 0; i < n; i++ {
		if diff := ms[i] - tg.At(i+1); diff > 1e-5 || diff < -1e-5 {
			t.Errorf("(M*S)[%d] = %g, want %g within 1e-5", i+1, ms[i], tg.At(i+1))
		}
	}
}

func TestBuildObjectiveWeightsBySourceMass(t *testing.T) {
	s, err := dist.New([]float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("dist.New: %v", err)
	}
	tg := s
	c, A, b := build(s, tg)
	if len(c) != 4 {
		t.Fatalf("len(c) = %d, want 4", len(c))
	}
	// c[idx(i,j,n)] = s[j]*|i-j|; for n=2 the only nonzero entries are
	// the off-diagonal ones, each weighted by 0.5.
	if got := c[idx(1, 0, 2)]; got != 0.5 {
		t.Errorf("c[idx(1,0)] = %g, want 0.5", got)
	}
	if got := c[idx(0, 0, 2)]; got != 0 {
		t.Errorf("c[idx(0,0)] = %g, want 0", got)
	}
	// A has (n-1) column_prob rows plus n morphing_creation rows: one
	// column_prob row is redundant and omitted so lp.Simplex sees a
	// full-rank constraint matrix.
	r, cnum := A.Dims()
	if r != 3 || cnum != 4 {
		t.Fatalf("A.Dims() = (%d,%d), want (3,4)", r, cnum)
	}
	if len(b) != 3 {
		t.Fatalf("len(b) = %d, want 3", len(b))
	}
}
