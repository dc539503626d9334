// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morphmat

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/asn-d6/morpher/morpherr"
)

func identityDense(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

func TestFromDenseIdentity(t *testing.T) {
	m, err := FromDense(identityDense(5))
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}
	for j := 1; j <= 5; j++ {
		col := m.Column(j)
		for i, v := range col {
			want := 0.0
			if i+1 == j {
				want = 1
			}
			if v != want {
				t.Errorf("Column(%d)[%d] = %g, want %g", j, i, v, want)
			}
		}
	}
}

func TestFromDenseRejectsNonSquare(t *testing.T) {
	d := mat.NewDense(2, 3, nil)
	_, err := FromDense(d)
	if !errors.Is(err, morpherr.ErrNotStochastic) {
		t.Fatalf("error = %v, want ErrNotStochastic", err)
	}
}

func TestFromDenseRejectsBadColumnSum(t *testing.T) {
	d := mat.NewDense(2, 2, []float64{0.5, 0, 0.5, 0.5}) // col 1 sums to 1, col 2 sums to 0.5
	_, err := FromDense(d)
	if !errors.Is(err, morpherr.ErrNotStochastic) {
		t.Fatalf("error = %v, want ErrNotStochastic", err)
	}
}

// TestSampleTargetShift checks a 1-point mass source at 1 mapped
// entirely to a 1-point mass target at 5.
func TestSampleTargetShift(t *testing.T) {
	n := 5
	d := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		d.Set(4, j, 1) // every column morphs to length 5
	}
	m, err := FromDense(d)
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}
	if got := m.SampleTarget(1, nil, nil); got != 5 {
		t.Errorf("SampleTarget(1) = %d, want 5", got)
	}
}

// TestPotentialAndSampleTarget checks a worked example: column 85
// has nonzeros at {981:0.082, 982:0.199, 983:0.095, 984:0.100, 985:0.150,
// 986:0.374}; SampleTarget(85, 0.3) == 983 and SampleTarget(85, 0.6) ==
// 985.
func TestPotentialAndSampleTarget(t *testing.T) {
	n := 986
	entries := []Entry{
		{I: 981, J: 85, Value: 0.082},
		{I: 982, J: 85, Value: 0.199},
		{I: 983, J: 85, Value: 0.095},
		{I: 984, J: 85, Value: 0.100},
		{I: 985, J: 85, Value: 0.150},
		{I: 986, J: 85, Value: 0.374}, // rounds the column to sum to 1
	}
	// Pad every other column with an identity entry so FromEntries'
	// per-column stochasticity check passes.
	for j := 1; j <= n; j++ {
		if j == 85 {
			continue
		}
		entries = append(entries, Entry{I: j, J: j, Value: 1})
	}

	m, err := FromEntries(n, entries)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}

	pot := m.Potential(85)
	want := Potentials{
		{Length: 981, Probability: 0.082},
		{Length: 982, Probability: 0.199},
		{Length: 983, Probability: 0.095},
		{Length: 984, Probability: 0.100},
		{Length: 985, Probability: 0.150},
		{Length: 986, Probability: 0.374},
	}
	if diff := cmp.Diff(want, pot); diff != "" {
		t.Errorf("Potential(85) mismatch (-want +got):\n%s", diff)
	}

	r1, r2 := 0.3, 0.6
	if got := m.SampleTarget(85, &r1, nil); got != 983 {
		t.Errorf("SampleTarget(85, 0.3) = %d, want 983", got)
	}
	if got := m.SampleTarget(85, &r2, nil); got != 985 {
		t.Errorf("SampleTarget(85, 0.6) = %d, want 985", got)
	}
}

// TestSampleTargetZeroIsLegitimate checks that r == 0 returns the
// smallest index with nonzero cumulative probability, rather than
// being treated as "unset".
func TestSampleTargetZeroIsLegitimate(t *testing.T) {
	n := 3
	entries := []Entry{
		{I: 2, J: 1, Value: 0.4},
		{I: 3, J: 1, Value: 0.6},
		{I: 1, J: 2, Value: 1},
		{I: 1, J: 3, Value: 1},
	}
	m, err := FromEntries(n, entries)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	r := 0.0
	if got := m.SampleTarget(1, &r, nil); got != 2 {
		t.Errorf("SampleTarget(1, 0) = %d, want 2 (smallest nonzero-probability index)", got)
	}
}

func TestSampleTargetMonotonic(t *testing.T) {
	n := 3
	entries := []Entry{
		{I: 1, J: 1, Value: 0.2},
		{I: 2, J: 1, Value: 0.3},
		{I: 3, J: 1, Value: 0.5},
		{I: 2, J: 2, Value: 1},
		{I: 3, J: 3, Value: 1},
	}
	m, err := FromEntries(n, entries)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	prev := 0
	for _, r := range []float64{0, 0.1, 0.2, 0.3, 0.5, 0.7, 0.999} {
		r := r
		got := m.SampleTarget(1, &r, nil)
		if got < prev {
			t.Errorf("SampleTarget not monotonic: r=%g got %d after previous %d", r, got, prev)
		}
		prev = got
	}
}

func TestEntriesRoundTrip(t *testing.T) {
	m, err := FromDense(identityDense(4))
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}
	entries := m.Entries()
	m2, err := FromEntries(4, entries)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	for j := 1; j <= 4; j++ {
		c1, c2 := m.Column(j), m2.Column(j)
		for i := range c1 {
			if c1[i] != c2[i] {
				t.Errorf("column %d mismatch at %d: %g vs %g", j, i, c1[i], c2[i])
			}
		}
	}
}
