// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

import (
	"errors"
	"testing"

	"github.com/asn-d6/morpher/morpherr"
)

// TestPartitionExample checks a worked example: distr = [0.2, 0.2, 0.1,
// 0.2, 0.1, 0.02, 0.08, 0.1] split into 4 partitions of 2 elements.
func TestPartitionExample(t *testing.T) {
	d, err := New([]float64{0.2, 0.2, 0.1, 0.2, 0.1, 0.02, 0.08, 0.1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pd, err := d.Partition(4)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	wantRepr := []float64{0.4, 0.3, 0.12, 0.18}
	repr, err := pd.Repr()
	if err != nil {
		t.Fatalf("Repr: %v", err)
	}
	for i, want := range wantRepr {
		if got := repr.At(i + 1); abs(got-want) > 1e-9 {
			t.Errorf("repr[%d] = %g, want %g", i+1, got, want)
		}
	}

	part1, ok := pd.Part(1)
	if !ok {
		t.Fatal("Part(1) reported empty")
	}
	if got, want := part1.At(1), 0.5; abs(got-want) > 1e-9 {
		t.Errorf("part[1][1] = %g, want %g", got, want)
	}
}

func TestPartitionRejectsNonDivisible(t *testing.T) {
	d, _ := New(uniform(7))
	_, err := d.Partition(3)
	if !errors.Is(err, morpherr.ErrBadPartition) {
		t.Fatalf("error = %v, want ErrBadPartition", err)
	}
}

func TestPartitionIndexRoundTrip(t *testing.T) {
	d, _ := New(uniform(DefaultPartitions * DefaultPartitionSize))
	pd, err := d.Partition(DefaultPartitions)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	for _, sLen := range []int{1, 73, 74, 1460, 900} {
		p, within := pd.PartitionIndex(sLen)
		if got := pd.Length(p, within); got != sLen {
			t.Errorf("Length(PartitionIndex(%d)) = %d, want %d", sLen, got, sLen)
		}
	}
}

func TestPartitionEmptyPartition(t *testing.T) {
	p := make([]float64, 4)
	p[0] = 1 // everything in partition 1
	d, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pd, err := d.Partition(2)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if _, ok := pd.Part(2); ok {
		t.Fatal("Part(2) reported non-empty for zero-mass partition")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
