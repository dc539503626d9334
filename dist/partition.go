// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/asn-d6/morpher/morpherr"
)

// DefaultPartitions and DefaultPartitionSize are the production
// configuration from _examples/original_source/morpheus.py: 20
// partitions of 73 elements each, covering the 1460-byte MTU payload
// (20*73 == 1460).
const (
	DefaultPartitions    = 20
	DefaultPartitionSize = 73
)

// Partitioned is a Distribution decomposed into k equally sized
// contiguous partitions: Repr[p] is the total probability mass of
// partition p (1-based), and
// Part[p] is the conditional PMF over partition p (Part[p] sums to 1,
// or is empty when Repr[p] == 0).
type Partitioned struct {
	base Distribution
	k, m int
	repr []float64      // repr[p-1], length k
	part []Distribution // part[p-1], length k; zero value if repr[p-1] == 0
}

// Partition decomposes d into k equally sized partitions. It fails with
// morpherr.ErrBadPartition if d.Len() is not divisible by k.
func (d Distribution) Partition(k int) (Partitioned, error) {
	n := d.Len()
	if k <= 0 || n%k != 0 {
		return Partitioned{}, fmt.Errorf("%w: distribution length %d not divisible by %d", morpherr.ErrBadPartition, n, k)
	}
	m := n / k

	repr := make([]float64, k)
	part := make([]Distribution, k)
	for p := 0; p < k; p++ {
		block := d.p[p*m : (p+1)*m]
		mass := floats.Sum(block)
		repr[p] = mass
		if mass == 0 {
			continue // part[p] left as the zero value
		}
		cond := make([]float64, m)
		for i, v := range block {
			cond[i] = v / mass
		}
		// cond may be off from summing exactly to 1 by float rounding;
		// renormalize defensively so New's tolerance check passes.
		sum := floats.Sum(cond)
		if sum != 0 {
			floats.Scale(1/sum, cond)
		}
		pd, err := New(cond)
		if err != nil {
			return Partitioned{}, err
		}
		part[p] = pd
	}

	return Partitioned{base: d, k: k, m: m, repr: repr, part: part}, nil
}

// K returns the number of partitions.
func (pd Partitioned) K() int { return pd.k }

// M returns the size of each partition.
func (pd Partitioned) M() int { return pd.m }

// Base returns the original, un-partitioned Distribution.
func (pd Partitioned) Base() Distribution { return pd.base }

// Repr returns a Distribution over the k partitions, where Repr's index
// p is the total probability mass of partition p.
func (pd Partitioned) Repr() (Distribution, error) {
	return New(pd.repr)
}

// Part returns the conditional PMF over partition p (1-based), and
// whether that partition carries any probability mass. When ok is false
// the partition is empty (repr[p] == 0) and ret is the zero value.
func (pd Partitioned) Part(p int) (ret Distribution, ok bool) {
	if p < 1 || p > pd.k {
		panic(fmt.Sprintf("dist: partition %d out of range [1, %d]", p, pd.k))
	}
	d := pd.part[p-1]
	return d, d.Len() > 0
}

// PartitionIndex maps a 1-based length in [1, k*m] to its 1-based
// partition number and 1-based within-partition index: q = ceil(sLen/m),
// j' = ((sLen-1) mod m) + 1.
func (pd Partitioned) PartitionIndex(sLen int) (partition, within int) {
	if sLen < 1 || sLen > pd.k*pd.m {
		panic(fmt.Sprintf("dist: length %d out of range [1, %d]", sLen, pd.k*pd.m))
	}
	partition = (sLen-1)/pd.m + 1
	within = (sLen-1)%pd.m + 1
	return partition, within
}

// Length reconstructs a 1-based overall length from a 1-based partition
// number and within-partition index, the inverse of PartitionIndex:
// (p-1)*m + i'.
func (pd Partitioned) Length(partition, within int) int {
	return (partition-1)*pd.m + within
}
