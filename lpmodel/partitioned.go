// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpmodel

import (
	"github.com/asn-d6/morpher/dist"
	"github.com/asn-d6/morpher/morpherr"
	"github.com/asn-d6/morpher/morphmat"
)

// SolvePartitioned implements the two-level decomposition described in
// §3.4 of the Traffic Morphing paper: one k×k LP between the
// partitions' total masses, plus one m×m LP for every (target
// partition, source partition) pair in which both partitions carry
// nonzero mass -- at most k²+1 small LPs instead of one (k*m)×(k*m) LP, which
// keeps each sub-LP's simplex tableau small enough to solve quickly.
//
// opts.Deadline, if set, is checked before every sub-LP; on expiry the
// current sub-LP is abandoned and SolvePartitioned fails with
// morpherr.ErrDeadlineExceeded without starting another.
func SolvePartitioned(source, target dist.Partitioned, opts SolveOptions) (*morphmat.Partitioned, error) {
	if source.K() != target.K() || source.M() != target.M() {
		return nil, &morpherr.InvalidArgument{
			Field:  "source, target",
			Reason: "partition shapes differ",
		}
	}

	if opts.expired() {
		return nil, morpherr.ErrDeadlineExceeded
	}
	sourceRepr, err := source.Repr()
	if err != nil {
		return nil, err
	}
	targetRepr, err := target.Repr()
	if err != nil {
		return nil, err
	}
	top, err := Solve(sourceRepr, targetRepr, opts)
	if err != nil {
		return nil, err
	}

	sub := make(map[[2]int]*morphmat.Matrix)
	k := source.K()
	for q := 1; q <= k; q++ {
		sourcePart, ok := source.Part(q)
		if !ok {
			continue // empty source partition is never addressed by PartitionIndex
		}
		for p := 1; p <= k; p++ {
			targetPart, ok := target.Part(p)
			if !ok {
				continue
			}
			if opts.expired() {
				return nil, morpherr.ErrDeadlineExceeded
			}
			m, err := Solve(sourcePart, targetPart, opts)
			if err != nil {
				return nil, err
			}
			sub[[2]int{p, q}] = m
		}
	}

	return morphmat.NewPartitioned(source, target, top, sub)
}
