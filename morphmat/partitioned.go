// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morphmat

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/asn-d6/morpher/dist"
)

// Partitioned is the two-level morphing matrix described in §3.4 of the
// Traffic Morphing paper: a top-level matrix between the source and
// target partition masses (Repr), plus one inter-partition matrix M_pq
// for every (p,q) pair of source/target partitions, used to keep a
// 1460x1460 LP tractable.
type Partitioned struct {
	source, target dist.Partitioned
	top            *Matrix            // k x k, columns indexed by source partition
	sub            map[[2]int]*Matrix // keyed by (targetPartition, sourcePartition) = (p, q)
}

// NewPartitioned assembles a Partitioned morphing matrix from a
// precomputed top-level matrix and the k² inter-partition matrices.
// sub must contain an entry for every (p, q) in [1,k]x[1,k] for which
// both source.Part(q) and target.Part(p) carry nonzero mass; pairs
// touching an empty partition are never sampled (PartitionIndex never
// produces a source index in an empty partition, since source.Base()
// and source itself are the same distribution).
func NewPartitioned(source, target dist.Partitioned, top *Matrix, sub map[[2]int]*Matrix) (*Partitioned, error) {
	if source.K() != target.K() || source.M() != target.M() {
		return nil, fmt.Errorf("morphmat: source and target partition shapes differ (%dx%d vs %dx%d)",
			source.K(), source.M(), target.K(), target.M())
	}
	return &Partitioned{source: source, target: target, top: top, sub: sub}, nil
}

// K returns the number of partitions.
func (p *Partitioned) K() int { return p.source.K() }

// M returns the partition size.
func (p *Partitioned) M() int { return p.source.M() }

// Top returns the k×k top-level morphing matrix between partition
// masses.
func (p *Partitioned) Top() *Matrix { return p.top }

// Sub returns the m×m inter-partition matrix for target partition p,
// source partition q, and whether one was supplied.
func (p *Partitioned) Sub(p_, q int) (*Matrix, bool) {
	m, ok := p.sub[[2]int{p_, q}]
	return m, ok
}

// SampleTarget implements the two-level sampling contract: the source
// partition is *determined* by sLen, the target top-level partition is
// *sampled* from Top(), and the within-partition target index is then
// sampled from the corresponding M_pq. rTop and rSub are optional
// injected uniforms for the two draws (nil means "draw fresh from
// rnd").
func (p *Partitioned) SampleTarget(sLen int, rTop, rSub *float64, rnd *rand.Rand) (int, error) {
	q, within := p.source.PartitionIndex(sLen)

	targetPartition := p.top.SampleTarget(q, rTop, rnd)

	sub, ok := p.Sub(targetPartition, q)
	if !ok {
		return 0, fmt.Errorf("morphmat: no inter-partition matrix for (target=%d, source=%d)", targetPartition, q)
	}
	targetWithin := sub.SampleTarget(within, rSub, rnd)

	return p.target.Length(targetPartition, targetWithin), nil
}

// Sample implements packetmorph.TargetSampler with fresh draws for both
// the top-level and inter-partition steps.
func (p *Partitioned) Sample(sLen int, rnd *rand.Rand) (int, error) {
	return p.SampleTarget(sLen, nil, nil, rnd)
}

// Materialize composes Top and every Sub matrix into a single dense n×n
// morphing matrix, where n = K()*M(): for source length j in partition
// q, M[i,j] = sum over target partitions p of Top[p,q] * Sub(p,q)[i',j'].
// This is the same two-level contract SampleTarget draws from, summed
// over every outcome instead of sampled once; it exists so a
// partitioned solve can be handed to matio, which persists the flat
// coordinate format only.
func (p *Partitioned) Materialize() (*Matrix, error) {
	k, m := p.K(), p.M()
	n := k * m
	dense := mat.NewDense(n, n, nil)

	for q := 1; q <= k; q++ {
		topCol := p.top.Column(q)
		for targetPartition := 1; targetPartition <= k; targetPartition++ {
			topProb := topCol[targetPartition-1]
			if topProb == 0 {
				continue
			}
			sub, ok := p.Sub(targetPartition, q)
			if !ok {
				continue
			}
			for within := 1; within <= m; within++ {
				subCol := sub.Column(within)
				j := (q-1)*m + within
				for targetWithin := 1; targetWithin <= m; targetWithin++ {
					v := subCol[targetWithin-1]
					if v == 0 {
						continue
					}
					i := (targetPartition-1)*m + targetWithin
					dense.Set(i-1, j-1, dense.At(i-1, j-1)+topProb*v)
				}
			}
		}
	}

	return FromDense(dense)
}
