// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package packetmorph implements the per-packet size transformation
// described in _examples/original_source/analysis/gain.py's
// get_overhead_for_packet_size: given a source-drawn packet length, it
// produces a plan of pad-or-split segments that turns the packet into
// one or more target-distributed lengths.
package packetmorph

import (
	"golang.org/x/exp/rand"

	"github.com/asn-d6/morpher/dist"
	"github.com/asn-d6/morpher/morpherr"
)

// DefaultSplitPenalty is the per-split byte cost charged for
// framing/header overhead, matching gain.py's SPLIT_PENALTY.
const DefaultSplitPenalty = 50

// Strategy selects how the first target length of a packet is chosen.
type Strategy int

const (
	// Morphing samples the first target length from a TargetSampler
	// (a morphing matrix), then falls back to the fallback distribution
	// for any subsequent splits.
	Morphing Strategy = iota

	// Sampling draws every target length, including the first, directly
	// from the fallback distribution.
	Sampling
)

// SegmentKind distinguishes the two outcomes of a single morph step.
type SegmentKind int

const (
	// Send means the remaining payload was sent whole, padded up to
	// PaddedLen.
	Send SegmentKind = iota

	// Split means only a PaddedLen-sized chunk was sent; Remainder bytes
	// still need morphing in a subsequent segment.
	Split
)

// Segment is one entry in a Plan: either Send(ActualLen, PaddedLen) or
// Split(ActualLen, PaddedLen, Remainder).
type Segment struct {
	Kind      SegmentKind
	ActualLen int
	PaddedLen int
	Remainder int // only meaningful when Kind == Split
}

// Plan is the ordered sequence of segments the morph operation produces
// for one source packet.
type Plan []Segment

// TargetSampler is the interface morphmat.Matrix and morphmat.Partitioned
// both satisfy, letting Morpher use either without caring which.
type TargetSampler interface {
	Sample(sLen int, rnd *rand.Rand) (int, error)
}

// Morpher transforms packet lengths using a TargetSampler for the first
// draw under the Morphing strategy. The zero value is not usable;
// construct with New. Morph does not modify the Morpher, but every draw
// uses its Rand field, so a non-nil Rand must not be shared between
// goroutines: construct one Morpher per goroutine, each with its own
// Rand, sharing the same TargetSampler.
type Morpher struct {
	MM           TargetSampler
	SplitPenalty int
	Rand         *rand.Rand
}

// New returns a Morpher using mm as its TargetSampler and the default
// split penalty.
func New(mm TargetSampler) *Morpher {
	return &Morpher{MM: mm, SplitPenalty: DefaultSplitPenalty}
}

// Morph implements the pad-or-split algorithm: it repeatedly draws a
// target length for the remaining payload, padding (Send) once the
// draw is large enough or splitting off a chunk (Split) and recursing
// on the remainder otherwise. It returns the plan and the total
// overhead in bytes (pad bytes plus SplitPenalty per split).
//
// Termination is guaranteed because fallbackDraw never returns 0 (a
// degenerate draw is rejected and resampled) and every Split iteration
// strictly reduces the remaining length by at least 1.
func (m *Morpher) Morph(sLen int, strategy Strategy, fallback dist.Distribution) (Plan, int, error) {
	if sLen < 1 {
		return nil, 0, &morpherr.InvalidArgument{Field: "sLen", Reason: "packet length must be >= 1"}
	}

	var plan Plan
	remaining := sLen
	first := true
	overhead := 0

	for {
		var target int
		var err error
		if strategy == Morphing && first {
			target, err = m.MM.Sample(remaining, m.Rand)
			if err != nil {
				return nil, 0, err
			}
		} else {
			target, err = m.fallbackDraw(fallback)
			if err != nil {
				return nil, 0, err
			}
		}
		first = false

		if target >= remaining {
			plan = append(plan, Segment{Kind: Send, ActualLen: remaining, PaddedLen: target})
			overhead += target - remaining
			return plan, overhead, nil
		}

		plan = append(plan, Segment{Kind: Split, ActualLen: target, PaddedLen: target, Remainder: remaining - target})
		overhead += m.splitPenalty()
		remaining -= target
	}
}

// fallbackDraw samples from fallback, rejecting and resampling a
// degenerate 0-length draw; gain.py's inverse-CDF helper does not
// handle this case.
func (m *Morpher) fallbackDraw(fallback dist.Distribution) (int, error) {
	if fallback.Len() == 0 {
		return 0, &morpherr.InvalidArgument{Field: "fallback", Reason: "fallback distribution is empty"}
	}
	for {
		t := fallback.Sample(nil, m.Rand)
		if t != 0 {
			return t, nil
		}
	}
}

func (m *Morpher) splitPenalty() int {
	if m.SplitPenalty != 0 {
		return m.SplitPenalty
	}
	return DefaultSplitPenalty
}
