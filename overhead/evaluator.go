// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package overhead implements the Monte-Carlo overhead evaluator
// mirroring _examples/original_source/analysis/gain.py: it compares the
// per-packet byte overhead of morphing against naive direct sampling
// from the target distribution, across a configurable set of
// checkpoints.
package overhead

import (
	"golang.org/x/exp/rand"

	"github.com/asn-d6/morpher/dist"
	"github.com/asn-d6/morpher/morpherr"
	"github.com/asn-d6/morpher/packetmorph"
)

// Mode distinguishes the two traffic directions the CLI supports, used
// only to label evaluator output (the distributions and matrix
// themselves are supplied by the caller); grounded on
// _examples/original_source/analysis/gain.py's CS/SC split.
type Mode int

const (
	ClientToServer Mode = iota
	ServerToClient
)

func (m Mode) String() string {
	switch m {
	case ClientToServer:
		return "cs"
	case ServerToClient:
		return "sc"
	default:
		return "unknown"
	}
}

// DefaultCheckpoints are the checkpoint packet counts gain.py reports
// at: 500, 2000, 8000, 16000, 50000, 100000, 500000.
var DefaultCheckpoints = []int{500, 2000, 8000, 16000, 50000, 100000, 500000}

// Series is the full cumulative-overhead series: CumSampling[i] and
// CumMorphing[i] are the running totals through packet i+1 (0-based
// slice, 1-based packet count).
type Series struct {
	CumSampling []uint64
	CumMorphing []uint64
}

// Evaluator runs the Monte-Carlo overhead comparison.
type Evaluator struct {
	// SourceRun is S_run, the distribution packet sizes are drawn from.
	SourceRun dist.Distribution

	// Target is T, the fallback distribution used both as the
	// "Sampling" strategy's sole source and as the "Morphing"
	// strategy's post-first-draw fallback.
	Target dist.Distribution

	// MM is the morphing matrix (or partitioned matrix) used for the
	// first draw under the Morphing strategy.
	MM packetmorph.TargetSampler

	// Checkpoints are the packet counts at which the cumulative series
	// is reported. Nil means DefaultCheckpoints.
	Checkpoints []int

	// Mode labels the run for output naming; it has no effect on the
	// simulation itself.
	Mode Mode

	// Rand is the RNG used for every draw. Nil uses the package-level
	// default source; callers running evaluators concurrently should
	// give each one its own Rand.
	Rand *rand.Rand

	// SplitPenalty overrides packetmorph.DefaultSplitPenalty when
	// nonzero.
	SplitPenalty int
}

func (e *Evaluator) checkpoints() []int {
	if len(e.Checkpoints) == 0 {
		return DefaultCheckpoints
	}
	return e.Checkpoints
}

// Run executes max(Checkpoints) iterations. Each iteration draws a
// packet length from SourceRun -- always >= 1, since
// dist.Distribution.Sample's inverse-CDF already returns a 1-based
// length -- then morphs it once under the Sampling strategy and once
// under the
// Morphing strategy, accumulating both overheads into the returned
// Series.
func (e *Evaluator) Run() (*Series, error) {
	checkpoints := e.checkpoints()
	n := 0
	for _, c := range checkpoints {
		if c > n {
			n = c
		}
	}
	if n <= 0 {
		return nil, &morpherr.InvalidArgument{Field: "Checkpoints", Reason: "at least one positive checkpoint is required"}
	}

	morpher := packetmorph.New(e.MM)
	morpher.Rand = e.Rand
	if e.SplitPenalty != 0 {
		morpher.SplitPenalty = e.SplitPenalty
	}

	series := &Series{
		CumSampling: make([]uint64, n),
		CumMorphing: make([]uint64, n),
	}

	var cumSampling, cumMorphing uint64
	for i := 0; i < n; i++ {
		sLen := e.SourceRun.Sample(nil, e.Rand)

		_, oSampling, err := morpher.Morph(sLen, packetmorph.Sampling, e.Target)
		if err != nil {
			return nil, err
		}
		_, oMorphing, err := morpher.Morph(sLen, packetmorph.Morphing, e.Target)
		if err != nil {
			return nil, err
		}

		cumSampling += uint64(oSampling)
		cumMorphing += uint64(oMorphing)
		series.CumSampling[i] = cumSampling
		series.CumMorphing[i] = cumMorphing
	}

	return series, nil
}
