// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

import "golang.org/x/exp/rand"

// Sample draws a length from the distribution's own PMF by inverse-CDF,
// the same procedure morphmat.Matrix.SampleTarget applies to a matrix
// column, used by the packet morpher's fallback distribution. If r is
// nil, a fresh uniform [0,1) draw from rnd is used (or the
// package-level source if rnd is nil too). r == 0 is treated as a
// legitimate draw rather than "unset", unlike
// _examples/original_source/dream.py's inverse-CDF helper.
func (d Distribution) Sample(r *float64, rnd *rand.Rand) int {
	v := 0.0
	switch {
	case r != nil:
		v = *r
	case rnd != nil:
		v = rnd.Float64()
	default:
		v = rand.Float64()
	}

	cdf := 0.0
	for i, p := range d.p {
		cdf += p
		if p > 0 && v <= cdf {
			return i + 1
		}
	}
	return len(d.p)
}
