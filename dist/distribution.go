// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dist implements validated discrete probability distributions
// over packet payload lengths, and their decomposition into equally
// sized partitions for the large-sample-space solver described in §3.4
// of the Traffic Morphing paper.
package dist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/asn-d6/morpher/morpherr"
)

// Tolerance is the maximum allowed deviation of a distribution's sum
// from 1.
const Tolerance = 1e-5

// Distribution is an immutable, validated discrete probability vector.
// Index i (1-based) is the probability of a packet payload of length i
// bytes. The zero value is not valid; construct with Load or New.
type Distribution struct {
	p []float64 // p[i-1] is the probability of length i
}

// New validates p and returns a Distribution wrapping a copy of it.
// p must be non-empty, every entry non-negative, and the sum must equal
// 1 within Tolerance.
func New(p []float64) (Distribution, error) {
	if len(p) == 0 {
		return Distribution{}, &morpherr.InvalidArgument{Field: "p", Reason: "distribution must have length > 0"}
	}
	for i, v := range p {
		if v < 0 {
			return Distribution{}, &morpherr.InvalidArgument{
				Field:  fmt.Sprintf("p[%d]", i+1),
				Reason: fmt.Sprintf("probability must be non-negative, got %g", v),
			}
		}
	}
	sum := floats.Sum(p)
	if !floats.EqualWithinAbs(sum, 1, Tolerance) {
		return Distribution{}, fmt.Errorf("%w: sum=%g, tolerance=%g", morpherr.ErrNotNormalized, sum, Tolerance)
	}
	cp := make([]float64, len(p))
	copy(cp, p)
	return Distribution{p: cp}, nil
}

// Load parses a distribution file: lines of the form
// "<1-based-index> <probability>", blank lines and '#'-comments
// ignored, indices strictly consecutive starting at 1. The final sum
// must equal 1 within Tolerance.
func Load(r io.Reader) (Distribution, error) {
	var p []float64
	expect := 1
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return Distribution{}, fmt.Errorf("%w: expected \"<index> <probability>\", got %q", morpherr.ErrBadFormat, line)
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil || idx != expect {
			return Distribution{}, fmt.Errorf("%w: expected index %d, got %q", morpherr.ErrBadFormat, expect, fields[0])
		}
		prob, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || prob < 0 {
			return Distribution{}, fmt.Errorf("%w: bad probability %q at index %d", morpherr.ErrBadFormat, fields[1], idx)
		}
		p = append(p, prob)
		expect++
	}
	if err := sc.Err(); err != nil {
		return Distribution{}, fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	return New(p)
}

// Len returns n, the number of packet lengths the distribution covers.
func (d Distribution) Len() int {
	return len(d.p)
}

// At returns the probability of length i (1-based). It panics if i is
// out of [1, Len()], matching gonum/mat.Matrix.At's convention of
// panicking on invalid indices on the hot sampling path rather than
// returning an error.
func (d Distribution) At(i int) float64 {
	if i < 1 || i > len(d.p) {
		panic(fmt.Sprintf("dist: index %d out of range [1, %d]", i, len(d.p)))
	}
	return d.p[i-1]
}

// Slice returns a read-only view of the underlying probability vector,
// ordered by ascending length (index 0 is length 1).
func (d Distribution) Slice() []float64 {
	return d.p
}

// String implements fmt.Stringer for debug logging.
func (d Distribution) String() string {
	return fmt.Sprintf("dist.Distribution{n=%d}", len(d.p))
}
