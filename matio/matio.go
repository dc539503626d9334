// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matio serializes and deserializes morphing matrices in a
// Matrix Market coordinate text encoding: a header line, a "rows cols
// nnz" dimensions line, then one "i j value" triple per nonzero entry,
// all 1-based, the same format _examples/original_source/dream.py's
// get_csc_from_mm reads via scipy.io.mmread. The shape mirrors the
// header-then-payload structuring of gonum.org/v1/gonum/mat's own
// binary codec (mat/io.go's MarshalBinary/UnmarshalBinary), adapted
// from a binary encoding to this text format.
package matio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/asn-d6/morpher/morpherr"
	"github.com/asn-d6/morpher/morphmat"
)

// header is the fixed banner line identifying the coordinate format.
const header = "%%MatrixMarket matrix coordinate real general"

// Save writes m to w in the Matrix Market coordinate format. Values are
// rendered to 6 decimal digits, enough to round-trip a morphing matrix
// within its stochasticity tolerance; entries whose absolute value is
// below 1e-9 are never stored, since
// Matrix itself never retains them (morphmat.FromDense/FromEntries clamp
// at construction time).
func Save(w io.Writer, m *morphmat.Matrix) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, header); err != nil {
		return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}

	entries := m.Entries()
	if _, err := fmt.Fprintf(bw, "%d %d %d\n", m.N(), m.N(), len(entries)); err != nil {
		return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%d %d %.6f\n", e.I, e.J, e.Value); err != nil {
			return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	return nil
}

// Load reads a Matrix Market coordinate matrix from r and validates it
// as a column-stochastic morphing matrix (square shape, per-column sums
// within tolerance), via morphmat.FromEntries.
func Load(r io.Reader) (*morphmat.Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: empty matrix file", morpherr.ErrBadFormat)
	}
	if strings.TrimSpace(sc.Text()) != header {
		return nil, fmt.Errorf("%w: unexpected header %q", morpherr.ErrBadFormat, sc.Text())
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing dimensions line", morpherr.ErrBadFormat)
	}
	dims := strings.Fields(sc.Text())
	if len(dims) != 3 {
		return nil, fmt.Errorf("%w: expected \"rows cols nnz\", got %q", morpherr.ErrBadFormat, sc.Text())
	}
	rows, err1 := strconv.Atoi(dims[0])
	cols, err2 := strconv.Atoi(dims[1])
	nnz, err3 := strconv.Atoi(dims[2])
	if err1 != nil || err2 != nil || err3 != nil || rows != cols || rows <= 0 || nnz < 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %q", morpherr.ErrBadFormat, sc.Text())
	}

	entries := make([]morphmat.Entry, 0, nnz)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: expected \"i j value\", got %q", morpherr.ErrBadFormat, line)
		}
		i, err1 := strconv.Atoi(fields[0])
		j, err2 := strconv.Atoi(fields[1])
		v, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("%w: malformed entry %q", morpherr.ErrBadFormat, line)
		}
		entries = append(entries, morphmat.Entry{I: i, J: j, Value: v})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	if len(entries) != nnz {
		return nil, fmt.Errorf("%w: header declared %d entries, found %d", morpherr.ErrBadFormat, nnz, len(entries))
	}

	return morphmat.FromEntries(rows, entries)
}
