// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package morpherr collects the error kinds shared by every package in
// this module, and the exit-code mapping the CLI binaries use to report
// them.
package morpherr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the validation and solver failure modes this
// module's packages can return. Callers should compare with errors.Is.
var (
	// ErrBadFormat indicates a distribution or matrix file is malformed.
	ErrBadFormat = fmt.Errorf("morpher: bad file format")

	// ErrNotNormalized indicates a distribution's probabilities do not
	// sum to 1 within tolerance.
	ErrNotNormalized = fmt.Errorf("morpher: distribution does not sum to 1")

	// ErrNotStochastic indicates a matrix has a column that does not sum
	// to 1 within tolerance.
	ErrNotStochastic = fmt.Errorf("morpher: matrix is not column-stochastic")

	// ErrBadPartition indicates a distribution length is not divisible
	// by the requested partition count.
	ErrBadPartition = fmt.Errorf("morpher: distribution length not divisible by partition count")

	// ErrInfeasible indicates the LP has no feasible solution.
	ErrInfeasible = fmt.Errorf("morpher: linear program is infeasible")

	// ErrSolver indicates the LP backend failed for a reason other than
	// infeasibility, after the one retry lpmodel.solveWithRetry allows.
	ErrSolver = fmt.Errorf("morpher: LP solver failed")

	// ErrIO indicates a filesystem or persistence failure.
	ErrIO = fmt.Errorf("morpher: I/O failure")

	// ErrDeadlineExceeded indicates the offline solve's wall-clock budget
	// expired before a sub-LP could start.
	ErrDeadlineExceeded = fmt.Errorf("morpher: solve deadline exceeded")
)

// InvalidArgument reports an out-of-range index, a negative probability,
// or any other caller error detected at a function boundary. Unlike the
// sentinels above it carries positional detail, the way
// gonum.org/v1/gonum/optimize pairs plain sentinel errors with one
// struct-typed ErrMismatch for the error that needs a field.
type InvalidArgument struct {
	Field  string
	Reason string
}

func (e *InvalidArgument) Error() string {
	return fmt.Sprintf("morpher: invalid argument %q: %s", e.Field, e.Reason)
}

// Is reports whether target is an *InvalidArgument, so that
// errors.Is(err, morpherr.ErrInvalidArgument) style checks can be written
// against the zero value.
func (e *InvalidArgument) Is(target error) bool {
	_, ok := target.(*InvalidArgument)
	return ok
}

// ErrInvalidArgument is the zero-value InvalidArgument, usable as the
// target of errors.Is for callers that only care about the kind.
var ErrInvalidArgument = &InvalidArgument{}

// ExitCode maps an error produced by this module to a distinct non-zero
// process exit code for the CLI tools in cmd/tmorph and cmd/tmorpheval.
// Nil (success) maps to 0; an unrecognized error maps to 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrBadFormat):
		return 2
	case errors.Is(err, ErrNotNormalized):
		return 3
	case errors.Is(err, ErrNotStochastic):
		return 4
	case errors.Is(err, ErrBadPartition):
		return 5
	case errors.Is(err, ErrInfeasible):
		return 6
	case errors.Is(err, ErrSolver):
		return 7
	case errors.Is(err, ErrIO):
		return 8
	case errors.Is(err, ErrInvalidArgument):
		return 9
	case errors.Is(err, ErrDeadlineExceeded):
		return 10
	default:
		return 1
	}
}
