// Package errs defines the error kinds shared across the core packages.
//
// Every kind is a package-level sentinel so callers can classify failures
// with errors.Is; the kinds that need context for a human-readable message
// (grid, degenerate input, non-convergence, scope, parameter) also have a
// wrapping struct type, mirroring how the teacher's dicom/pixel package
// reports transfer-syntax and pixel-data failures.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates an unacceptable parameter value or a
	// schema violation in an operation's arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoMatch indicates a selector yielded no payload.
	ErrNoMatch = errors.New("no matching payload")

	// ErrInvalidGrid indicates a set of images does not form the required
	// rectilinear or regular grid.
	ErrInvalidGrid = errors.New("invalid image grid")

	// ErrDegenerateInput indicates a geometric quantity could not be
	// computed from the supplied input (zero vectors, parallel spans,
	// fewer than three non-collinear points, and similar).
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrNonConvergent indicates an iterative method reached its maximum
	// iteration count without meeting the requested tolerance. The
	// caller still receives a best-effort result; this is a warning, not
	// an abort.
	ErrNonConvergent = errors.New("non-convergent")

	// ErrEmptyCollection indicates an operation requires non-empty input.
	ErrEmptyCollection = errors.New("empty collection")

	// ErrDuplicateParameter indicates the same argument key appeared
	// twice in an operation's text form.
	ErrDuplicateParameter = errors.New("duplicate parameter")

	// ErrUnknownParameter indicates an argument key not present in the
	// operation's schema.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidScope indicates start-children/stop-children markers do
	// not balance.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrIO indicates an external collaborator (a loader or sink) failed.
	ErrIO = errors.New("io error")

	// ErrFatal indicates an allocation failure or a logic invariant
	// violation that cannot be attributed to caller input.
	ErrFatal = errors.New("fatal error")
)

// GridError wraps ErrInvalidGrid with the reason the grid check failed.
type GridError struct {
	Reason string
}

func (e *GridError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidGrid.Error(), e.Reason)
}

func (e *GridError) Unwrap() error { return ErrInvalidGrid }

// DegenerateInputError wraps ErrDegenerateInput with the operation that
// detected the degeneracy and why.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrDegenerateInput.Error(), e.Op, e.Reason)
}

func (e *DegenerateInputError) Unwrap() error { return ErrDegenerateInput }

// NonConvergentError wraps ErrNonConvergent. Achieved and Iterations record
// the best-effort result obtained before the iteration budget ran out.
type NonConvergentError struct {
	Op         string
	Iterations int
	Achieved   float64
	Target     float64
}

func (e *NonConvergentError) Error() string {
	return fmt.Sprintf("%s: %s: reached %d iterations, achieved %.6g, target %.6g",
		ErrNonConvergent.Error(), e.Op, e.Iterations, e.Achieved, e.Target)
}

func (e *NonConvergentError) Unwrap() error { return ErrNonConvergent }

// ScopeError wraps ErrInvalidScope with a description of the imbalance
// that was detected.
type ScopeError struct {
	Reason string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidScope.Error(), e.Reason)
}

func (e *ScopeError) Unwrap() error { return ErrInvalidScope }

// ParameterError wraps a parameter-related sentinel (ErrDuplicateParameter,
// ErrUnknownParameter, or ErrInvalidArgument) with the offending key.
type ParameterError struct {
	Kind error
	Key  string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %q", e.Kind.Error(), e.Key)
}

func (e *ParameterError) Unwrap() error { return e.Kind }

// OperationError is the top-level user-visible failure: a human-readable
// message plus the originating operation's name and its argument snapshot,
// per spec §7.
type OperationError struct {
	OpName string
	Args   map[string]string
	Cause  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %q failed: %v (args=%v)", e.OpName, e.Cause, e.Args)
}

func (e *OperationError) Unwrap() error { return e.Cause }
