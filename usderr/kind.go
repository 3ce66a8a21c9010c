// Package usderr defines the sentinel error kinds reported through the
// bridge's diagnostic callback (spec §7). Every package in this module
// wraps one of these kinds with fmt.Errorf("%w: ...") rather than
// inventing ad-hoc error types, the way the teacher's engine/material
// package centralizes its own error kind (newMatErr) instead of returning
// bare strings.
package usderr

import "errors"

// Kind is a sentinel identifying one of the seven error categories spec §7
// defines. Wrap it with fmt.Errorf("%w: detail") and recover it later with
// errors.Is.
type Kind error

var (
	// InvalidArgument covers wrong source type, non-1D arrays where
	// required, zero-size arrays, empty names, bad dimensional counts.
	InvalidArgument Kind = errors.New("invalid argument")
	// ShapeMismatch covers component-count mismatches between a source
	// array and its destination attribute, or per-vertex/per-primitive
	// disagreement.
	ShapeMismatch Kind = errors.New("shape mismatch")
	// UnknownType covers a source type with no known mapping at all.
	UnknownType Kind = errors.New("unknown type")
	// UnsupportedType covers a source type that is known but not legal
	// for the parameter it was set on.
	UnsupportedType Kind = errors.New("unsupported type")
	// IOError covers a Connection reporting failure writing a file or
	// folder.
	IOError Kind = errors.New("i/o error")
	// SessionInvalid covers operations invoked before a successful
	// session open, or after one has failed.
	SessionInvalid Kind = errors.New("session invalid")
	// LogicError covers an internal invariant violation: implementer
	// bug, not user error.
	LogicError Kind = errors.New("logic error")
)

// Severity mirrors spec §6's diagnostic callback levels.
type Severity int

const (
	Status Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Status:
		return "STATUS"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
