// Package errors provides error handling for snomed-squasher.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadRelease(r); err != nil {
//	    return errors.Wrapf(err, "failed to load release %s", r)
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnknownConcept) {
//	    // handle unknown identifier
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the terminology engine.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrMissingDefinitionFile indicates one of the three required snapshot
	// tables (Concept, Description, Relationship) was not found. Fatal: the
	// engine must not serve queries against a partial graph.
	ErrMissingDefinitionFile = New("missing definition file")

	// ErrCorruptSnapshot indicates too many rows of a snapshot table failed
	// to parse. Fatal: loading stops rather than producing a degraded graph.
	ErrCorruptSnapshot = New("corrupt snapshot")

	// ErrUnknownConcept indicates a numeric concept identifier absent from
	// the loaded snapshot.
	ErrUnknownConcept = New("unknown concept")

	// ErrUnresolvedName indicates a freetext query that could not be mapped
	// to exactly one concept. Distinct from ErrUnknownConcept, which applies
	// to a numeric id after resolution has already succeeded.
	ErrUnresolvedName = New("unresolved name")

	// ErrNoPrimaryDescription indicates a concept exists but no description
	// satisfies the primary invariant. A data-quality signal, distinct from
	// absence.
	ErrNoPrimaryDescription = New("no primary description")

	// ErrCycleDetected indicates a hierarchy-integrity violation discovered
	// during ancestor traversal.
	ErrCycleDetected = New("cycle detected in hierarchy")
)

// IsMissingDefinitionFile checks if an error is or wraps ErrMissingDefinitionFile
func IsMissingDefinitionFile(err error) bool {
	return err != nil && Is(err, ErrMissingDefinitionFile)
}

// IsCorruptSnapshot checks if an error is or wraps ErrCorruptSnapshot
func IsCorruptSnapshot(err error) bool {
	return err != nil && Is(err, ErrCorruptSnapshot)
}

// IsUnknownConcept checks if an error is or wraps ErrUnknownConcept
func IsUnknownConcept(err error) bool {
	return err != nil && Is(err, ErrUnknownConcept)
}

// IsUnresolvedName checks if an error is or wraps ErrUnresolvedName
func IsUnresolvedName(err error) bool {
	return err != nil && Is(err, ErrUnresolvedName)
}

// IsNoPrimaryDescription checks if an error is or wraps ErrNoPrimaryDescription
func IsNoPrimaryDescription(err error) bool {
	return err != nil && Is(err, ErrNoPrimaryDescription)
}

// IsCycleDetected checks if an error is or wraps ErrCycleDetected
func IsCycleDetected(err error) bool {
	return err != nil && Is(err, ErrCycleDetected)
}

// NewUnknownConcept creates an unknown-concept error naming the identifier
func NewUnknownConcept(cui int64) error {
	return Wrapf(ErrUnknownConcept, "concept %d", cui)
}

// NewUnresolvedName creates an unresolved-name error naming the query text
func NewUnresolvedName(name string) error {
	return Wrapf(ErrUnresolvedName, "no concept found with name %q", name)
}
