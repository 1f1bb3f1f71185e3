// Package apierr holds the typed errors the A-Tree surfaces at its public
// API boundary, in the same shape as the teacher repository's per-package
// error structs (graph.GraphError, query.QueryError): a Kind tag plus a
// rendered message, but here one concrete type per spec-named error so
// callers can type-switch without inspecting a Kind string.
package apierr

import (
	"fmt"

	"github.com/kaleidodag/atree/internal/value"
)

// ParseError reports malformed expression source text.
type ParseError struct {
	Line   int
	Column int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Reason)
}

// UnknownAttribute reports a reference to an undeclared attribute.
type UnknownAttribute struct {
	Name string
}

func (e UnknownAttribute) Error() string {
	return fmt.Sprintf("unknown attribute %q", e.Name)
}

// DuplicateAttribute reports an attribute declared twice at construction.
type DuplicateAttribute struct {
	Name string
}

func (e DuplicateAttribute) Error() string {
	return fmt.Sprintf("duplicate attribute %q", e.Name)
}

// TypeMismatch reports a literal or value conflicting with an attribute's
// declared type.
type TypeMismatch struct {
	Name     string
	Expected value.Type
	Actual   value.Type
}

func (e TypeMismatch) Error() string {
	return fmt.Sprintf("attribute %q expects %s, got %s", e.Name, e.Expected, e.Actual)
}

// DuplicateSubscription reports an id already present in the subscription
// table.
type DuplicateSubscription struct {
	ID uint64
}

func (e DuplicateSubscription) Error() string {
	return fmt.Sprintf("subscription %d already exists", e.ID)
}

// BuilderConsumed reports an EventBuilder reused after Search.
type BuilderConsumed struct{}

func (e BuilderConsumed) Error() string {
	return "event builder already consumed by search"
}

// RegistryFrozen reports an attempt to declare an attribute after the
// registry has been frozen by the tree's first insert.
type RegistryFrozen struct {
	Name string
}

func (e RegistryFrozen) Error() string {
	return fmt.Sprintf("cannot declare attribute %q: registry is frozen", e.Name)
}
