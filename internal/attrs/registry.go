// Package attrs implements the attribute registry (C1): it maps attribute
// names to stable, dense ids and enforces the declared type of each
// attribute across every insertion, the way the teacher repository's graph
// package enforces node/edge identity uniqueness.
package attrs

import (
	"github.com/kaleidodag/atree/internal/apierr"
	"github.com/kaleidodag/atree/internal/value"
)

// ID is a dense, zero-based attribute id assigned in declaration order.
type ID int

// Attr is one declared attribute: its stable id, name, type, and (for
// decimal attributes only) its declared scale. The scale is recorded and
// written to snapshots; decimal literals keep their own normalised scale
// and are not rescaled to it.
type Attr struct {
	ID    ID
	Name  string
	Type  value.Type
	Scale uint32 // meaningful only when Type == value.Dec
}

// Registry maps attribute names to Attr entries. It is mutable only until
// Freeze is called, mirroring the spec's "frozen after first insert" rule.
type Registry struct {
	byName map[string]ID
	attrs  []Attr
	frozen bool
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]ID)}
}

// Declare registers a new attribute. It fails with DuplicateAttribute if
// the name is already registered and with RegistryFrozen once the tree has
// started accepting subscriptions.
func (r *Registry) Declare(name string, t value.Type, scale uint32) (ID, error) {
	if r.frozen {
		return 0, apierr.RegistryFrozen{Name: name}
	}
	if _, ok := r.byName[name]; ok {
		return 0, apierr.DuplicateAttribute{Name: name}
	}
	id := ID(len(r.attrs))
	r.attrs = append(r.attrs, Attr{ID: id, Name: name, Type: t, Scale: scale})
	r.byName[name] = id
	return id, nil
}

// Freeze prevents any further declarations. Idempotent.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Lookup resolves a name to its Attr, failing with UnknownAttribute if the
// name was never declared.
func (r *Registry) Lookup(name string) (Attr, error) {
	id, ok := r.byName[name]
	if !ok {
		return Attr{}, apierr.UnknownAttribute{Name: name}
	}
	return r.attrs[id], nil
}

// ByID returns the Attr for a previously-resolved id. Panics if id is out
// of range, which would indicate an internal bug — every ID in circulation
// was handed out by Declare.
func (r *Registry) ByID(id ID) Attr {
	return r.attrs[id]
}

// Len reports how many attributes have been declared.
func (r *Registry) Len() int {
	return len(r.attrs)
}

// All returns every declared attribute, in declaration order.
func (r *Registry) All() []Attr {
	out := make([]Attr, len(r.attrs))
	copy(out, r.attrs)
	return out
}
