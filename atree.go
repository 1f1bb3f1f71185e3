// Package atree implements the A-Tree: an in-memory index over large
// collections of boolean subscription expressions that share common
// sub-expressions. Given an event (a sparse set of typed attribute
// values), it returns every subscription whose expression evaluates to
// true, in time proportional to the live nodes reachable from active
// subscriptions rather than the subscription count.
package atree

import (
	"github.com/kaleidodag/atree/internal/attrs"
	"github.com/kaleidodag/atree/internal/dag"
	"github.com/kaleidodag/atree/internal/eval"
	"github.com/kaleidodag/atree/internal/event"
	"github.com/kaleidodag/atree/internal/lang"
	"github.com/kaleidodag/atree/internal/render"
	"github.com/kaleidodag/atree/internal/subs"
	"github.com/kaleidodag/atree/internal/value"
)

// AttrDef declares one attribute's name and type at tree construction.
// Scale is only meaningful when Type == Decimal.
type AttrDef struct {
	Name  string
	Type  Type
	Scale uint32
}

// Type is a declared attribute's value type, re-exported from the value
// package so callers never import an internal package directly — the same
// alias-at-the-root-package shape the teacher repository uses for its
// result types.
type Type = value.Type

const (
	Bool   = value.Bool
	Int    = value.Int
	Dec    = value.Dec
	Str    = value.Str
	StrSet = value.StrSet
	IntSet = value.IntSet
)

// Tree is the A-Tree index: an attribute registry, a shared expression
// arena, and a subscription table, bound together behind the single-
// writer, single-reader resource model of spec §5 — every exported method
// assumes exclusive access; callers needing concurrency wrap a *Tree in
// their own mutex.
type Tree struct {
	reg   *attrs.Registry
	arena *dag.Arena
	subs  *subs.Table
	ev    *eval.Evaluator
}

// New builds a Tree with the given attributes declared. Declaring the same
// name twice fails with DuplicateAttribute.
func New(attrDefs []AttrDef) (*Tree, error) {
	reg := attrs.New()
	for _, d := range attrDefs {
		if _, err := reg.Declare(d.Name, d.Type, d.Scale); err != nil {
			return nil, err
		}
	}
	return &Tree{
		reg:   reg,
		arena: dag.New(),
		subs:  subs.New(),
		ev:    eval.New(),
	}, nil
}

// Insert parses expr, resolves and type-checks it against the declared
// attributes, interns it into the shared DAG, and records id as owning
// the resulting root. The registry is implicitly frozen by the first
// Insert (spec §4.1): no Declare call after this point may succeed, though
// this package exposes no post-construction Declare — attributes are fixed
// at New.
func (t *Tree) Insert(id uint64, expr string) error {
	t.reg.Freeze()
	root, err := lang.Build(expr, t.reg, t.arena)
	if err != nil {
		return err
	}
	return t.subs.Insert(id, root, t.arena)
}

// Delete removes id, if present. Infallible and idempotent (spec §4.4,
// §6): deleting an unknown id is a no-op.
func (t *Tree) Delete(id uint64) {
	t.subs.Delete(id, t.arena)
}

// Contains reports whether id is currently installed.
func (t *Tree) Contains(id uint64) bool {
	return t.subs.Contains(id)
}

// MakeEvent returns a new, empty EventBuilder bound to this tree's
// attribute registry.
func (t *Tree) MakeEvent() *EventBuilder {
	return event.New(t.reg)
}

// EventBuilder accumulates typed attribute values for one Search call. It
// is re-exported so callers never need to import internal/event directly.
type EventBuilder = event.Builder

// Search evaluates every live subscription against ev's values and
// returns the ids whose expression resolved to True. ev is consumed: it
// must not be reused afterwards (spec §4.5, §6).
func (t *Tree) Search(ev *EventBuilder) []uint64 {
	return t.ev.Search(t.arena, t.subs, ev)
}

// ToGraphviz renders the current DAG as a Graphviz DOT string.
func (t *Tree) ToGraphviz() string {
	return render.DOT(t.arena)
}

// Len reports how many subscriptions are currently installed.
func (t *Tree) Len() int {
	return t.subs.Len()
}
