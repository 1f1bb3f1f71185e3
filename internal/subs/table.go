// Package subs implements the subscription table (C4): the map from
// caller-supplied subscription ids to the arena root id their expression
// interned to, in the same single-table-of-ids shape the teacher
// repository's graph package uses for its node/edge maps.
package subs

import (
	"github.com/kaleidodag/atree/internal/apierr"
	"github.com/kaleidodag/atree/internal/dag"
)

// Table maps subscription id -> root node id.
type Table struct {
	roots map[uint64]dag.ID
}

// New builds an empty subscription table.
func New() *Table {
	return &Table{roots: make(map[uint64]dag.ID)}
}

// Insert records id -> root, acquiring root as the subscription's own
// reference (the "+1 if root" share of spec §3's refcount invariant).
// Interning never hands out that reference on its own — a freshly built
// root sits at whatever refcount its structural edges gave it (zero, if
// the caller built a single bare predicate that nothing else shares — so
// Acquire here is what actually keeps it alive as a root.
//
// If id is already present, root is acquired and immediately released
// instead of being left untouched: the build that produced it may have
// interned brand new nodes along the way, and acquire-then-release is
// what drives their teardown (and that of anything only they held onto)
// without assuming root itself was already referenced by anyone.
// DuplicateSubscription is returned and the table is left unchanged.
func (t *Table) Insert(id uint64, root dag.ID, arena *dag.Arena) error {
	if _, ok := t.roots[id]; ok {
		arena.Acquire(root)
		arena.Release(root)
		return apierr.DuplicateSubscription{ID: id}
	}
	arena.Acquire(root)
	t.roots[id] = root
	return nil
}

// Delete releases id's root reference and drops the mapping. Deleting an
// unknown id is a no-op, per spec §4.4's pinned behaviour.
func (t *Table) Delete(id uint64, arena *dag.Arena) {
	root, ok := t.roots[id]
	if !ok {
		return
	}
	delete(t.roots, id)
	arena.Release(root)
}

// Contains reports whether id is currently installed.
func (t *Table) Contains(id uint64) bool {
	_, ok := t.roots[id]
	return ok
}

// Root returns id's root node, if present.
func (t *Table) Root(id uint64) (dag.ID, bool) {
	root, ok := t.roots[id]
	return root, ok
}

// Len reports how many subscriptions are currently installed.
func (t *Table) Len() int {
	return len(t.roots)
}

// All returns every (id, root) pair currently installed. Order is
// unspecified, matching the spec's "search returns a set" contract.
func (t *Table) All() map[uint64]dag.ID {
	out := make(map[uint64]dag.ID, len(t.roots))
	for id, root := range t.roots {
		out[id] = root
	}
	return out
}
