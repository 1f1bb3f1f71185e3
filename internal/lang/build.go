package lang

import (
	"sort"

	"github.com/kaleidodag/atree/internal/dag"
)

// buildNode folds a lexpr into the arena, producing a canonical dag.ID: leaf
// predicates intern directly, and and/or nodes sort their (already
// flattened) operand ids ascending before folding them in pairwise so that
// the same logical expression always produces the same arena structure
// regardless of how the source text grouped or ordered its operands (spec
// §4.3, §8).
func buildNode(e *lexpr, arena *dag.Arena) dag.ID {
	if e.leaf != nil {
		return arena.InternPred(*e.leaf)
	}

	ids := make([]dag.ID, len(e.kids))
	for i, kid := range e.kids {
		ids[i] = buildNode(kid, arena)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	intern := arena.InternAnd
	if e.kind == dag.KindOr {
		intern = arena.InternOr
	}

	acc := ids[0]
	for _, id := range ids[1:] {
		acc = intern(acc, id)
	}
	return acc
}
