// Package eval implements the evaluator (C6): a bottom-up, level-order
// sweep of the expression DAG against one event, using Kleene three-valued
// logic and a bitset-backed reachability scratch buffer so only nodes a
// live subscription actually depends on are resolved (spec §4.6).
package eval

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/kaleidodag/atree/internal/dag"
	"github.com/kaleidodag/atree/internal/event"
	"github.com/kaleidodag/atree/internal/subs"
)

// Evaluator owns the per-query scratch buffers so repeated searches reuse
// one allocation instead of paying for a fresh results vector every call
// (spec §4.6, "Structure").
type Evaluator struct {
	results []Tri
	gen     []uint32
	curGen  uint32
	reach   *bitset.BitSet
}

// New builds an evaluator with no scratch state allocated yet; buffers
// grow lazily to the arena's capacity on first use.
func New() *Evaluator {
	return &Evaluator{reach: bitset.New(0)}
}

func (e *Evaluator) grow(capacity int) {
	if len(e.results) >= capacity {
		return
	}
	results := make([]Tri, capacity)
	gen := make([]uint32, capacity)
	copy(results, e.results)
	copy(gen, e.gen)
	e.results = results
	e.gen = gen
	if e.reach.Len() < uint(capacity) {
		e.reach = bitset.New(uint(capacity))
	}
}

// Search evaluates every subscription in table against ev and returns the
// ids whose root resolved to True. ev is consumed (spec §4.5, §6): it may
// not be reused afterwards.
func (e *Evaluator) Search(arena *dag.Arena, table *subs.Table, ev *event.Builder) []uint64 {
	ev.Consume()

	e.grow(arena.Capacity())
	e.curGen++
	e.reach.ClearAll()

	roots := table.All()
	for _, root := range roots {
		e.markReachable(arena, root)
	}

	for _, id := range arena.LiveIDsByLevel() {
		if !e.reach.Test(uint(id)) {
			continue
		}
		e.resolve(arena, id, ev)
	}

	matched := make([]uint64, 0)
	for id, root := range roots {
		if e.resultAt(root) == True {
			matched = append(matched, id)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })
	return matched
}

// markReachable flags id and every node beneath it as relevant to this
// query. Like Arena.Release, it walks with an explicit stack rather than
// recursion so a long left-deep operand chain cannot overflow the call
// stack (Design Note §9), stopping down any branch as soon as it finds a
// node already marked (its subtree was already visited via another
// subscription root sharing structure).
func (e *Evaluator) markReachable(arena *dag.Arena, root dag.ID) {
	if root == dag.Invalid || e.reach.Test(uint(root)) {
		return
	}
	stack := []dag.ID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == dag.Invalid || e.reach.Test(uint(id)) {
			continue
		}
		e.reach.Set(uint(id))
		stack = append(stack, arena.Children(id)...)
	}
}

func (e *Evaluator) resolve(arena *dag.Arena, id dag.ID, ev *event.Builder) {
	n := arena.NodeAt(id)
	var result Tri
	switch n.Kind {
	case dag.KindPred:
		result = evalPredicate(n.Pred, ev.Get(n.Pred.Attr))
	case dag.KindAnd:
		result = kleeneAnd(e.resultAt(n.Left), e.resultAt(n.Right))
	case dag.KindOr:
		result = kleeneOr(e.resultAt(n.Left), e.resultAt(n.Right))
	case dag.KindNot:
		result = kleeneNot(e.resultAt(n.Left))
	}
	e.results[id] = result
	e.gen[id] = e.curGen
}

// resultAt returns id's resolved value for the current query. Every node
// this is called on was reached via markReachable from a live root, so the
// level-ordered sweep always resolves it (with a lower level than its
// parent) before resultAt is asked for it.
func (e *Evaluator) resultAt(id dag.ID) Tri {
	if id == dag.Invalid || int(id) >= len(e.gen) || e.gen[id] != e.curGen {
		return Unknown
	}
	return e.results[id]
}
