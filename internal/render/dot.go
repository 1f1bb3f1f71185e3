// Package render implements the Graphviz renderer (C7): a pure function
// from arena state to a deterministic DOT string, one node per live
// NodeId and one edge per parent->child relationship.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaleidodag/atree/internal/dag"
)

// DOT renders arena's live nodes as a Graphviz "digraph" source string.
// Node and edge order is sorted ascending by id, so the same arena state
// always renders to the same text (spec §4.7).
func DOT(arena *dag.Arena) string {
	ids := arena.LiveIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteString("digraph atree {\n")
	for _, id := range ids {
		n := arena.NodeAt(id)
		label := nodeLabel(n)
		fmt.Fprintf(&b, "  n%d [label=%q];\n", id, label)
	}
	for _, id := range ids {
		children := arena.Children(id)
		for _, c := range children {
			if c == dag.Invalid {
				continue
			}
			fmt.Fprintf(&b, "  n%d -> n%d;\n", id, c)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func nodeLabel(n dag.Node) string {
	switch n.Kind {
	case dag.KindPred:
		return n.Pred.String()
	case dag.KindAnd:
		return "AND"
	case dag.KindOr:
		return "OR"
	case dag.KindNot:
		return "NOT"
	default:
		return "?"
	}
}
