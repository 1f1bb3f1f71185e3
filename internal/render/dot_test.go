package render

import (
	"strings"
	"testing"

	"github.com/kaleidodag/atree/internal/dag"
	"github.com/kaleidodag/atree/internal/value"
)

func TestDOT_DeterministicAndWellFormed(t *testing.T) {
	a := dag.New()
	ida := a.InternPred(dag.Predicate{Attr: 0, Op: dag.OpEq, Lit: value.OfBool(true)})
	idb := a.InternPred(dag.Predicate{Attr: 1, Op: dag.OpEq, Lit: value.OfBool(true)})
	a.InternAnd(ida, idb)

	out1 := DOT(a)
	out2 := DOT(a)
	if out1 != out2 {
		t.Fatalf("expected deterministic rendering, got two different outputs")
	}
	if !strings.HasPrefix(out1, "digraph atree {\n") || !strings.HasSuffix(out1, "}\n") {
		t.Fatalf("malformed DOT output: %s", out1)
	}
	if strings.Count(out1, "->") != 2 {
		t.Fatalf("expected 2 edges for one AND node, got: %s", out1)
	}
}
