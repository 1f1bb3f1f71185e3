package eval

import (
	"strings"

	"github.com/kaleidodag/atree/internal/dag"
	"github.com/kaleidodag/atree/internal/decimal"
	"github.com/kaleidodag/atree/internal/value"
)

// evalPredicate resolves a single predicate leaf against the value an event
// supplied for its attribute, per spec §4.6: Undefined always yields
// Unknown; otherwise dispatch by predicate kind and attribute type.
func evalPredicate(p dag.Predicate, v value.Value) Tri {
	if v.Kind == value.KindUndefined {
		return Unknown
	}

	switch p.Op {
	case dag.OpIsNull:
		return False
	case dag.OpIsNotNull:
		return True
	case dag.OpIn:
		return boolTri(membership(p.LitSet, v))
	case dag.OpNotIn:
		return boolTri(!membership(p.LitSet, v))
	default:
		c := compareValues(v, p.Lit)
		switch p.Op {
		case dag.OpEq:
			return boolTri(c == 0)
		case dag.OpNe:
			return boolTri(c != 0)
		case dag.OpLt:
			return boolTri(c < 0)
		case dag.OpLe:
			return boolTri(c <= 0)
		case dag.OpGt:
			return boolTri(c > 0)
		case dag.OpGe:
			return boolTri(c >= 0)
		default:
			return Unknown
		}
	}
}

// compareValues orders two values of the same kind: negative if a<b, zero
// if equal, positive if a>b. Bool only ever participates in Eq/Ne (the
// parser rejects ordered comparisons against it), so an arbitrary
// non-equal sign suffices for it.
func compareValues(a, b value.Value) int {
	switch a.Kind {
	case value.KindBool:
		if a.Bool == b.Bool {
			return 0
		}
		return 1
	case value.KindInt:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		default:
			return 0
		}
	case value.KindDec:
		return decimal.Compare(a.Dec, b.Dec)
	case value.KindStr:
		return strings.Compare(a.Str, b.Str)
	default:
		return 1
	}
}

// membership reports whether an event value satisfies an "in" predicate's
// literal set: for a scalar value, whether it equals any set element; for
// a set-valued attribute, whether its set intersects the literal set
// (spec §3, Predicate/Membership).
func membership(set []value.Value, v value.Value) bool {
	switch v.Kind {
	case value.KindStrSet:
		for _, lit := range set {
			if _, ok := v.StrSet[lit.Str]; ok {
				return true
			}
		}
		return false
	case value.KindIntSet:
		for _, lit := range set {
			if _, ok := v.IntSet[lit.Int]; ok {
				return true
			}
		}
		return false
	default:
		for _, lit := range set {
			if compareValues(v, lit) == 0 {
				return true
			}
		}
		return false
	}
}
