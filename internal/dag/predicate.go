package dag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaleidodag/atree/internal/attrs"
	"github.com/kaleidodag/atree/internal/value"
)

// Op is a predicate's comparison operator.
type Op uint8

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn
	OpNotIn
	OpIsNull
	OpIsNotNull
)

func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpIn:
		return "in"
	case OpNotIn:
		return "not in"
	case OpIsNull:
		return "is null"
	case OpIsNotNull:
		return "is not null"
	default:
		return "?"
	}
}

// negated returns the operator that makes "not (attr op lit)" equivalent
// to "attr negated(op) lit" — every predicate form this package supports
// can be negated by flipping its operator, which is what lets De Morgan
// normalisation fold Not entirely into the predicate it wraps (spec §4.2
// point 4).
func (op Op) negated() Op {
	switch op {
	case OpEq:
		return OpNe
	case OpNe:
		return OpEq
	case OpLt:
		return OpGe
	case OpLe:
		return OpGt
	case OpGt:
		return OpLe
	case OpGe:
		return OpLt
	case OpIn:
		return OpNotIn
	case OpNotIn:
		return OpIn
	case OpIsNull:
		return OpIsNotNull
	case OpIsNotNull:
		return OpIsNull
	default:
		return op
	}
}

// Ordered reports whether op is one of <, <=, >, >= — the forms rejected
// against unordered attribute types (bool, sets).
func (op Op) Ordered() bool {
	switch op {
	case OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// Predicate is a leaf comparison: "attr op lit" for value tests, "attr
// (not) in litSet" for membership, or "attr is (not) null" for null tests
// (LitSet/Lit unused). Bool identity ("attr") lowers to Eq against a true
// literal.
type Predicate struct {
	Attr   attrs.ID
	Op     Op
	Lit    value.Value
	LitSet []value.Value // canonicalised (sorted, deduped) for In/NotIn
}

// Negate returns the predicate equivalent to "not p", which always exists
// for the operator set above.
func (p Predicate) Negate() Predicate {
	p.Op = p.Op.negated()
	return p
}

// CanonicalizeLitSet sorts and deduplicates a literal list so that two
// membership predicates built from differently-ordered source lists (or
// lists with repeated elements) intern to the same node.
func CanonicalizeLitSet(items []value.Value) []value.Value {
	out := make([]value.Value, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return litOrderKey(out[i]) < litOrderKey(out[j]) })
	deduped := out[:0]
	var prev string
	for i, v := range out {
		k := litOrderKey(v)
		if i == 0 || k != prev {
			deduped = append(deduped, v)
		}
		prev = k
	}
	return deduped
}

func litOrderKey(v value.Value) string {
	return litKey(v)
}

// litKey renders a Value deterministically so it can be embedded in a
// content-addressable intern key; sets are sorted so that key construction
// never depends on map iteration order.
func litKey(v value.Value) string {
	switch v.Kind {
	case value.KindUndefined:
		return "u"
	case value.KindBool:
		if v.Bool {
			return "b1"
		}
		return "b0"
	case value.KindInt:
		return fmt.Sprintf("i%d", v.Int)
	case value.KindDec:
		return fmt.Sprintf("d%d/%d", v.Dec.Mantissa, v.Dec.Scale)
	case value.KindStr:
		return "s" + v.Str
	case value.KindStrSet:
		items := make([]string, 0, len(v.StrSet))
		for s := range v.StrSet {
			items = append(items, s)
		}
		sort.Strings(items)
		return "S" + strings.Join(items, "\x1f")
	case value.KindIntSet:
		items := make([]int64, 0, len(v.IntSet))
		for i := range v.IntSet {
			items = append(items, i)
		}
		sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = fmt.Sprintf("%d", it)
		}
		return "I" + strings.Join(parts, "\x1f")
	default:
		return "?"
	}
}

func (p Predicate) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "P|%d|%d|%s", p.Attr, p.Op, litKey(p.Lit))
	if len(p.LitSet) > 0 {
		b.WriteByte('|')
		for i, v := range p.LitSet {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(litKey(v))
		}
	}
	return b.String()
}

// String renders a predicate for Graphviz labels and diagnostics.
func (p Predicate) String() string {
	switch p.Op {
	case OpIsNull:
		return fmt.Sprintf("attr#%d is null", p.Attr)
	case OpIsNotNull:
		return fmt.Sprintf("attr#%d is not null", p.Attr)
	case OpIn, OpNotIn:
		parts := make([]string, len(p.LitSet))
		for i, v := range p.LitSet {
			parts[i] = v.String()
		}
		return fmt.Sprintf("attr#%d %s [%s]", p.Attr, p.Op, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("attr#%d %s %s", p.Attr, p.Op, p.Lit.String())
	}
}
