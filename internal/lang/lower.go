package lang

import (
	"strconv"
	"strings"

	"github.com/kaleidodag/atree/internal/apierr"
	"github.com/kaleidodag/atree/internal/attrs"
	"github.com/kaleidodag/atree/internal/dag"
	"github.com/kaleidodag/atree/internal/decimal"
	"github.com/kaleidodag/atree/internal/value"
)

// lexpr is the post-parse, pre-arena logical tree: De Morgan negation has
// already been pushed all the way to the predicate leaves and folded into
// their operators (spec §4.2 point 4), and same-connective nesting has
// already been flattened into a single operand list (spec §4.3's
// canonicalization), so building it into the arena only has to sort and
// fold.
type lexpr struct {
	leaf *dag.Predicate // non-nil for a predicate leaf
	kind dag.Kind       // KindAnd or KindOr when leaf == nil
	kids []*lexpr
}

// lowerExpr converts the top-level AST into a lexpr, with negate applied
// throughout (De Morgan) — negate is true when an odd number of enclosing
// "not"s apply to this subtree.
func lowerExpr(e *Expr, reg *attrs.Registry, negate bool) (*lexpr, error) {
	return lowerOr(e.Or, reg, negate)
}

func lowerOr(e *OrExpr, reg *attrs.Registry, negate bool) (*lexpr, error) {
	childKind := dag.KindOr
	if negate {
		childKind = dag.KindAnd // De Morgan: not(a or b) = (not a) and (not b)
	}
	return lowerChain(e.Operands, func(a *AndExpr) (*lexpr, error) {
		return lowerAnd(a, reg, negate)
	}, childKind)
}

func lowerAnd(e *AndExpr, reg *attrs.Registry, negate bool) (*lexpr, error) {
	childKind := dag.KindAnd
	if negate {
		childKind = dag.KindOr // De Morgan: not(a and b) = (not a) or (not b)
	}
	return lowerChain(e.Operands, func(n *NotExpr) (*lexpr, error) {
		return lowerNot(n, reg, negate)
	}, childKind)
}

// lowerChain lowers each operand of an n-ary and/or chain and flattens any
// child that already has the same resulting kind into this level's
// operand list, so "(a and b) and c" and "a and (b and c)" both produce
// the flat kids list [a, b, c] regardless of how the grammar grouped them.
func lowerChain[T any](operands []T, lowerOne func(T) (*lexpr, error), kind dag.Kind) (*lexpr, error) {
	if len(operands) == 1 {
		return lowerOne(operands[0])
	}

	var kids []*lexpr
	for _, op := range operands {
		child, err := lowerOne(op)
		if err != nil {
			return nil, err
		}
		if child.leaf == nil && child.kind == kind {
			kids = append(kids, child.kids...)
		} else {
			kids = append(kids, child)
		}
	}
	return &lexpr{kind: kind, kids: kids}, nil
}

func lowerNot(e *NotExpr, reg *attrs.Registry, negate bool) (*lexpr, error) {
	if len(e.Nots)%2 == 1 {
		negate = !negate
	}
	return lowerPrimary(e.Primary, reg, negate)
}

func lowerPrimary(e *Primary, reg *attrs.Registry, negate bool) (*lexpr, error) {
	if e.Sub != nil {
		return lowerExpr(e.Sub, reg, negate)
	}
	return lowerPredicate(e.Pred, reg, negate)
}

func lowerPredicate(e *PredicateAST, reg *attrs.Registry, negate bool) (*lexpr, error) {
	attr, err := reg.Lookup(e.Attr)
	if err != nil {
		return nil, err
	}

	pred, err := buildPredicate(attr, e.Tail)
	if err != nil {
		return nil, err
	}
	if negate {
		pred = pred.Negate()
	}
	return &lexpr{leaf: &pred}, nil
}

func buildPredicate(attr attrs.Attr, tail *PredicateTail) (dag.Predicate, error) {
	if tail == nil {
		// Bare boolean attribute name: "attr" == "attr = true".
		if attr.Type != value.Bool {
			return dag.Predicate{}, apierr.TypeMismatch{Name: attr.Name, Expected: value.Bool, Actual: attr.Type}
		}
		return dag.Predicate{Attr: attr.ID, Op: dag.OpEq, Lit: value.OfBool(true)}, nil
	}

	switch {
	case tail.Compare != nil:
		return buildCompare(attr, tail.Compare)
	case tail.Membership != nil:
		return buildMembership(attr, tail.Membership)
	case tail.NullTest != nil:
		op := dag.OpIsNull
		if tail.NullTest.Not {
			op = dag.OpIsNotNull
		}
		return dag.Predicate{Attr: attr.ID, Op: op}, nil
	default:
		return dag.Predicate{}, apierr.ParseError{Reason: "malformed predicate"}
	}
}

var compareOps = map[string]dag.Op{
	"=":  dag.OpEq,
	"<>": dag.OpNe,
	"!=": dag.OpNe,
	"<":  dag.OpLt,
	"<=": dag.OpLe,
	">":  dag.OpGt,
	">=": dag.OpGe,
}

func buildCompare(attr attrs.Attr, c *CompareTail) (dag.Predicate, error) {
	op, ok := compareOps[c.Op]
	if !ok {
		return dag.Predicate{}, apierr.ParseError{Reason: "unknown comparison operator " + c.Op}
	}
	if op.Ordered() && (attr.Type == value.Bool || attr.Type == value.StrSet || attr.Type == value.IntSet) {
		return dag.Predicate{}, apierr.TypeMismatch{Name: attr.Name, Expected: attr.Type, Actual: attr.Type}
	}
	lit, err := resolveLiteral(c.Lit, attr)
	if err != nil {
		return dag.Predicate{}, err
	}
	return dag.Predicate{Attr: attr.ID, Op: op, Lit: lit}, nil
}

func buildMembership(attr attrs.Attr, m *MembershipTail) (dag.Predicate, error) {
	elemType := elementType(attr.Type)
	elemAttr := attr
	elemAttr.Type = elemType

	items := make([]value.Value, len(m.List))
	for i, litAST := range m.List {
		v, err := resolveLiteral(litAST, elemAttr)
		if err != nil {
			return dag.Predicate{}, err
		}
		items[i] = v
	}
	items = dag.CanonicalizeLitSet(items)

	op := dag.OpIn
	if m.Not {
		op = dag.OpNotIn
	}
	return dag.Predicate{Attr: attr.ID, Op: op, LitSet: items}, nil
}

// elementType returns the scalar type membership literals must match:
// itself for scalar attributes, or the element type for set-valued ones.
func elementType(t value.Type) value.Type {
	switch t {
	case value.StrSet:
		return value.Str
	case value.IntSet:
		return value.Int
	default:
		return t
	}
}

func resolveLiteral(lit *LiteralAST, attr attrs.Attr) (value.Value, error) {
	switch {
	case lit.Str != nil:
		if attr.Type != value.Str {
			return value.Value{}, apierr.TypeMismatch{Name: attr.Name, Expected: attr.Type, Actual: value.Str}
		}
		return value.OfStr(unquote(*lit.Str)), nil

	case lit.Decimal != nil:
		if attr.Type != value.Dec {
			return value.Value{}, apierr.TypeMismatch{Name: attr.Name, Expected: attr.Type, Actual: value.Dec}
		}
		d, err := parseDecimal(*lit.Decimal)
		if err != nil {
			return value.Value{}, apierr.ParseError{Reason: err.Error()}
		}
		return value.OfDec(d), nil

	case lit.Int != nil:
		n, err := strconv.ParseInt(*lit.Int, 10, 64)
		if err != nil {
			return value.Value{}, apierr.ParseError{Reason: err.Error()}
		}
		switch attr.Type {
		case value.Int:
			return value.OfInt(n), nil
		case value.Dec:
			// An integer literal also coerces into a decimal attribute,
			// with scale 0 (spec §4.2 point 1).
			return value.OfDec(decimal.FromInt(n)), nil
		default:
			return value.Value{}, apierr.TypeMismatch{Name: attr.Name, Expected: attr.Type, Actual: value.Int}
		}

	case lit.True, lit.False:
		if attr.Type != value.Bool {
			return value.Value{}, apierr.TypeMismatch{Name: attr.Name, Expected: attr.Type, Actual: value.Bool}
		}
		return value.OfBool(lit.True), nil

	default:
		return value.Value{}, apierr.ParseError{Reason: "malformed literal"}
	}
}

func unquote(raw string) string {
	inner := raw[1 : len(raw)-1]
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte('\\')
				b.WriteByte(inner[i])
			}
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

func parseDecimal(s string) (decimal.Decimal, error) {
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot+1:]
	scale := uint32(len(fracPart))
	digits := intPart + fracPart
	mantissa, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.New(mantissa, scale), nil
}
