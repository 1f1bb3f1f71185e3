// Package value implements the typed, tagged-union attribute values the
// A-Tree compares predicates against, plus the declared attribute types
// they must match.
package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaleidodag/atree/internal/decimal"
)

// Type is one of the six attribute types the registry can declare.
type Type int

const (
	Bool Type = iota
	Int
	Dec
	Str
	StrSet
	IntSet
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "i64"
	case Dec:
		return "decimal"
	case Str:
		return "string"
	case StrSet:
		return "set-of-string"
	case IntSet:
		return "set-of-i64"
	default:
		return "unknown"
	}
}

// Kind discriminates a Value. Undefined is a first-class kind meaning "no
// value was supplied for this attribute in this event".
type Kind int

const (
	KindUndefined Kind = iota
	KindBool
	KindInt
	KindDec
	KindStr
	KindStrSet
	KindIntSet
)

// Value is a tagged union over the six typed kinds plus Undefined. Only the
// field matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Dec    decimal.Decimal
	Str    string
	StrSet map[string]struct{}
	IntSet map[int64]struct{}
}

// Undefined is the canonical "no value" instance.
var Undefined = Value{Kind: KindUndefined}

func OfBool(b bool) Value                 { return Value{Kind: KindBool, Bool: b} }
func OfInt(i int64) Value                 { return Value{Kind: KindInt, Int: i} }
func OfDec(d decimal.Decimal) Value       { return Value{Kind: KindDec, Dec: d} }
func OfStr(s string) Value                { return Value{Kind: KindStr, Str: s} }
func OfStrSet(s map[string]struct{}) Value { return Value{Kind: KindStrSet, StrSet: s} }
func OfIntSet(s map[int64]struct{}) Value { return Value{Kind: KindIntSet, IntSet: s} }

// StrSetOf builds a set-of-string value from a literal list.
func StrSetOf(items ...string) Value {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return OfStrSet(m)
}

// IntSetOf builds a set-of-i64 value from a literal list.
func IntSetOf(items ...int64) Value {
	m := make(map[int64]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return OfIntSet(m)
}

// TypeOf reports the declared Type that this Value's kind corresponds to.
// Undefined has no type and TypeOf panics if called on it; callers must
// special-case KindUndefined before asking for a type.
func (v Value) TypeOf() Type {
	switch v.Kind {
	case KindBool:
		return Bool
	case KindInt:
		return Int
	case KindDec:
		return Dec
	case KindStr:
		return Str
	case KindStrSet:
		return StrSet
	case KindIntSet:
		return IntSet
	default:
		panic("value: TypeOf called on Undefined")
	}
}

// String renders a value for diagnostics and Graphviz labels.
func (v Value) String() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindDec:
		return v.Dec.String()
	case KindStr:
		return fmt.Sprintf("%q", v.Str)
	case KindStrSet:
		items := make([]string, 0, len(v.StrSet))
		for s := range v.StrSet {
			items = append(items, s)
		}
		sort.Strings(items)
		return "{" + strings.Join(items, ", ") + "}"
	case KindIntSet:
		items := make([]int64, 0, len(v.IntSet))
		for i := range v.IntSet {
			items = append(items, i)
		}
		sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = fmt.Sprintf("%d", it)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}
