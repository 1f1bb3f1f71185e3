// Package event implements the event builder (C5): a sparse, single-use
// accumulator of typed attribute values for one search call.
package event

import (
	"github.com/kaleidodag/atree/internal/apierr"
	"github.com/kaleidodag/atree/internal/attrs"
	"github.com/kaleidodag/atree/internal/decimal"
	"github.com/kaleidodag/atree/internal/value"
)

// Builder accumulates AttrId -> Value for one query. It is consumed
// exactly once by a search call; any further With* call after Consume
// returns BuilderConsumed.
type Builder struct {
	reg      *attrs.Registry
	values   map[attrs.ID]value.Value
	consumed bool
}

// New builds an empty event builder resolving names against reg.
func New(reg *attrs.Registry) *Builder {
	return &Builder{reg: reg, values: make(map[attrs.ID]value.Value)}
}

func (b *Builder) set(name string, want value.Type, v value.Value) error {
	if b.consumed {
		return apierr.BuilderConsumed{}
	}
	attr, err := b.reg.Lookup(name)
	if err != nil {
		return err
	}
	if attr.Type != want {
		return apierr.TypeMismatch{Name: name, Expected: attr.Type, Actual: want}
	}
	b.values[attr.ID] = v
	return nil
}

// WithBool records a bool value for name.
func (b *Builder) WithBool(name string, v bool) error {
	return b.set(name, value.Bool, value.OfBool(v))
}

// WithInt records an i64 value for name.
func (b *Builder) WithInt(name string, v int64) error {
	return b.set(name, value.Int, value.OfInt(v))
}

// WithDec records a decimal value for name.
func (b *Builder) WithDec(name string, mantissa int64, scale uint32) error {
	return b.set(name, value.Dec, value.OfDec(decimal.New(mantissa, scale)))
}

// WithStr records a string value for name.
func (b *Builder) WithStr(name string, v string) error {
	return b.set(name, value.Str, value.OfStr(v))
}

// WithStrSet records a set-of-string value for name.
func (b *Builder) WithStrSet(name string, items ...string) error {
	return b.set(name, value.StrSet, value.StrSetOf(items...))
}

// WithIntSet records a set-of-i64 value for name.
func (b *Builder) WithIntSet(name string, items ...int64) error {
	return b.set(name, value.IntSet, value.IntSetOf(items...))
}

// WithUndefined explicitly records Undefined for name, distinguishing "I
// checked and there is no value" from "I never set this attribute" (both
// evaluate identically, but explicit Undefined still validates the name).
func (b *Builder) WithUndefined(name string) error {
	if b.consumed {
		return apierr.BuilderConsumed{}
	}
	attr, err := b.reg.Lookup(name)
	if err != nil {
		return err
	}
	b.values[attr.ID] = value.Undefined
	return nil
}

// Get returns the value recorded for id, or Undefined if the attribute was
// never set — the "missing attributes implicitly evaluate as Undefined"
// rule from spec §4.5.
func (b *Builder) Get(id attrs.ID) value.Value {
	if v, ok := b.values[id]; ok {
		return v
	}
	return value.Undefined
}

// Consume marks the builder as spent. Called by the evaluator at the start
// of search; any With* call afterwards fails with BuilderConsumed.
func (b *Builder) Consume() {
	b.consumed = true
}

// Consumed reports whether Consume has already been called.
func (b *Builder) Consumed() bool {
	return b.consumed
}
