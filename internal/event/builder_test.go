package event

import (
	"errors"
	"testing"

	"github.com/kaleidodag/atree/internal/apierr"
	"github.com/kaleidodag/atree/internal/attrs"
	"github.com/kaleidodag/atree/internal/value"
)

func newReg(t *testing.T) *attrs.Registry {
	t.Helper()
	reg := attrs.New()
	if _, err := reg.Declare("private", value.Bool, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Declare("exchange_id", value.Int, 0); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestBuilder_SetAndGet(t *testing.T) {
	reg := newReg(t)
	b := New(reg)

	if err := b.WithBool("private", true); err != nil {
		t.Fatalf("WithBool: %v", err)
	}
	attr, _ := reg.Lookup("private")
	got := b.Get(attr.ID)
	if got.Kind != value.KindBool || !got.Bool {
		t.Fatalf("expected Bool(true), got %+v", got)
	}
}

func TestBuilder_MissingAttributeIsUndefined(t *testing.T) {
	reg := newReg(t)
	b := New(reg)
	attr, _ := reg.Lookup("exchange_id")
	got := b.Get(attr.ID)
	if got.Kind != value.KindUndefined {
		t.Fatalf("expected Undefined for unset attribute, got %+v", got)
	}
}

func TestBuilder_TypeMismatch(t *testing.T) {
	reg := newReg(t)
	b := New(reg)
	err := b.WithInt("private", 1)
	var tm apierr.TypeMismatch
	if !errors.As(err, &tm) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestBuilder_UnknownAttribute(t *testing.T) {
	reg := newReg(t)
	b := New(reg)
	err := b.WithBool("nonexistent", true)
	var ua apierr.UnknownAttribute
	if !errors.As(err, &ua) {
		t.Fatalf("expected UnknownAttribute, got %v", err)
	}
}

func TestBuilder_ConsumedRejectsFurtherWrites(t *testing.T) {
	reg := newReg(t)
	b := New(reg)
	b.Consume()
	err := b.WithBool("private", true)
	var bc apierr.BuilderConsumed
	if !errors.As(err, &bc) {
		t.Fatalf("expected BuilderConsumed, got %v", err)
	}
}
