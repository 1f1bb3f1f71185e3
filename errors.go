package atree

import "github.com/kaleidodag/atree/internal/apierr"

// Error types surfaced at the public API boundary, re-exported from
// internal/apierr in the same shape as the teacher repository's
// graph.GraphError / query.QueryError: a plain struct per error kind that
// callers can type-switch on, rather than a single error type with a Kind
// string field.
type (
	ParseError            = apierr.ParseError
	UnknownAttribute      = apierr.UnknownAttribute
	DuplicateAttribute    = apierr.DuplicateAttribute
	TypeMismatch          = apierr.TypeMismatch
	DuplicateSubscription = apierr.DuplicateSubscription
	BuilderConsumed       = apierr.BuilderConsumed
	RegistryFrozen        = apierr.RegistryFrozen
)
