package lang

import (
	"errors"

	"github.com/alecthomas/participle/v2"

	"github.com/kaleidodag/atree/internal/apierr"
	"github.com/kaleidodag/atree/internal/attrs"
	"github.com/kaleidodag/atree/internal/dag"
)

// Parse runs src through the participle grammar and returns its AST,
// translating any lexer/parser failure into apierr.ParseError so callers
// never see a raw participle error type.
func Parse(src string) (*Expr, error) {
	expr, err := exprParser.ParseString("", src)
	if err != nil {
		return nil, toParseError(err)
	}
	return expr, nil
}

func toParseError(err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return apierr.ParseError{Line: pos.Line, Column: pos.Column, Reason: perr.Message()}
	}
	return apierr.ParseError{Reason: err.Error()}
}

// Build parses src, resolves and type-checks it against reg, folds
// negation into predicate leaves, and interns the resulting expression
// into arena, returning its root id. This is the single entry point
// component C4 (the subscription table) uses for Insert.
func Build(src string, reg *attrs.Registry, arena *dag.Arena) (dag.ID, error) {
	ast, err := Parse(src)
	if err != nil {
		return dag.Invalid, err
	}
	tree, err := lowerExpr(ast, reg, false)
	if err != nil {
		return dag.Invalid, err
	}
	return buildNode(tree, arena), nil
}
