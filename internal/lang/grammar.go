// Package lang implements the expression lexer, parser, and lowering
// (C2): source text becomes a participle-parsed AST (this file), which is
// then normalised into the shared expression DAG (lower.go, build.go),
// mirroring the teacher repository's dsl package split between
// grammar.go (lexer + AST) and parser.go/convert.go (AST -> domain model).
package lang

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(and|or|not|in|is|null|true|false)\b`},
	{Name: "Decimal", Pattern: `\d+\.\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Op", Pattern: `<=|>=|<>|!=|=|<|>`},
	{Name: "Punct", Pattern: `[(),\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Expr is the top-level AST node: the lowest-precedence production,
// matching spec §4.2's "expr := orexpr".
type Expr struct {
	Or *OrExpr `parser:"@@"`
}

// OrExpr: andexpr ("or" andexpr)*
type OrExpr struct {
	Operands []*AndExpr `parser:"@@ ( \"or\" @@ )*"`
}

// AndExpr: notexpr ("and" notexpr)*
type AndExpr struct {
	Operands []*NotExpr `parser:"@@ ( \"and\" @@ )*"`
}

// NotExpr: "not" notexpr | primary. Nots captures zero or more "not"
// tokens so that double negation is resolvable during lowering (it
// cancels) without needing a recursive grammar rule.
type NotExpr struct {
	Nots    []string `parser:"@\"not\"*"`
	Primary *Primary `parser:"@@"`
}

// Primary: "(" expr ")" | predicate
type Primary struct {
	Sub  *Expr         `parser:"  \"(\" @@ \")\""`
	Pred *PredicateAST `parser:"| @@"`
}

// PredicateAST: IDENT op literal | IDENT (not)? in listlit | IDENT is (not)? null | IDENT (bare)
type PredicateAST struct {
	Attr string         `parser:"@Ident"`
	Tail *PredicateTail `parser:"@@?"`
}

// PredicateTail disambiguates the three predicate forms that follow an
// identifier; a nil Tail means the bare "attr" bool-identity form.
type PredicateTail struct {
	Compare    *CompareTail    `parser:"  @@"`
	Membership *MembershipTail `parser:"| @@"`
	NullTest   *NullTail       `parser:"| @@"`
}

// CompareTail: op literal
type CompareTail struct {
	Op  string      `parser:"@Op"`
	Lit *LiteralAST `parser:"@@"`
}

// MembershipTail: ("not")? "in" "[" literal ("," literal)* "]"
type MembershipTail struct {
	Not  bool          `parser:"@\"not\"? \"in\""`
	List []*LiteralAST `parser:"\"[\" @@ ( \",\" @@ )* \"]\""`
}

// NullTail: "is" ("not")? "null"
type NullTail struct {
	Not bool `parser:"\"is\" @\"not\"? \"null\""`
}

// LiteralAST: INT | DECIMAL | STRING | "true" | "false"
type LiteralAST struct {
	Str     *string `parser:"  @String"`
	Decimal *string `parser:"| @Decimal"`
	Int     *string `parser:"| @Int"`
	True    bool    `parser:"| @\"true\""`
	False   bool    `parser:"| @\"false\""`
}

var exprParser = participle.MustBuild[Expr](
	participle.Lexer(exprLexer),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)
