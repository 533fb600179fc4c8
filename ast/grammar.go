package ast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Expr is one predicate expression in generic meta form, before operator
// identifiers are resolved: a bare identifier, an identifier with a string
// value, or an identifier applied to a parenthesized list. The lowering pass
// in the root package turns it into the predicate model, so the grammar stays
// a single production with one token of lookahead and no backtracking.
type Expr struct {
	Pos lexer.Position

	Ident string   `parser:"@Ident"`
	Value *Literal `parser:"( '=' @@"`
	Open  string   `parser:"| @'('"`
	Items []*Expr  `parser:"  ( @@ ( ',' @@ )* ','? )?"`
	Close string   `parser:"  ')' )?"`
}

// Literal is a quoted string literal token. Raw keeps the surrounding quotes
// and any escapes exactly as the tokenizer produced them; unquoting happens
// during lowering.
type Literal struct {
	Pos lexer.Position

	Raw string `parser:"@String"`
}

// HasList reports whether the expression carried a parenthesized argument
// list, distinguishing `all()` from the bare name `all`.
func (e *Expr) HasList() bool {
	return e.Open == "("
}
