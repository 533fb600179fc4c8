package ast

import "github.com/alecthomas/participle/v2/lexer"

// Lexer defines the token rules for configuration predicates: identifiers,
// double-quoted string literals and the punctuation `=`, `,`, `(`, `)`.
// It is the tokenizer collaborator of the parser; the grammar itself does
// not depend on how tokens were produced.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `\s+`, Action: nil},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},
		{Name: "Punct", Pattern: `[(),=]`, Action: nil},
	},
})
