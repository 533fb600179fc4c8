package cfgpred

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// ErrorKind classifies a terminal parse failure.
type ErrorKind int

const (
	// ErrUnexpectedToken reports a token that matches no grammar alternative.
	ErrUnexpectedToken ErrorKind = iota
	// ErrUnknownOperator reports an identifier in operator position that is
	// not one of all, any or not.
	ErrUnknownOperator
	// ErrUnterminatedList reports end of input before a closing parenthesis.
	ErrUnterminatedList
	// ErrInvalidLiteral reports a string literal the tokenizer produced but
	// the literal rules reject.
	ErrInvalidLiteral
)

// ParseError is the single error type returned by the parser. Parsing stops
// at the first failure; there is no recovery and no partial tree.
type ParseError struct {
	Kind     ErrorKind
	Expected string
	Found    string
	Pos      lexer.Position
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrUnknownOperator:
		return fmt.Sprintf("%s: unexpected operator `%s`", e.Pos, e.Found)
	case ErrUnterminatedList:
		return fmt.Sprintf("%s: unterminated list, expected %s", e.Pos, e.Expected)
	case ErrInvalidLiteral:
		return fmt.Sprintf("%s: invalid literal %s", e.Pos, e.Found)
	default:
		if e.Expected != "" {
			return fmt.Sprintf("%s: unexpected token %q, expected %s", e.Pos, e.Found, e.Expected)
		}
		return fmt.Sprintf("%s: unexpected token %q", e.Pos, e.Found)
	}
}
