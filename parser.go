package cfgpred

import (
	"errors"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/cfgpred/cfgpred-go/ast"
)

// parser recognizes the generic meta form (ident, ident = "value",
// ident(list)) in a single forward pass; operator identifiers are resolved
// afterwards by the lowering pass.
var parser = participle.MustBuild[ast.Expr](
	participle.Lexer(ast.Lexer),
	participle.Elide("Whitespace"),
	// Two tokens: at a comma the parser must see the following token to
	// tell a further list item from a trailing comma.
	participle.UseLookahead(2),
)

// Parse parses the text of one configuration predicate. It returns the
// predicate tree or a *ParseError describing the first failure.
func Parse(text string) (Predicate, error) {
	expr, err := parser.ParseString("", text)
	if err != nil {
		return nil, translateError(err, text)
	}
	return lower(expr)
}

// ParseLexer parses a predicate from an already-running token stream. It
// exists for callers that drive their own tokenizer over a larger input and
// hand this parser the predicate portion.
func ParseLexer(lex *lexer.PeekingLexer) (Predicate, error) {
	expr, err := parser.ParseFromLexer(lex)
	if err != nil {
		return nil, translateError(err, "")
	}
	return lower(expr)
}

// ParseAttr parses a predicate wrapped in the attribute form `cfg(...)`,
// which must contain exactly one predicate.
func ParseAttr(text string) (Predicate, error) {
	expr, err := parser.ParseString("", text)
	if err != nil {
		return nil, translateError(err, text)
	}
	if expr.Ident != "cfg" || !expr.HasList() {
		return nil, &ParseError{
			Kind:     ErrUnexpectedToken,
			Expected: "cfg(...)",
			Found:    expr.Ident,
			Pos:      expr.Pos,
		}
	}
	if len(expr.Items) == 0 {
		return nil, &ParseError{
			Kind:     ErrUnexpectedToken,
			Expected: "predicate",
			Found:    ")",
			Pos:      expr.Pos,
		}
	}
	if len(expr.Items) > 1 {
		return nil, &ParseError{
			Kind:     ErrUnexpectedToken,
			Expected: ")",
			Found:    expr.Items[1].Ident,
			Pos:      expr.Items[1].Pos,
		}
	}
	return lower(expr.Items[0])
}

// MustParse is Parse for known-good inputs; it panics on error.
func MustParse(text string) Predicate {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// lower resolves operator identifiers in a generic meta tree and builds the
// predicate model. List order is preserved verbatim.
func lower(expr *ast.Expr) (Predicate, error) {
	switch {
	case expr.Value != nil:
		value, err := unquote(expr.Value)
		if err != nil {
			return nil, err
		}
		return &NameValue{Name: expr.Ident, Value: value}, nil

	case expr.HasList():
		switch expr.Ident {
		case "all":
			children, err := lowerList(expr.Items)
			if err != nil {
				return nil, err
			}
			return &All{Predicates: children}, nil
		case "any":
			children, err := lowerList(expr.Items)
			if err != nil {
				return nil, err
			}
			return &Any{Predicates: children}, nil
		case "not":
			if len(expr.Items) == 0 {
				return nil, &ParseError{
					Kind:     ErrUnexpectedToken,
					Expected: "predicate",
					Found:    ")",
					Pos:      expr.Pos,
				}
			}
			if len(expr.Items) > 1 {
				return nil, &ParseError{
					Kind:     ErrUnexpectedToken,
					Expected: ")",
					Found:    expr.Items[1].Ident,
					Pos:      expr.Items[1].Pos,
				}
			}
			child, err := lower(expr.Items[0])
			if err != nil {
				return nil, err
			}
			return &Not{Predicate: child}, nil
		default:
			return nil, &ParseError{
				Kind:  ErrUnknownOperator,
				Found: expr.Ident,
				Pos:   expr.Pos,
			}
		}

	default:
		return validName(expr)
	}
}

func lowerList(items []*ast.Expr) ([]Predicate, error) {
	children := make([]Predicate, 0, len(items))
	for _, item := range items {
		child, err := lower(item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func validName(expr *ast.Expr) (Predicate, error) {
	// The tokenizer only produces well-formed identifiers, so this cannot
	// fail for parsed input; it guards the ParseLexer entry, where a foreign
	// tokenizer supplies the tokens.
	if !isIdent(expr.Ident) {
		return nil, &ParseError{
			Kind:     ErrUnexpectedToken,
			Expected: "identifier",
			Found:    expr.Ident,
			Pos:      expr.Pos,
		}
	}
	return &Name{Name: expr.Ident}, nil
}

func unquote(lit *ast.Literal) (string, error) {
	value, err := strconv.Unquote(lit.Raw)
	if err != nil {
		return "", &ParseError{
			Kind:  ErrInvalidLiteral,
			Found: lit.Raw,
			Pos:   lit.Pos,
		}
	}
	return value, nil
}

// translateError maps tokenizer and grammar failures onto ParseError kinds.
// text is the original input, used to tell a truncated list from other
// end-of-input failures; it may be empty when the caller owns the tokens.
func translateError(err error, text string) error {
	var unexpected *participle.UnexpectedTokenError
	if errors.As(err, &unexpected) {
		if unexpected.Unexpected.EOF() && unterminated(text) {
			return &ParseError{
				Kind:     ErrUnterminatedList,
				Expected: ")",
				Found:    "<EOF>",
				Pos:      unexpected.Unexpected.Pos,
			}
		}
		found := unexpected.Unexpected.Value
		if unexpected.Unexpected.EOF() {
			found = "<EOF>"
		}
		return &ParseError{
			Kind:     ErrUnexpectedToken,
			Expected: unexpected.Expect,
			Found:    found,
			Pos:      unexpected.Unexpected.Pos,
		}
	}

	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return &ParseError{
			Kind:  ErrUnexpectedToken,
			Found: lexErr.Message(),
			Pos:   lexErr.Position(),
		}
	}
	return err
}

// unterminated reports whether text ends with an unclosed parenthesis. It
// re-lexes the input so parentheses inside string literals do not count.
func unterminated(text string) bool {
	lex, err := ast.Lexer.Lex("", strings.NewReader(text))
	if err != nil {
		return false
	}

	depth := 0
	for {
		token, err := lex.Next()
		if err != nil || token.EOF() {
			break
		}
		switch token.Value {
		case "(":
			depth++
		case ")":
			depth--
		}
	}
	return depth > 0
}
