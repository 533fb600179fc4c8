package ast

import (
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerTokens(t *testing.T) {
	lex, err := Lexer.Lex("", strings.NewReader(`all(unix, target_os = "macos")`))
	require.NoError(t, err)

	symbols := Lexer.Symbols()
	var kinds []lexer.TokenType
	var values []string
	for {
		token, err := lex.Next()
		require.NoError(t, err)
		if token.EOF() {
			break
		}
		if token.Type == symbols["Whitespace"] {
			continue
		}
		kinds = append(kinds, token.Type)
		values = append(values, token.Value)
	}

	assert.Equal(t, []string{"all", "(", "unix", ",", "target_os", "=", `"macos"`, ")"}, values)
	assert.Equal(t, symbols["Ident"], kinds[0])
	assert.Equal(t, symbols["Punct"], kinds[1])
	assert.Equal(t, symbols["String"], kinds[6])
}

func TestLexerRejectsForeignRunes(t *testing.T) {
	lex, err := Lexer.Lex("", strings.NewReader("unix & linux"))
	require.NoError(t, err)

	var lastErr error
	for lastErr == nil {
		token, err := lex.Next()
		if err != nil {
			lastErr = err
			break
		}
		if token.EOF() {
			break
		}
	}
	assert.Error(t, lastErr, "`&` is not a predicate token")
}
