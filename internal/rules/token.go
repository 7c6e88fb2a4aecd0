// internal/rules/token.go
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/solatis/groupsight/internal/types"
)

/*
 * Lexical analysis for the constrained rule-expression grammar.
 *
 * The grammar is a small subset of the upstream expression language:
 * attribute references (user.<name>, app.<name>), string/number/boolean/null
 * literals, == and != comparison, and/or connectives, parentheses, and the
 * recognized group-membership function family (detected, never resolved).
 *
 * Word operators (eq, and, or) are case-insensitive and only recognized as
 * whole tokens: identifiers are scanned maximally, so "user.frequency" can
 * never shed an embedded "eq".
 */

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenIdent
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenLParen
	tokenRParen
	tokenComma
)

func (tt tokenType) String() string {
	switch tt {
	case tokenEOF:
		return "EOF"
	case tokenString:
		return "STRING"
	case tokenNumber:
		return "NUMBER"
	case tokenBool:
		return "BOOL"
	case tokenNull:
		return "NULL"
	case tokenIdent:
		return "IDENT"
	case tokenEq:
		return "EQ"
	case tokenNeq:
		return "NEQ"
	case tokenAnd:
		return "AND"
	case tokenOr:
		return "OR"
	case tokenLParen:
		return "LPAREN"
	case tokenRParen:
		return "RPAREN"
	case tokenComma:
		return "COMMA"
	default:
		return "UNKNOWN"
	}
}

// token is a single lexeme with its byte offset for error reporting.
type token struct {
	typ tokenType
	val string
	pos int
}

func (t token) String() string {
	return fmt.Sprintf("%s(%q) at pos %d", t.typ, t.val, t.pos)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

// tokenize converts an expression string into tokens, ending with EOF.
// Returns ErrParse-wrapped errors for characters outside the grammar.
func tokenize(expression string) ([]token, error) {
	var tokens []token
	pos := 0

	for pos < len(expression) {
		c := expression[pos]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++

		case c == '(':
			tokens = append(tokens, token{tokenLParen, "(", pos})
			pos++

		case c == ')':
			tokens = append(tokens, token{tokenRParen, ")", pos})
			pos++

		// Commas only appear inside group-membership call argument lists;
		// the parser rejects them anywhere else.
		case c == ',':
			tokens = append(tokens, token{tokenComma, ",", pos})
			pos++

		case c == '=':
			if pos+1 >= len(expression) || expression[pos+1] != '=' {
				return nil, fmt.Errorf("%w: single '=' at position %d", types.ErrParse, pos)
			}
			tokens = append(tokens, token{tokenEq, "==", pos})
			pos += 2

		case c == '!':
			if pos+1 >= len(expression) || expression[pos+1] != '=' {
				return nil, fmt.Errorf("%w: unexpected '!' at position %d", types.ErrParse, pos)
			}
			tokens = append(tokens, token{tokenNeq, "!=", pos})
			pos += 2

		case c == '"' || c == '\'':
			lit, next, err := scanString(expression, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokenString, lit, pos})
			pos = next

		case c >= '0' && c <= '9':
			start := pos
			for pos < len(expression) && (expression[pos] >= '0' && expression[pos] <= '9' || expression[pos] == '.') {
				pos++
			}
			lit := expression[start:pos]
			if _, err := strconv.ParseFloat(lit, 64); err != nil {
				return nil, fmt.Errorf("%w: invalid number %q at position %d", types.ErrParse, lit, start)
			}
			tokens = append(tokens, token{tokenNumber, lit, start})

		case isIdentStart(c):
			start := pos
			for pos < len(expression) && isIdentChar(expression[pos]) {
				pos++
			}
			tokens = append(tokens, keywordOrIdent(expression[start:pos], start))

		default:
			return nil, fmt.Errorf("%w: unexpected character %q at position %d", types.ErrParse, rune(c), pos)
		}
	}

	tokens = append(tokens, token{tokenEOF, "", pos})
	return tokens, nil
}

// keywordOrIdent classifies a scanned word as operator keyword, literal
// keyword or identifier. eq/and/or are case-insensitive; true/false/null
// match the upstream literal forms exactly.
func keywordOrIdent(word string, pos int) token {
	switch strings.ToLower(word) {
	case "eq":
		return token{tokenEq, word, pos}
	case "and":
		return token{tokenAnd, word, pos}
	case "or":
		return token{tokenOr, word, pos}
	}
	switch word {
	case "true", "false":
		return token{tokenBool, word, pos}
	case "null":
		return token{tokenNull, word, pos}
	}
	return token{tokenIdent, word, pos}
}

// scanString reads a quoted literal starting at pos, handling backslash
// escapes. Returns the unquoted value and the offset past the closing quote.
func scanString(expression string, pos int) (string, int, error) {
	quote := expression[pos]
	var b strings.Builder
	i := pos + 1
	for i < len(expression) {
		c := expression[i]
		if c == '\\' && i+1 < len(expression) {
			b.WriteByte(expression[i+1])
			i += 2
			continue
		}
		if c == quote {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, fmt.Errorf("%w: unterminated string at position %d", types.ErrParse, pos)
}
