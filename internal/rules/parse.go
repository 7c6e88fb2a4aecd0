// internal/rules/parse.go
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/solatis/groupsight/internal/types"
)

/*
 * Recursive-descent parser for the constrained rule-expression grammar.
 *
 * Grammar (lowest to highest precedence):
 *
 *   expr       := andExpr { OR andExpr }
 *   andExpr    := comparison { AND comparison }
 *   comparison := operand [ (EQ | NEQ) operand ]
 *   operand    := literal | attrRef | memberCall | '(' expr ')'
 *
 * The grammar is deliberately flat: no arithmetic, no nested function calls.
 * The only recognized call family is the upstream group-membership check,
 * which parses to an unsupported-call node that always evaluates false (the
 * engine must never resolve group membership itself). Every other call or
 * bare identifier is a parse error, and app.* references are rejected with
 * ErrUnsupportedConstruct so the failure is attributable by the caller.
 *
 * Parsing replaces the upstream's dynamic code-execution facility with an
 * auditable AST walk; the supported subset is exactly what this file accepts.
 */

type nodeKind int

const (
	nodeOr nodeKind = iota
	nodeAnd
	nodeCompare
	nodeLiteral
	nodeAttr
	nodeMemberCall
)

type compareOp int

const (
	opEq compareOp = iota
	opNeq
)

// node is one AST node. Field usage depends on kind: left/right for
// or/and/compare, lit for literals, attr for user.* references, call for
// the original text of a recognized group-membership call.
type node struct {
	kind  nodeKind
	op    compareOp
	left  *node
	right *node
	lit   types.AttributeValue
	attr  string
	call  string
}

// memberCallPrefix identifies the upstream group-membership function family
// (isMemberOfGroup, isMemberOfGroupName, isMemberOfAnyGroup, ...).
const memberCallPrefix = "ismemberof"

func isMemberCallName(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), memberCallPrefix)
}

type parser struct {
	tokens []token
	pos    int
}

// parse tokenizes and parses an expression into an AST.
func parse(expression string) (*node, error) {
	tokens, err := tokenize(expression)
	if err != nil {
		return nil, err
	}
	if tokens[0].typ == tokenEOF {
		return nil, types.ErrEmptyExpression
	}
	p := &parser{tokens: tokens}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokenEOF {
		return nil, fmt.Errorf("%w: unexpected %s", types.ErrParse, tok)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (*node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokenOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &node{kind: nodeOr, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (*node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokenAnd {
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &node{kind: nodeAnd, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseComparison() (*node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.typ != tokenEq && tok.typ != tokenNeq {
		return left, nil
	}
	p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op := opEq
	if tok.typ == tokenNeq {
		op = opNeq
	}
	return &node{kind: nodeCompare, op: op, left: left, right: right}, nil
}

func (p *parser) parseOperand() (*node, error) {
	tok := p.next()
	switch tok.typ {
	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.typ != tokenRParen {
			return nil, fmt.Errorf("%w: expected ')' but got %s", types.ErrParse, closing)
		}
		return inner, nil

	case tokenString:
		return &node{kind: nodeLiteral, lit: types.StringValue(tok.val)}, nil

	case tokenNumber:
		f, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", types.ErrParse, tok.val)
		}
		return &node{kind: nodeLiteral, lit: types.NumberValue(f)}, nil

	case tokenBool:
		return &node{kind: nodeLiteral, lit: types.BoolValue(tok.val == "true")}, nil

	case tokenNull:
		return &node{kind: nodeLiteral, lit: types.NullValue()}, nil

	case tokenIdent:
		return p.parseReference(tok)

	default:
		return nil, fmt.Errorf("%w: unexpected %s", types.ErrParse, tok)
	}
}

// parseReference handles identifiers: user.* attribute references, the
// recognized group-membership call family, and rejected app.* references.
func (p *parser) parseReference(tok token) (*node, error) {
	if name, ok := strings.CutPrefix(tok.val, "user."); ok {
		if name == "" || strings.Contains(name, ".") {
			return nil, fmt.Errorf("%w: malformed attribute reference %q", types.ErrParse, tok.val)
		}
		return &node{kind: nodeAttr, attr: name}, nil
	}

	if strings.HasPrefix(tok.val, "app.") {
		return nil, fmt.Errorf("%w: application-context reference %q", types.ErrUnsupportedConstruct, tok.val)
	}

	if isMemberCallName(tok.val) && p.peek().typ == tokenLParen {
		call, err := p.consumeCall(tok.val)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeMemberCall, call: call}, nil
	}

	return nil, fmt.Errorf("%w: unexpected identifier %q", types.ErrParse, tok.val)
}

// consumeCall swallows a balanced argument list after a recognized call
// name. Arguments are never interpreted; only the call text is kept for
// diagnostics.
func (p *parser) consumeCall(name string) (string, error) {
	var b strings.Builder
	b.WriteString(name)

	depth := 0
	for {
		tok := p.next()
		switch tok.typ {
		case tokenLParen:
			depth++
		case tokenRParen:
			depth--
		case tokenEOF:
			return "", fmt.Errorf("%w: unterminated call %q", types.ErrParse, name)
		case tokenString:
			b.WriteString(strconv.Quote(tok.val))
			continue
		}
		b.WriteString(tok.val)
		if depth == 0 {
			return b.String(), nil
		}
	}
}
