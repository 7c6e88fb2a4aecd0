// internal/rules/evaluate.go
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/solatis/groupsight/internal/types"
)

/*
 * Expression evaluation.
 *
 * Evaluates a condition expression against a user's attribute map. The walk
 * is pure compute: same expression + same attributes always produce the same
 * result, and no state survives a call, so concurrent use needs no locking.
 *
 * Failure policy is fail closed: empty expressions, parse errors and
 * evaluation errors all yield false. A false result is therefore ambiguous
 * between "evaluated and did not match" and "could not evaluate"; callers
 * surfacing results to a reviewer must consult CanEvaluateLocally first.
 *
 * Group-membership calls are substituted with false and logged, never
 * resolved: membership resolution belongs to the upstream system.
 */

// Engine evaluates rule conditions and classifies group memberships.
// Stateless aside from its diagnostic logger; safe for concurrent use.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates an engine with the given diagnostic logger.
// A nil logger silences diagnostics.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Evaluate reports whether the expression holds for the given attributes.
// Empty or whitespace-only expressions are false without parsing. Any
// tokenize, parse or evaluation failure is logged with the offending
// expression and yields false; errors never escape to the caller.
func (e *Engine) Evaluate(expression string, attrs types.AttributeMap) bool {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return false
	}

	root, err := parse(trimmed)
	if err != nil {
		e.log.Warn("rule expression rejected",
			zap.String("expression", expression),
			zap.Error(err))
		return false
	}

	result, err := e.evalBool(root, attrs)
	if err != nil {
		e.log.Warn("rule expression evaluation failed",
			zap.String("expression", expression),
			zap.Error(err))
		return false
	}
	return result
}

// evalBool evaluates a node in boolean position.
func (e *Engine) evalBool(n *node, attrs types.AttributeMap) (bool, error) {
	switch n.kind {
	case nodeOr:
		left, err := e.evalBool(n.left, attrs)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return e.evalBool(n.right, attrs)

	case nodeAnd:
		left, err := e.evalBool(n.left, attrs)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return e.evalBool(n.right, attrs)

	case nodeCompare:
		left, err := e.evalValue(n.left, attrs)
		if err != nil {
			return false, err
		}
		right, err := e.evalValue(n.right, attrs)
		if err != nil {
			return false, err
		}
		eq := equalValues(left, right)
		if n.op == opNeq {
			return !eq, nil
		}
		return eq, nil

	case nodeMemberCall:
		// Substituted, never resolved. Warn so reviewers can tell this
		// false apart from a genuine non-match.
		e.log.Warn("group membership check substituted with false",
			zap.String("call", n.call))
		return false, nil

	default:
		// Bare operand in boolean position: only booleans qualify, null is
		// false. Anything else fails closed.
		v, err := e.evalValue(n, attrs)
		if err != nil {
			return false, err
		}
		switch v.Kind {
		case types.AttributeBool:
			return v.Bool, nil
		case types.AttributeNull:
			return false, nil
		default:
			return false, fmt.Errorf("%w: non-boolean value in boolean position", types.ErrParse)
		}
	}
}

// evalValue evaluates a node in operand position.
func (e *Engine) evalValue(n *node, attrs types.AttributeMap) (types.AttributeValue, error) {
	switch n.kind {
	case nodeLiteral:
		return n.lit, nil
	case nodeAttr:
		return attrs.Lookup(n.attr), nil
	default:
		return types.AttributeValue{}, fmt.Errorf("%w: expected literal or attribute reference", types.ErrParse)
	}
}

// equalValues compares two primitive values.
// Null equals only null: a missing attribute matches `== null` and nothing
// else. Numbers compare numerically, and a string operand compares
// numerically against a number when it parses as one, mirroring the loose
// equality of the upstream evaluator. All other cross-type pairs are unequal.
func equalValues(a, b types.AttributeValue) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}

	if a.Kind == b.Kind {
		switch a.Kind {
		case types.AttributeString:
			return a.Str == b.Str
		case types.AttributeNumber:
			return a.Num == b.Num
		case types.AttributeBool:
			return a.Bool == b.Bool
		}
	}

	if na, ok := asNumber(a); ok {
		if nb, ok := asNumber(b); ok {
			return na == nb
		}
	}
	return false
}

// asNumber converts a value to float64 for numeric comparison.
// Strings participate only when they parse cleanly as numbers.
func asNumber(v types.AttributeValue) (float64, bool) {
	switch v.Kind {
	case types.AttributeNumber:
		return v.Num, true
	case types.AttributeString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
