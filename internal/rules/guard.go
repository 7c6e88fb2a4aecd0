// internal/rules/guard.go
package rules

import (
	"regexp"
	"strings"
)

/*
 * Evaluability pre-check.
 *
 * Evaluate fails closed, so a false result cannot distinguish "evaluated and
 * did not match" from "could not evaluate". CanEvaluateLocally is the
 * textual pre-check callers must run before trusting a false result: a
 * condition it rejects must be presented as "cannot evaluate", never as a
 * non-match. It is deliberately not a full parse; a fast scan is enough to
 * catch the two construct families the evaluator refuses to resolve.
 */

// appContextRef matches an app.* attribute reference as its own token;
// "webapp.owner" or "user.app" must not trip the guard.
var appContextRef = regexp.MustCompile(`(^|[^A-Za-z0-9_.])app\.[A-Za-z_]`)

// CanEvaluateLocally reports whether the expression is within the locally
// evaluable subset. Returns false for empty expressions, group-membership
// checks and application-context attribute references.
func CanEvaluateLocally(expression string) bool {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return false
	}
	if strings.Contains(strings.ToLower(trimmed), memberCallPrefix) {
		return false
	}
	if appContextRef.MatchString(trimmed) {
		return false
	}
	return true
}
