// internal/rules/score.go
package rules

import (
	"strings"

	"github.com/solatis/groupsight/internal/types"
)

/*
 * Confidence scoring.
 *
 * The upstream system never reports which rule produced a membership, so
 * the responsible rule can only be guessed. The heuristic: a rule whose
 * condition text contains the user's actual values for the attributes the
 * rule declares it references is more plausibly the producer.
 *
 * This is a modeled, permanent approximation, not a bug to fix. The
 * substring test deliberately matches against the raw condition text, so a
 * short value can "match" inside an unrelated token; behavioral parity with
 * the deployed heuristic wins over matching precision.
 *
 * Tie-break is by position: the first candidate reaching the threshold wins,
 * not the globally best-scoring one. The UI reports a single best guess and
 * a flip in choice between releases would read as a regression.
 */

// overlapThreshold is the minimum overlap ratio for a candidate to qualify.
const overlapThreshold = 0.5

// PickBestRule selects the most plausible rule among candidates and assigns
// a confidence level. The first candidate (in input order) whose overlap
// ratio reaches the threshold is selected: high confidence at full overlap,
// medium otherwise. When no candidate qualifies, the first candidate is
// selected by default with low confidence.
//
// Candidates must be non-empty; the classifier only calls with survivors of
// MatchingRules.
func PickBestRule(candidates []types.GroupRule, attrs types.AttributeMap) (types.GroupRule, types.Confidence) {
	for _, rule := range candidates {
		ratio, ok := overlapRatio(rule, attrs)
		if !ok || ratio < overlapThreshold {
			continue
		}
		if ratio == 1.0 {
			return rule, types.ConfidenceHigh
		}
		return rule, types.ConfidenceMedium
	}
	return candidates[0], types.ConfidenceLow
}

// overlapRatio computes matched/referenced over the rule's declared
// attribute list. A rule declaring no attributes cannot qualify via this
// path (ok=false); division by zero is not a confidence signal.
func overlapRatio(rule types.GroupRule, attrs types.AttributeMap) (float64, bool) {
	referenced := len(rule.UserAttributes)
	if referenced == 0 {
		return 0, false
	}

	matched := 0
	for _, name := range rule.UserAttributes {
		value := attrs.Lookup(name)
		if value.IsNull() {
			continue
		}
		text := value.Text()
		if text == "" {
			continue
		}
		if conditionContains(rule.Condition, text) {
			matched++
		}
	}

	return float64(matched) / float64(referenced), true
}

// conditionContains performs the case-insensitive substring test of a user
// attribute value against the raw condition text. The bare containment
// check subsumes the quoted forms ("value", 'value'): if either quoted
// spelling appears, the bare one does too.
func conditionContains(condition, value string) bool {
	return strings.Contains(strings.ToLower(condition), strings.ToLower(value))
}
