// internal/rules/conflict.go
package rules

import (
	"github.com/solatis/groupsight/internal/types"
)

/*
 * Rule conflict detection.
 *
 * Backs the rule-testing surface: given a probe attribute set, two active
 * rules conflict when both conditions hold for the same profile but the
 * rules assign to disjoint group sets, because one user would be pulled
 * into unrelated groups by overlapping automation.
 *
 * Only locally evaluable conditions participate. An unevaluable condition
 * would evaluate false under the fail-closed policy and silently hide real
 * conflicts, so such rules are skipped rather than misjudged.
 */

// RuleConflict is a pair of rules whose conditions both match the probe
// attributes while targeting disjoint groups.
type RuleConflict struct {
	First  types.GroupRule
	Second types.GroupRule
}

// RuleConflicts reports conflicting active rule pairs for the given probe
// attributes, in input order.
func (e *Engine) RuleConflicts(rules []types.GroupRule, attrs types.AttributeMap) []RuleConflict {
	var matching []types.GroupRule
	for _, rule := range rules {
		if !rule.IsActive() {
			continue
		}
		if !CanEvaluateLocally(rule.Condition) {
			continue
		}
		if e.Evaluate(rule.Condition, attrs) {
			matching = append(matching, rule)
		}
	}

	var conflicts []RuleConflict
	for i := 0; i < len(matching); i++ {
		for j := i + 1; j < len(matching); j++ {
			if !sharesTargetGroup(matching[i], matching[j]) {
				conflicts = append(conflicts, RuleConflict{First: matching[i], Second: matching[j]})
			}
		}
	}
	return conflicts
}

func sharesTargetGroup(a, b types.GroupRule) bool {
	for _, ga := range a.GroupIDs {
		for _, gb := range b.GroupIDs {
			if ga == gb {
				return true
			}
		}
	}
	return false
}
