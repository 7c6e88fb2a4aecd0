// internal/rules/match.go
package rules

import (
	"github.com/solatis/groupsight/internal/types"
)

/*
 * Rule matching and exclusion filtering.
 *
 * Selects the candidate rules for one (group, user) pair: active rules that
 * target the group, minus rules the user is explicitly excluded from.
 *
 * Relative order of the input is preserved: confidence scoring breaks ties
 * by position, so candidate order is part of the contract, not an
 * implementation detail.
 */

// MatchingRules returns the active rules targeting the group from which the
// user is not excluded, in original relative order.
//
// An empty result is the common, expected case, not an error. Note the two
// ways to get there: no rule targets the group at all, or every targeting
// rule excludes the user. The second is definitive evidence of manual
// assignment (the user is in the group despite every governing rule carving
// them out); both classify as direct membership downstream.
func MatchingRules(group types.Group, rules []types.GroupRule, userID types.UserID) []types.GroupRule {
	var candidates []types.GroupRule
	for _, rule := range rules {
		if !rule.IsActive() {
			continue
		}
		if !rule.TargetsGroup(group.ID) {
			continue
		}
		if rule.ExcludesUser(userID) {
			continue
		}
		candidates = append(candidates, rule)
	}
	return candidates
}
