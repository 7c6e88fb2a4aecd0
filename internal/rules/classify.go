// internal/rules/classify.go
package rules

import (
	"time"

	"github.com/solatis/groupsight/internal/types"
)

/*
 * Membership classification.
 *
 * Composes matching, exclusion filtering and confidence scoring into one
 * per-group attribution decision. No hidden state: identical inputs yield
 * identical results, so callers can re-derive attribution after a cache
 * refresh without flicker.
 *
 * Cost is O(rules) per group, O(rules x groups) per user. Each pair is
 * CPU-light (substring checks on short condition texts); callers with very
 * large group counts should batch, the engine does not parallelize.
 */

// Classify decides whether the user's membership in the group was produced
// by a rule or assigned directly.
//
// Push-managed groups are always rule-based with no rule reference and no
// confidence: their governance is delegated to an external integration and
// is never represented as a scored guess, regardless of supplied rule data.
func (e *Engine) Classify(group types.Group, rules []types.GroupRule, user types.User) types.AttributionResult {
	if group.Kind == types.GroupKindPush {
		return types.AttributionResult{
			GroupID:        group.ID,
			MembershipType: types.MembershipRuleBased,
		}
	}

	candidates := MatchingRules(group, rules, user.ID)
	if len(candidates) == 0 {
		return types.AttributionResult{
			GroupID:        group.ID,
			MembershipType: types.MembershipDirect,
		}
	}

	best, confidence := PickBestRule(candidates, user.Attributes)
	return types.AttributionResult{
		GroupID:        group.ID,
		MembershipType: types.MembershipRuleBased,
		Rule:           &best,
		Confidence:     confidence,
	}
}

// ClassifyAll classifies every group membership for one user, preserving
// group order. Each group's rule list is filtered independently.
func (e *Engine) ClassifyAll(groups []types.Group, rules []types.GroupRule, user types.User) []types.AttributionResult {
	results := make([]types.AttributionResult, 0, len(groups))
	for _, group := range groups {
		results = append(results, e.Classify(group, rules, user))
	}
	return results
}

// StaleDirectMemberships filters attribution results down to the security
// review signal: direct memberships held by an account created before the
// cutoff. Group-membership timestamps are not reported upstream, so account
// age is the only available staleness proxy.
func StaleDirectMemberships(results []types.AttributionResult, user types.User, cutoff time.Time) []types.AttributionResult {
	if !user.Created.Before(cutoff) {
		return nil
	}
	var stale []types.AttributionResult
	for _, res := range results {
		if res.MembershipType == types.MembershipDirect {
			stale = append(stale, res)
		}
	}
	return stale
}
