// internal/types/rules.go
package types

/*
 * Domain types for group-rule attribution.
 *
 * Provides GroupRule and AttributionResult structures used by internal/rules
 * for evaluation and classification. These types are wire-format agnostic;
 * upstream-payload conversion happens at the directory-client boundary.
 *
 * Key types:
 *   - GroupRule: Read-only snapshot of an upstream group rule
 *   - AttributionResult: Per-(user, group) attribution decision
 *   - MembershipType / Confidence: Classification enums
 *
 * GroupRule lifecycle: created and mutated exclusively by the upstream
 * identity system. The engine treats a rule as valid for the duration of
 * one classification pass; staleness is the fetch layer's problem.
 */

// RuleStatus is the lifecycle state of a group rule upstream.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "ACTIVE"
	RuleStatusInactive RuleStatus = "INACTIVE"
)

// GroupRule is an upstream-defined automation that assigns users to groups
// when its condition holds over their profile.
type GroupRule struct {
	ID     RuleID     `json:"id"`
	Name   string     `json:"name"`
	Status RuleStatus `json:"status"`

	// Condition is the raw expression text in the constrained grammar.
	Condition string `json:"condition"`

	// GroupIDs are the groups this rule assigns matching users to.
	GroupIDs []GroupID `json:"groupIds"`

	// ExcludedUserIDs are users explicitly carved out from the rule's effect.
	ExcludedUserIDs []UserID `json:"excludedUserIds"`

	// IncludedGroupIDs and ExcludedGroupIDs scope the rule's people
	// condition upstream. Carried for fidelity with the wire payload; they
	// do not participate in target-group matching.
	IncludedGroupIDs []GroupID `json:"includedGroupIds,omitempty"`
	ExcludedGroupIDs []GroupID `json:"excludedGroupIds,omitempty"`

	// UserAttributes is the upstream-declared list of profile attribute
	// names the condition references. Consumed by confidence scoring.
	UserAttributes []string `json:"userAttributes,omitempty"`
}

// IsActive reports whether the rule is in effect upstream.
func (r GroupRule) IsActive() bool {
	return r.Status == RuleStatusActive
}

// TargetsGroup reports whether the rule assigns members to the given group.
func (r GroupRule) TargetsGroup(id GroupID) bool {
	for _, g := range r.GroupIDs {
		if g == id {
			return true
		}
	}
	return false
}

// ExcludesUser reports whether the user is carved out from the rule.
func (r GroupRule) ExcludesUser(id UserID) bool {
	for _, u := range r.ExcludedUserIDs {
		if u == id {
			return true
		}
	}
	return false
}

// MembershipType distinguishes rule-produced from directly assigned
// memberships.
type MembershipType string

const (
	MembershipDirect    MembershipType = "DIRECT"
	MembershipRuleBased MembershipType = "RULE_BASED"
)

// Confidence is a coarse indicator of how certain the attribution heuristic
// is about which rule produced a membership. Empty when not applicable
// (direct memberships, push-managed groups).
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// AttributionResult is the engine's decision for one (user, group) pair.
// Produced fresh on every classification call; never cached by the engine.
type AttributionResult struct {
	GroupID        GroupID        `json:"groupId"`
	MembershipType MembershipType `json:"membershipType"`

	// Rule is the best-guess responsible rule for rule-based memberships.
	// Nil for direct memberships and for push-managed groups, whose
	// governance lives outside the rule engine entirely.
	Rule *GroupRule `json:"rule,omitempty"`

	Confidence Confidence `json:"confidence,omitempty"`
}
