// internal/rules/conflict_test.go
package rules

import (
	"testing"

	"github.com/solatis/groupsight/internal/types"
)

func TestRuleConflicts(t *testing.T) {
	attrs := types.AttributeMap{
		"department": types.StringValue("Sales"),
		"city":       types.StringValue("Lisbon"),
	}

	salesToG1 := types.GroupRule{
		ID:        "r1",
		Status:    types.RuleStatusActive,
		Condition: `user.department == "Sales"`,
		GroupIDs:  []types.GroupID{"g1"},
	}
	lisbonToG2 := types.GroupRule{
		ID:        "r2",
		Status:    types.RuleStatusActive,
		Condition: `user.city == "Lisbon"`,
		GroupIDs:  []types.GroupID{"g2"},
	}
	lisbonToG1 := types.GroupRule{
		ID:        "r3",
		Status:    types.RuleStatusActive,
		Condition: `user.city == "Lisbon"`,
		GroupIDs:  []types.GroupID{"g1", "g3"},
	}
	nonMatching := types.GroupRule{
		ID:        "r4",
		Status:    types.RuleStatusActive,
		Condition: `user.department == "Marketing"`,
		GroupIDs:  []types.GroupID{"g4"},
	}
	inactive := types.GroupRule{
		ID:        "r5",
		Status:    types.RuleStatusInactive,
		Condition: `user.department == "Sales"`,
		GroupIDs:  []types.GroupID{"g5"},
	}
	unevaluable := types.GroupRule{
		ID:        "r6",
		Status:    types.RuleStatusActive,
		Condition: `isMemberOfGroup("g9")`,
		GroupIDs:  []types.GroupID{"g6"},
	}

	engine := NewEngine(nil)

	t.Run("disjoint targets conflict", func(t *testing.T) {
		conflicts := engine.RuleConflicts([]types.GroupRule{salesToG1, lisbonToG2}, attrs)
		if len(conflicts) != 1 {
			t.Fatalf("len(RuleConflicts()) = %d, want 1", len(conflicts))
		}
		if conflicts[0].First.ID != "r1" || conflicts[0].Second.ID != "r2" {
			t.Errorf("conflict = (%v, %v), want (r1, r2)", conflicts[0].First.ID, conflicts[0].Second.ID)
		}
	})

	t.Run("shared target is not a conflict", func(t *testing.T) {
		conflicts := engine.RuleConflicts([]types.GroupRule{salesToG1, lisbonToG1}, attrs)
		if len(conflicts) != 0 {
			t.Errorf("len(RuleConflicts()) = %d, want 0", len(conflicts))
		}
	})

	t.Run("non-matching rules do not participate", func(t *testing.T) {
		conflicts := engine.RuleConflicts([]types.GroupRule{salesToG1, nonMatching}, attrs)
		if len(conflicts) != 0 {
			t.Errorf("len(RuleConflicts()) = %d, want 0", len(conflicts))
		}
	})

	t.Run("inactive rules do not participate", func(t *testing.T) {
		conflicts := engine.RuleConflicts([]types.GroupRule{salesToG1, inactive}, attrs)
		if len(conflicts) != 0 {
			t.Errorf("len(RuleConflicts()) = %d, want 0", len(conflicts))
		}
	})

	t.Run("unevaluable rules are skipped not misjudged", func(t *testing.T) {
		conflicts := engine.RuleConflicts([]types.GroupRule{salesToG1, unevaluable}, attrs)
		if len(conflicts) != 0 {
			t.Errorf("len(RuleConflicts()) = %d, want 0", len(conflicts))
		}
	})
}
