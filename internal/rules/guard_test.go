// internal/rules/guard_test.go
package rules

import "testing"

func TestCanEvaluateLocally(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{
			name:       "plain attribute comparison",
			expression: `user.department == "Sales"`,
			want:       true,
		},
		{
			name:       "connectives and parens",
			expression: `(user.a == "1" or user.b == "2") and user.c != null`,
			want:       true,
		},
		{
			name:       "empty expression",
			expression: "",
			want:       false,
		},
		{
			name:       "whitespace only",
			expression: "   ",
			want:       false,
		},
		{
			name:       "group membership check",
			expression: `isMemberOfGroup("g1")`,
			want:       false,
		},
		{
			name:       "group membership check lowercased",
			expression: `ismemberofgroupname("Everyone")`,
			want:       false,
		},
		{
			name:       "membership check buried in conjunction",
			expression: `user.a == "1" and isMemberOfAnyGroup("g1", "g2")`,
			want:       false,
		},
		{
			name:       "app context attribute",
			expression: `app.role == "admin"`,
			want:       false,
		},
		{
			name:       "app context attribute mid-expression",
			expression: `user.a == "1" and app.profile.tier == "gold"`,
			want:       false,
		},
		{
			name:       "app as attribute name suffix is fine",
			expression: `user.app == "mobile"`,
			want:       true,
		},
		{
			name:       "app embedded in identifier is fine",
			expression: `user.webapp.owner == "x"`,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEvaluateLocally(tt.expression); got != tt.want {
				t.Errorf("CanEvaluateLocally(%q) = %v, want %v", tt.expression, got, tt.want)
			}
		})
	}
}

// A guard-rejected expression still evaluates (to false, fail closed); the
// guard exists so callers can tell that false apart from a real non-match.
func TestGuard_DistinguishesUnevaluableFromNonMatch(t *testing.T) {
	engine := NewEngine(nil)
	expression := `isMemberOfGroup("g1")`

	if CanEvaluateLocally(expression) {
		t.Fatalf("CanEvaluateLocally(%q) = true, want false", expression)
	}
	if engine.Evaluate(expression, nil) {
		t.Fatalf("Evaluate(%q) = true, want false", expression)
	}
}
