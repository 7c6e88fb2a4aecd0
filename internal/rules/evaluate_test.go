// internal/rules/evaluate_test.go
package rules

import (
	"testing"

	"github.com/solatis/groupsight/internal/types"
)

func TestEvaluate_Comparison(t *testing.T) {
	attrs := types.AttributeMap{
		"department": types.StringValue("Engineering"),
		"city":       types.StringValue("SF"),
		"tier":       types.NumberValue(2),
		"active":     types.BoolValue(true),
	}

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{
			name:       "string equality match",
			expression: `user.department == "Engineering"`,
			want:       true,
		},
		{
			name:       "string equality non-match",
			expression: `user.department == "Sales"`,
			want:       false,
		},
		{
			name:       "string equality is case sensitive",
			expression: `user.department == "engineering"`,
			want:       false,
		},
		{
			name:       "inequality match",
			expression: `user.department != "Sales"`,
			want:       true,
		},
		{
			name:       "inequality non-match",
			expression: `user.department != "Engineering"`,
			want:       false,
		},
		{
			name:       "single quoted literal",
			expression: `user.city == 'SF'`,
			want:       true,
		},
		{
			name:       "numeric equality",
			expression: `user.tier == 2`,
			want:       true,
		},
		{
			name:       "numeric equality across forms",
			expression: `user.tier == 2.0`,
			want:       true,
		},
		{
			name:       "boolean literal comparison",
			expression: `user.active == true`,
			want:       true,
		},
		{
			name:       "reversed operand order",
			expression: `"SF" == user.city`,
			want:       true,
		},
	}

	engine := NewEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Evaluate(tt.expression, attrs); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expression, got, tt.want)
			}
		})
	}
}

func TestEvaluate_EqAlias(t *testing.T) {
	attrs := types.AttributeMap{"x": types.StringValue("v")}
	engine := NewEngine(nil)

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{"symbolic form", `user.x == "v"`, true},
		{"word form", `user.x eq "v"`, true},
		{"word form uppercase", `user.x EQ "v"`, true},
		{"word form mixed case", `user.x Eq "v"`, true},
		{"eq embedded in attribute name is not an operator", `user.frequency == "daily"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Evaluate(tt.expression, attrs); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expression, got, tt.want)
			}
		})
	}
}

func TestEvaluate_Connectives(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name       string
		expression string
		attrs      types.AttributeMap
		want       bool
	}{
		{
			name:       "and both match",
			expression: `user.a == "1" and user.b == "2"`,
			attrs:      types.AttributeMap{"a": types.StringValue("1"), "b": types.StringValue("2")},
			want:       true,
		},
		{
			name:       "and one fails",
			expression: `user.a == "1" and user.b == "2"`,
			attrs:      types.AttributeMap{"a": types.StringValue("1"), "b": types.StringValue("3")},
			want:       false,
		},
		{
			name:       "or second matches",
			expression: `user.a == "1" or user.b == "2"`,
			attrs:      types.AttributeMap{"a": types.StringValue("9"), "b": types.StringValue("2")},
			want:       true,
		},
		{
			name:       "or neither matches",
			expression: `user.a == "1" or user.b == "2"`,
			attrs:      types.AttributeMap{"a": types.StringValue("9"), "b": types.StringValue("9")},
			want:       false,
		},
		{
			name:       "connectives are case insensitive",
			expression: `user.a == "1" AND user.b == "2"`,
			attrs:      types.AttributeMap{"a": types.StringValue("1"), "b": types.StringValue("2")},
			want:       true,
		},
		{
			name:       "parenthesized or binds before and",
			expression: `(user.d == "Sales" or user.d == "Eng") and user.city == "SF"`,
			attrs:      types.AttributeMap{"d": types.StringValue("Eng"), "city": types.StringValue("SF")},
			want:       true,
		},
		{
			name:       "parenthesized or fails when outer and fails",
			expression: `(user.d == "Sales" or user.d == "Eng") and user.city == "SF"`,
			attrs:      types.AttributeMap{"d": types.StringValue("Eng"), "city": types.StringValue("NYC")},
			want:       false,
		},
		{
			name:       "and has higher precedence than or",
			expression: `user.a == "1" or user.b == "1" and user.c == "1"`,
			attrs:      types.AttributeMap{"a": types.StringValue("1"), "b": types.StringValue("0"), "c": types.StringValue("0")},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Evaluate(tt.expression, tt.attrs); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expression, got, tt.want)
			}
		})
	}
}

func TestEvaluate_NullSemantics(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name       string
		expression string
		attrs      types.AttributeMap
		want       bool
	}{
		{
			name:       "missing attribute equals null",
			expression: `user.missing == null`,
			attrs:      types.AttributeMap{},
			want:       true,
		},
		{
			name:       "missing attribute on nil map equals null",
			expression: `user.missing == null`,
			attrs:      nil,
			want:       true,
		},
		{
			name:       "explicit null attribute equals null",
			expression: `user.manager == null`,
			attrs:      types.AttributeMap{"manager": types.NullValue()},
			want:       true,
		},
		{
			name:       "present attribute does not equal null",
			expression: `user.department == null`,
			attrs:      types.AttributeMap{"department": types.StringValue("Sales")},
			want:       false,
		},
		{
			name:       "missing attribute does not equal string",
			expression: `user.missing == "Sales"`,
			attrs:      types.AttributeMap{},
			want:       false,
		},
		{
			name:       "missing attribute not-equals string",
			expression: `user.missing != "Sales"`,
			attrs:      types.AttributeMap{},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Evaluate(tt.expression, tt.attrs); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expression, got, tt.want)
			}
		})
	}
}

func TestEvaluate_FailClosed(t *testing.T) {
	attrs := types.AttributeMap{"x": types.StringValue("v")}
	engine := NewEngine(nil)

	// Every row must return false without panicking; no error escapes the
	// evaluator boundary.
	tests := []struct {
		name       string
		expression string
	}{
		{"empty expression", ""},
		{"whitespace only", "   \t  "},
		{"dangling operator", `user.x ==`},
		{"single equals", `user.x = "v"`},
		{"unbalanced parens", `(user.x == "v"`},
		{"unterminated string", `user.x == "v`},
		{"unknown operator", `user.x >= "v"`},
		{"bare identifier", `department == "Sales"`},
		{"unknown function call", `hasRole("admin")`},
		{"group membership check", `isMemberOfGroup("g1")`},
		{"group membership by name", `isMemberOfGroupName("Everyone") and user.x == "v"`},
		{"app context reference", `app.profile.role == "admin"`},
		{"malformed attribute reference", `user. == "v"`},
		{"nested attribute reference", `user.profile.name == "v"`},
		{"string in boolean position", `"v" and user.x == "v"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Evaluate(tt.expression, attrs); got != false {
				t.Errorf("Evaluate(%q) = true, want false", tt.expression)
			}
		})
	}
}

func TestEvaluate_MemberCallNeverTrue(t *testing.T) {
	// An or-branch with a membership check still works: the call is false,
	// the other branch decides the result.
	engine := NewEngine(nil)
	attrs := types.AttributeMap{"x": types.StringValue("v")}

	got := engine.Evaluate(`isMemberOfGroup("g1") or user.x == "v"`, attrs)
	if !got {
		t.Errorf("Evaluate() = false, want true (membership call should be inert false)")
	}

	got = engine.Evaluate(`isMemberOfAnyGroup("g1", "g2")`, attrs)
	if got {
		t.Errorf("Evaluate() = true, want false (membership call must never resolve)")
	}
}

func TestEvaluate_Purity(t *testing.T) {
	engine := NewEngine(nil)
	attrs := types.AttributeMap{
		"department": types.StringValue("Sales"),
		"tier":       types.NumberValue(1),
	}
	expression := `(user.department == "Sales" or user.tier == 2) and user.missing == null`

	first := engine.Evaluate(expression, attrs)
	for i := 0; i < 100; i++ {
		if got := engine.Evaluate(expression, attrs); got != first {
			t.Fatalf("Evaluate() flipped from %v to %v on call %d", first, got, i+2)
		}
	}
}
