// Package types provides domain models shared across Groupsight components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library. ID utilities in ids.go import uuid but are isolated for
// selective inclusion.
//
// All values in this package are read-only snapshots of upstream directory
// state: the identity system is the single writer, Groupsight only observes.
package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// AttributeKind discriminates the primitive variant held by AttributeValue.
type AttributeKind int

const (
	// AttributeNull represents an absent or null profile attribute.
	AttributeNull AttributeKind = iota
	// AttributeString represents a string profile attribute.
	AttributeString
	// AttributeNumber represents a numeric profile attribute.
	AttributeNumber
	// AttributeBool represents a boolean profile attribute.
	AttributeBool
)

// AttributeValue is a primitive user-profile value: string, number, boolean
// or null. The explicit null case replaces duck-typed property probing in
// the upstream payloads; a missing map key and an explicit null are
// indistinguishable to the evaluator, which is the required semantics.
type AttributeValue struct {
	Kind AttributeKind
	Str  string
	Num  float64
	Bool bool
}

// StringValue constructs a string attribute value.
func StringValue(s string) AttributeValue {
	return AttributeValue{Kind: AttributeString, Str: s}
}

// NumberValue constructs a numeric attribute value.
func NumberValue(n float64) AttributeValue {
	return AttributeValue{Kind: AttributeNumber, Num: n}
}

// BoolValue constructs a boolean attribute value.
func BoolValue(b bool) AttributeValue {
	return AttributeValue{Kind: AttributeBool, Bool: b}
}

// NullValue constructs an absent/null attribute value.
func NullValue() AttributeValue {
	return AttributeValue{Kind: AttributeNull}
}

// IsNull reports whether the value is absent or null.
func (v AttributeValue) IsNull() bool {
	return v.Kind == AttributeNull
}

// Text returns the textual form of the value used by overlap scoring and
// diagnostics. Null renders as "null" to mirror the substituted literal.
func (v AttributeValue) Text() string {
	switch v.Kind {
	case AttributeString:
		return v.Str
	case AttributeNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case AttributeBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "null"
	}
}

// MarshalJSON implements json.Marshaler.
// Emits the underlying primitive so profiles round-trip with the upstream
// wire format ({"department": "Sales", "tier": 2, "active": true}).
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AttributeString:
		return json.Marshal(v.Str)
	case AttributeNumber:
		return json.Marshal(v.Num)
	case AttributeBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
// Non-primitive values (arrays, objects) decode as null: the evaluator only
// understands primitives and must treat anything else as absent.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = StringValue(x)
	case float64:
		*v = NumberValue(x)
	case bool:
		*v = BoolValue(x)
	default:
		*v = NullValue()
	}
	return nil
}

// AttributeMap is the subset of a user's profile visible to the evaluator.
// Lookups for a key not present must be treated as null, never as an error.
type AttributeMap map[string]AttributeValue

// Lookup returns the value for name, or a null value when absent.
func (m AttributeMap) Lookup(name string) AttributeValue {
	if m == nil {
		return NullValue()
	}
	v, ok := m[name]
	if !ok {
		return NullValue()
	}
	return v
}

// GroupKind discriminates ordinary groups from externally managed ones.
type GroupKind int

const (
	// GroupKindStandard is an ordinary directory group.
	GroupKindStandard GroupKind = iota
	// GroupKindPush is a push-managed group: membership is delegated to an
	// external application integration and never subject to local rules.
	GroupKindPush
)

// MarshalJSON implements json.Marshaler using the upstream wire form.
func (k GroupKind) MarshalJSON() ([]byte, error) {
	if k == GroupKindPush {
		return json.Marshal("PUSH")
	}
	return json.Marshal("STANDARD")
}

// UnmarshalJSON implements json.Unmarshaler.
// Unknown kinds decode as standard: treating an unrecognized group as
// push-managed would wrongly exempt it from rule attribution.
func (k *GroupKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "PUSH" {
		*k = GroupKindPush
	} else {
		*k = GroupKindStandard
	}
	return nil
}

// Group is a directory group descriptor.
type Group struct {
	ID      GroupID   `json:"id"`
	Name    string    `json:"name"`
	Kind    GroupKind `json:"kind"`
	Created time.Time `json:"created"`
}

// User is a directory user with the profile subset the engine can see.
type User struct {
	ID          UserID       `json:"id"`
	Login       string       `json:"login"`
	DisplayName string       `json:"displayName"`
	Created     time.Time    `json:"created"`
	Attributes  AttributeMap `json:"attributes"`
}
