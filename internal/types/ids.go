package types

import (
	"github.com/google/uuid"
)

// UserID identifies a directory user.
// String alias enables type safety while maintaining JSON string
// serialization; upstream IDs are opaque strings, locally minted ones are
// UUIDv7.
type UserID string

// GroupID identifies a directory group.
type GroupID string

// RuleID identifies a group rule.
type RuleID string

// NewAuditID generates a UUIDv7 identifier for audit-log rows.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewAuditID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ParseUserID validates and converts a string to UserID.
// Upstream user IDs are opaque; only emptiness is rejected.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return "", ErrEmptyID
	}
	return UserID(s), nil
}

// ParseGroupID validates and converts a string to GroupID.
func ParseGroupID(s string) (GroupID, error) {
	if s == "" {
		return "", ErrEmptyID
	}
	return GroupID(s), nil
}

// ParseRuleID validates and converts a string to RuleID.
func ParseRuleID(s string) (RuleID, error) {
	if s == "" {
		return "", ErrEmptyID
	}
	return RuleID(s), nil
}
