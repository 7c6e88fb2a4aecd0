// Package audit records attribution decisions so operators can review
// how a membership was classified after the fact.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/solatis/groupsight/internal/core/db"
	"github.com/solatis/groupsight/internal/types"
)

// Entry is one persisted attribution decision. RuleID, RuleName and
// Confidence are empty for DIRECT memberships and for push-managed
// groups that carry no backing rule.
type Entry struct {
	AuditID        string `db:"audit_id"`
	UserID         string `db:"user_id"`
	GroupID        string `db:"group_id"`
	MembershipType string `db:"membership_type"`
	RuleID         string `db:"rule_id"`
	RuleName       string `db:"rule_name"`
	Confidence     string `db:"confidence"`
	DecidedAt      string `db:"decided_at"`
}

// Recorder persists attribution results to the audit table.
type Recorder struct {
	queries *db.Queries
	now     func() time.Time
}

func NewRecorder(queries *db.Queries) (*Recorder, error) {
	if queries == nil {
		return nil, fmt.Errorf("queries are required")
	}
	return &Recorder{queries: queries, now: time.Now}, nil
}

// Record writes one audit entry per attribution result. Entries within a
// single call share a decision timestamp.
func (r *Recorder) Record(ctx context.Context, userID types.UserID, results []types.AttributionResult) error {
	decidedAt := r.now().UTC().Format(time.RFC3339)

	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return err
		}

		var ruleID, ruleName string
		if result.Rule != nil {
			ruleID = string(result.Rule.ID)
			ruleName = result.Rule.Name
		}

		_, err := r.queries.Exec("insert-audit-entry",
			types.NewAuditID(),
			string(userID),
			string(result.GroupID),
			string(result.MembershipType),
			ruleID,
			ruleName,
			string(result.Confidence),
			decidedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record audit entry for group %s: %w", result.GroupID, err)
		}
	}

	return nil
}

// Recent returns the latest audit entries, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	var entries []Entry
	if err := r.queries.Select("recent-audit-entries", &entries, limit); err != nil {
		return nil, fmt.Errorf("failed to load recent audit entries: %w", err)
	}
	return entries, nil
}

// ForUser returns all audit entries for a single user, newest first.
func (r *Recorder) ForUser(ctx context.Context, userID types.UserID) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []Entry
	if err := r.queries.Select("audit-entries-for-user", &entries, string(userID)); err != nil {
		return nil, fmt.Errorf("failed to load audit entries for user %s: %w", userID, err)
	}
	return entries, nil
}
