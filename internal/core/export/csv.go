// Package export writes attribution reports for offline review. CSV was
// chosen so results open directly in the spreadsheet tools identity teams
// already use for access reviews.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/solatis/groupsight/internal/types"
)

var csvHeader = []string{
	"user_id",
	"user_login",
	"group_id",
	"membership_type",
	"rule_id",
	"rule_name",
	"confidence",
}

// UserReport pairs a user with their attribution results for reporting.
type UserReport struct {
	User    types.User
	Results []types.AttributionResult
}

// WriteCSV writes one row per attribution result to w. Rule columns are
// left empty for DIRECT memberships and for rule-based results without a
// backing rule.
func WriteCSV(w io.Writer, reports []UserReport) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, report := range reports {
		for _, result := range report.Results {
			var ruleID, ruleName string
			if result.Rule != nil {
				ruleID = string(result.Rule.ID)
				ruleName = result.Rule.Name
			}

			row := []string{
				string(report.User.ID),
				report.User.Login,
				string(result.GroupID),
				string(result.MembershipType),
				ruleID,
				ruleName,
				string(result.Confidence),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write report row for user %s: %w", report.User.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteReportFile writes a timestamped attribution report into dir and
// returns the path of the created file.
func WriteReportFile(dir string, reports []UserReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("attribution-%s.csv", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if err := WriteCSV(f, reports); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize report file: %w", err)
	}

	return path, nil
}
