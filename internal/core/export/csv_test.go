package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solatis/groupsight/internal/types"
)

func sampleReports() []UserReport {
	rule := &types.GroupRule{
		ID:        "r1",
		Name:      "sales team",
		Status:    types.RuleStatusActive,
		Condition: `user.department == "Sales"`,
		GroupIDs:  []types.GroupID{"g1"},
	}

	return []UserReport{
		{
			User: types.User{ID: "u1", Login: "ana"},
			Results: []types.AttributionResult{
				{GroupID: "g1", MembershipType: types.MembershipRuleBased, Rule: rule, Confidence: types.ConfidenceHigh},
				{GroupID: "g2", MembershipType: types.MembershipDirect},
			},
		},
		{
			User: types.User{ID: "u2", Login: "bo"},
			Results: []types.AttributionResult{
				{GroupID: "g3", MembershipType: types.MembershipRuleBased},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReports()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}

	want := [][]string{
		{"user_id", "user_login", "group_id", "membership_type", "rule_id", "rule_name", "confidence"},
		{"u1", "ana", "g1", "RULE_BASED", "r1", "sales team", "high"},
		{"u1", "ana", "g2", "DIRECT", "", "", ""},
		{"u2", "bo", "g3", "RULE_BASED", "", "", ""},
	}

	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, row := range want {
		if strings.Join(records[i], "|") != strings.Join(row, "|") {
			t.Errorf("row %d = %v, want %v", i, records[i], row)
		}
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want header only", len(records))
	}
}

func TestWriteReportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := WriteReportFile(dir, sampleReports())
	if err != nil {
		t.Fatalf("WriteReportFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}
	if !strings.HasPrefix(string(data), "user_id,user_login,") {
		t.Errorf("report file missing header: %q", string(data))
	}
}
