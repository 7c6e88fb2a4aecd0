package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/groupsight/internal/core/audit"
	"github.com/solatis/groupsight/internal/core/db"
	"github.com/solatis/groupsight/internal/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recorded attribution decisions",
	RunE:  runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().Int("limit", 50, "maximum number of entries to show")
	auditCmd.Flags().String("user", "", "show entries for a single user only")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	recorder, err := audit.NewRecorder(queries)
	if err != nil {
		return err
	}

	var entries []audit.Entry
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		userID, err := types.ParseUserID(user)
		if err != nil {
			return err
		}
		entries, err = recorder.ForUser(ctx, userID)
		if err != nil {
			return err
		}
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err = recorder.Recent(ctx, limit)
		if err != nil {
			return err
		}
	}

	for _, entry := range entries {
		line := fmt.Sprintf("%s  user=%s group=%s %s", entry.DecidedAt, entry.UserID, entry.GroupID, entry.MembershipType)
		if entry.RuleName != "" {
			line += fmt.Sprintf(" rule=%q confidence=%s", entry.RuleName, entry.Confidence)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
