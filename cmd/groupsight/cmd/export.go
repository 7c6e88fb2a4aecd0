package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/groupsight/internal/core/config"
	"github.com/solatis/groupsight/internal/core/directory"
	"github.com/solatis/groupsight/internal/core/export"
	"github.com/solatis/groupsight/internal/rules"
	"github.com/solatis/groupsight/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [user-id...]",
	Short: "Write a CSV attribution report for users or a whole group",
	Long: `Export classifies the given users across all their memberships and writes
one CSV row per (user, group) pair. With --group, every member of that
group is classified for that group instead.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out-dir", "", "report directory (defaults to export.dir from config)")
	exportCmd.Flags().String("group", "", "export a report for every member of this group")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = cfg.ExportDir
	}

	client, closeStore, err := newDirectoryClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	group, _ := cmd.Flags().GetString("group")
	if group == "" && len(args) == 0 {
		return fmt.Errorf("provide user IDs or --group")
	}

	var reports []export.UserReport
	if group != "" {
		reports, err = groupReports(ctx, client, log, group)
		if err != nil {
			return err
		}
	}

	for _, arg := range args {
		userID, err := types.ParseUserID(arg)
		if err != nil {
			return err
		}

		results, user, err := classifyUser(ctx, client, log, userID)
		if err != nil {
			return fmt.Errorf("failed to classify user %s: %w", userID, err)
		}
		reports = append(reports, export.UserReport{User: user, Results: results})
	}

	path, err := export.WriteReportFile(outDir, reports)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// groupReports classifies every member of one group for that group alone.
func groupReports(ctx context.Context, client *directory.Client, log *zap.Logger, group string) ([]export.UserReport, error) {
	groupID, err := types.ParseGroupID(group)
	if err != nil {
		return nil, err
	}

	gen := client.Begin()

	groups, err := client.Groups(ctx, gen)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}

	var target *types.Group
	for i := range groups {
		if groups[i].ID == groupID {
			target = &groups[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("group %s not found in directory", groupID)
	}

	members, err := client.GroupMembers(ctx, gen, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group members: %w", err)
	}

	ruleSet, err := client.Rules(ctx, gen)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group rules: %w", err)
	}

	engine := rules.NewEngine(log)
	reports := make([]export.UserReport, 0, len(members))
	for _, member := range members {
		result := engine.Classify(*target, ruleSet, member)
		reports = append(reports, export.UserReport{
			User:    member,
			Results: []types.AttributionResult{result},
		})
	}
	return reports, nil
}
