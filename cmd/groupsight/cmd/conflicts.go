package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/groupsight/internal/core/config"
	"github.com/solatis/groupsight/internal/rules"
	"github.com/solatis/groupsight/internal/types"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <user-id>",
	Short: "Report rule pairs that both match a user but target disjoint groups",
	Args:  cobra.ExactArgs(1),
	RunE:  runConflicts,
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	userID, err := types.ParseUserID(args[0])
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, closeStore, err := newDirectoryClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	gen := client.Begin()

	user, err := client.User(ctx, gen, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	ruleSet, err := client.Rules(ctx, gen)
	if err != nil {
		return fmt.Errorf("failed to fetch group rules: %w", err)
	}

	engine := rules.NewEngine(log)
	conflicts := engine.RuleConflicts(ruleSet, user.Attributes)

	if len(conflicts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no conflicts")
		return nil
	}
	for _, conflict := range conflicts {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) <-> %s (%s)\n",
			conflict.First.Name, conflict.First.ID,
			conflict.Second.Name, conflict.Second.ID)
	}
	return nil
}
