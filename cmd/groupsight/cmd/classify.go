package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/groupsight/internal/core/audit"
	"github.com/solatis/groupsight/internal/core/config"
	"github.com/solatis/groupsight/internal/core/db"
	"github.com/solatis/groupsight/internal/core/directory"
	"github.com/solatis/groupsight/internal/rules"
	"github.com/solatis/groupsight/internal/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <user-id>",
	Short: "Classify a user's group memberships as direct or rule-based",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().Bool("audit", false, "record the decisions in the audit table (requires --db-url)")
	classifyCmd.Flags().Duration("stale-after", 0, "also report direct memberships for accounts older than this age")
	classifyCmd.Flags().String("group", "", "restrict output to a single group")
}

func runClassify(cmd *cobra.Command, args []string) error {
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

	results, user, err := classifyUser(ctx, client, log, userID)
	if err != nil {
		return err
	}

	if group, _ := cmd.Flags().GetString("group"); group != "" {
		groupID, err := types.ParseGroupID(group)
		if err != nil {
			return err
		}
		filtered := results[:0]
		for _, res := range results {
			if res.GroupID == groupID {
				filtered = append(filtered, res)
			}
		}
		results = filtered
	}

	recordAudit, _ := cmd.Flags().GetBool("audit")
	if recordAudit {
		if err := writeAudit(ctx, userID, results); err != nil {
			return err
		}
	}

	out := struct {
		UserID  types.UserID              `json:"userId"`
		Login   string                    `json:"login"`
		Results []types.AttributionResult `json:"results"`
		Stale   []types.AttributionResult `json:"staleDirectMemberships,omitempty"`
	}{
		UserID:  user.ID,
		Login:   user.Login,
		Results: results,
	}

	if staleAfter, _ := cmd.Flags().GetDuration("stale-after"); staleAfter > 0 {
		cutoff := time.Now().Add(-staleAfter)
		out.Stale = rules.StaleDirectMemberships(results, user, cutoff)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// classifyUser runs one attribution pass: it fetches the user, their
// groups and the rule set under a single request generation, then
// classifies every membership.
func classifyUser(ctx context.Context, client *directory.Client, log *zap.Logger, userID types.UserID) ([]types.AttributionResult, types.User, error) {
	gen := client.Begin()

	user, err := client.User(ctx, gen, userID)
	if err != nil {
		return nil, types.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}

	groups, err := client.UserGroups(ctx, gen, userID)
	if err != nil {
		return nil, types.User{}, fmt.Errorf("failed to fetch user groups: %w", err)
	}

	ruleSet, err := client.Rules(ctx, gen)
	if err != nil {
		return nil, types.User{}, fmt.Errorf("failed to fetch group rules: %w", err)
	}

	engine := rules.NewEngine(log)
	return engine.ClassifyAll(groups, ruleSet, user), user, nil
}

func writeAudit(ctx context.Context, userID types.UserID, results []types.AttributionResult) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required for --audit")
	}

	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
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
	return recorder.Record(ctx, userID, results)
}
