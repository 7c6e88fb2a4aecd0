package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/groupsight/internal/core/config"
	"github.com/solatis/groupsight/internal/refresh"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run the background snapshot refresher",
	Long:  `Refresh keeps the group and rule snapshots warm on the configured cron schedule. Runs until interrupted.`,
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().Bool("once", false, "refresh once and exit instead of running on a schedule")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, closeStore, err := newDirectoryClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	refresher, err := refresh.NewRefresher(client, cfg.RefreshSchedule, log)
	if err != nil {
		return err
	}

	if once, _ := cmd.Flags().GetBool("once"); once {
		if err := refresher.Start(ctx); err != nil {
			return err
		}
		refresher.Stop()
		return nil
	}

	if err := refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("refresher stopped")
	return nil
}
