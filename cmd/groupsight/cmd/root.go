package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/groupsight/internal/core/cache"
	"github.com/solatis/groupsight/internal/core/config"
	"github.com/solatis/groupsight/internal/core/db"
	"github.com/solatis/groupsight/internal/core/directory"
	"github.com/solatis/groupsight/internal/logging"
)

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "groupsight",
	Short: "GroupSight group membership attribution engine",
	Long:  `GroupSight classifies directory group memberships as direct or rule-based and scores how confidently each membership can be attributed to a rule.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

func Execute() error {
	return rootCmd.Execute()
}

func newLogger() (*zap.Logger, error) {
	return logging.New(logLevel, logFormat)
}

// newStore builds the snapshot cache selected in cfg. The returned cleanup
// is a no-op for the in-memory backend.
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		store, err := cache.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, func() { store.Close() }, nil
	case "db":
		if dbURL == "" {
			return nil, nil, fmt.Errorf("--db-url required for the db cache backend")
		}
		database, err := db.Open(dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		queries, err := db.LoadQueries(database)
		if err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to load queries: %w", err)
		}
		store, err := cache.NewDB(queries)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return store, func() { database.Close() }, nil
	default:
		return cache.NewMemory(), func() {}, nil
	}
}

func newDirectoryClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*directory.Client, func(), error) {
	token, err := config.APIToken()
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := directory.NewClient(cfg, token, store, log)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to create directory client: %w", err)
	}
	return client, closeStore, nil
}
