package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/solatis/groupsight/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func openDatabase() (*sqlx.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	statuses, err := db.MigrateStatus(database)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	for _, status := range statuses {
		state := "pending"
		if status.Applied {
			state = "applied"
			if status.AppliedAt != nil {
				state = fmt.Sprintf("applied %s", status.AppliedAt.Format("2006-01-02 15:04:05"))
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", status.ID, state)
	}
	return nil
}
