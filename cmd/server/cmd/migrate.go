package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventuraa/server/internal/config"
	"github.com/eventuraa/server/internal/storage/postgres"
)

var (
	migrationsPath string
	downSteps      int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Apply pending database migrations, or roll back with --down.

Examples:
  # Apply all pending migrations
  server migrate

  # Roll back the most recent migration
  server migrate --down 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		if downSteps > 0 {
			if err := postgres.MigrateDown(cfg.Database.URL, migrationsPath, downSteps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", downSteps)
			return nil
		}

		if err := postgres.MigrateUp(cfg.Database.URL, migrationsPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsPath, "migrations", postgres.DefaultMigrationsPath, "path to migration files")
	migrateCmd.Flags().IntVar(&downSteps, "down", 0, "roll back this many migrations instead of migrating up")
}
