package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskhub/internal/config"
	"taskhub/internal/storage"
)

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect sqlite schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Storage.Backend != storage.BackendSQLite {
				return fmt.Errorf("migrate applies to the sqlite backend (configured: %s)", cfg.Storage.Backend)
			}
			if cfg.Storage.Path == "" {
				return fmt.Errorf("storage path is required")
			}

			if !inspect && !dryRun {
				// Opening the backend applies pending migrations.
				backend, err := storage.OpenSQLite(cfg.Storage.Path)
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				if err := backend.Close(); err != nil {
					return err
				}
				if !*jsonOutput {
					fmt.Println("Migrations applied successfully.")
					return nil
				}
			}

			plan, err := storage.SQLiteMigrationPlan(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("inspect migrations: %w", err)
			}
			if *jsonOutput {
				return writeJSON(plan)
			}

			fmt.Printf("Current version: %d\n", plan.CurrentVersion)
			fmt.Printf("Available version: %d\n", plan.AvailableVersion)
			if len(plan.Pending) == 0 {
				fmt.Println("No pending migrations.")
				return nil
			}
			fmt.Printf("Pending migrations: %d\n", len(plan.Pending))
			for _, m := range plan.Pending {
				fmt.Printf("  %d: %s\n", m.Version, m.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status")

	return cmd
}
