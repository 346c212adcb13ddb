package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/infra"
)

// NewMigrateCmd creates the migrate subcommand and its up, down and version
// children.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *infra.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *infra.Migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: withMigrator(func(cmd *cobra.Command, m *infra.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			cmd.Printf("version %d (dirty: %t)\n", version, dirty)
			return nil
		}),
	})

	return cmd
}

func withMigrator(run func(*cobra.Command, *infra.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Read(configFile, nil)
		if err != nil {
			return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
		}
		if cfg.DatabaseURL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL is required")
		}

		m, err := infra.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer m.Close()

		return run(cmd, m)
	}
}
