package main

import (
	"customer-service/internal/config"
	"customer-service/internal/infrastructure/database/migrations"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

type migrateDirection string

const (
	migrateUp   migrateDirection = "up"
	migrateDown migrateDirection = "down"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the customers schema",
	}
	cmd.AddCommand(newMigrateDirectionCmd(migrateUp, "Apply all pending migrations"))
	cmd.AddCommand(newMigrateDirectionCmd(migrateDown, "Roll back all migrations"))
	return cmd
}

func newMigrateDirectionCmd(direction migrateDirection, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := initializeApp(configPath)
			if err != nil {
				return err
			}
			return runMigrations(cfg.Database, direction, logger)
		},
	}
}

func runMigrations(cfg config.DatabaseConfig, direction migrateDirection, logger *slog.Logger) (err error) {
	if cfg.Driver == config.DriverMemory {
		return fmt.Errorf("migrations require the %q driver", config.DriverPostgres)
	}

	m, err := migrations.New(cfg.URL, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, m.Close())
	}()

	switch direction {
	case migrateUp:
		return m.Up()
	case migrateDown:
		return m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
}
