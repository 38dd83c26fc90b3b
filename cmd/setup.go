package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template when it is missing and prepares the session database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			r.writePlain("✓ Config written to %s\n", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	db, err := r.openDatabase(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	r.writePlain("Set session.store = \"sqlite\" in %s to keep sessions across restarts.\n", configPath)
	return nil
}

// Migrate applies pending migrations, or rolls back / reports depending on flags.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("rollback") && cmd.Bool("status") {
		return fmt.Errorf("%w: cannot combine --rollback and --status", shared.ErrInvalidArgument)
	}

	db, err := r.openDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	switch {
	case cmd.Bool("status"):
		states, err := shared.MigrationStatus(db)
		if err != nil {
			return err
		}
		r.writePlainHeader("Migrations")
		for _, s := range states {
			mark := "pending"
			if s.Applied {
				mark = "applied"
			}
			r.writePlain("%03d %-32s %s\n", s.Version, s.Name, mark)
		}
		return nil
	case cmd.Bool("rollback"):
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		r.writePlain("✓ Rolled back the latest migration\n")
		return nil
	default:
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.writePlain("✓ Migrations applied\n")
		return nil
	}
}

func (r *Runner) openDatabase(cfg shared.DatabaseConfig) (*sql.DB, error) {
	r.logger.Info("initializing database", "path", cfg.Path)

	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	return db, nil
}
