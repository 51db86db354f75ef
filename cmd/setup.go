package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
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
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	config.ApplyEnv()

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenAndMigrate(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	versions, err := shared.AppliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to read migration state: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, len(versions))
}
