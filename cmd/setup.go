package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadConfig reads the config at path, falling back to the runner's config when the file is absent.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	config, err := shared.LoadConfig(path)
	if errors.Is(err, shared.ErrMissingConfig) {
		r.logger.Debug("config file not found, using current config", "path", path)
		return r.config, nil
	}
	if err != nil {
		return nil, err
	}
	config.ApplyEnv()
	return config, nil
}

// SetupConfig writes the embedded config template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writeOK("Config written to %s", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set client_id, client_secret and refresh_token under [credentials.spotify]\n")
	r.writePlain("   (or export %s, %s and %s)\n", shared.EnvClientID, shared.EnvClientSecret, shared.EnvRefreshToken)
	r.writePlain("2. Run 'spotbox auth refresh' to verify the credentials\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	version, _, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writeOK("Database ready at %s (schema version %d)", config.Database.Path, version)
}

// SetupRollback rolls back the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if _, err := os.Stat(config.Database.Path); err != nil && config.Database.Path != ":memory:" {
		return fmt.Errorf("%w: database %s", shared.ErrNotFound, config.Database.Path)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	version, applied, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if !applied {
		return r.writeOK("Rolled back all migrations")
	}
	return r.writeOK("Rolled back to schema version %d", version)
}
