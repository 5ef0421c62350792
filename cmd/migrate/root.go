package main

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/config"
	"shopfront/internal/database"
	"shopfront/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Manage the shopfront database schema",
	Long:         "Applies, rolls back and reports the embedded goose migrations against the configured PostgreSQL database",
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(db *database.Service, log *zap.Logger) error {
			return database.RunMigrations(db.DB(), log)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(db *database.Service, log *zap.Logger) error {
			if err := database.RollbackMigration(db.DB()); err != nil {
				return err
			}
			log.Info("Rolled back one migration")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(db *database.Service, log *zap.Logger) error {
			return database.GetMigrationStatus(db.DB())
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file before reading configuration")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		return nil
	}

	rootCmd.AddCommand(upCmd, downCmd, statusCmd)
}

// withDatabase connects using the loaded configuration and closes the pool
// once fn returns.
func withDatabase(ctx context.Context, fn func(db *database.Service, log *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Load()
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations need the postgres driver, got %q", cfg.Database.Driver)
	}

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db, log)
}
