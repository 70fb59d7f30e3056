package main

import (
	"context"
	"fmt"

	"github.com/docregistry/docregistry/internal/config"
	"github.com/docregistry/docregistry/internal/database"
	"github.com/docregistry/docregistry/internal/document/repository"
	"github.com/docregistry/docregistry/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "docregistry",
	Short:   "Document registry with addendums and publication workflow",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Init(cfg.LogLevel)
		logger.Debugf("startup: LOG_LEVEL=%s db=%s", logger.LevelString(), cfg.Database.Path)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database file (DATABASE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	_ = viper.BindPFlag("DATABASE_PATH", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))
}

func Execute() error {
	return rootCmd.Execute()
}

// seedRequested lets an explicit --seed override DATABASE_SEED.
func seedRequested(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("seed")
		return v
	}
	return cfg.Database.Seed
}

// openStore opens the configured database and makes sure the schema exists,
// seeding it when requested.
func openStore(ctx context.Context, seed bool) (*database.DB, error) {
	db, err := database.Open(ctx, cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}
	if err := initStore(ctx, db, seed); err != nil {
		return db, err
	}
	return db, nil
}

func initStore(ctx context.Context, db *database.DB, seed bool) error {
	created, err := repository.EnsureSchema(ctx, db)
	if err != nil {
		return err
	}
	if created {
		logger.Infof("created documents table in %s", cfg.Database.Path)
	}
	if !seed {
		return nil
	}
	n, err := repository.Seed(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Infof("seeded %d sample documents", n)
	} else {
		logger.Infof("documents table not empty, sample data skipped")
	}
	return nil
}
