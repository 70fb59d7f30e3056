package main

import (
	"fmt"

	"github.com/docregistry/docregistry/pkg/logger"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the documents table, optionally with sample data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd.Context(), seedRequested(cmd))
		if db != nil {
			defer db.Close()
		}
		if err != nil {
			return fmt.Errorf("initializing store: %w", err)
		}
		logger.Infof("store ready at %s", cfg.Database.Path)
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", cfg.Database.Path)
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("seed", false, "insert sample documents into an empty table (DATABASE_SEED)")
	rootCmd.AddCommand(initCmd)
}
