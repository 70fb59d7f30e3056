package main

import (
	"fmt"

	"github.com/docregistry/docregistry/internal/document/importer"
	"github.com/docregistry/docregistry/internal/document/service"
	"github.com/docregistry/docregistry/pkg/logger"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Upsert documents from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := importer.Load(args[0])
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), false)
		if db != nil {
			defer db.Close()
		}
		if err != nil {
			return fmt.Errorf("initializing store: %w", err)
		}

		rep, err := service.NewSQLService(db).Import(cmd.Context(), docs)
		if err != nil {
			return err
		}
		logger.Infof("import of %s finished: %d imported, %d failed", args[0], rep.Imported, rep.Failed)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d documents (%d failed)\n", rep.Imported, rep.Failed)
		if rep.Failed > 0 {
			return fmt.Errorf("%d of %d documents failed to import", rep.Failed, len(docs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
