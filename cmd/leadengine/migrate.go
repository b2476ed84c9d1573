package main

import (
	"fmt"

	"leadengine_backend/platform/config"
	"leadengine_backend/platform/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the engine's schema migrations.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if statusOnly, _ := cmd.Flags().GetBool("status"); !statusOnly {
			if err := db.RunMigrations(cfg); err != nil {
				return err
			}
		}

		version, dirty, err := db.MigrationVersion(cfg)
		if err != nil {
			return err
		}

		state := color.GreenString("clean")
		if dirty {
			state = color.RedString("dirty")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
		return err
	},
}

func init() {
	migrateCmd.Flags().Bool("status", false, "print the current version without migrating")
}
