package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var migrateTimeout time.Duration

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().DurationVar(&migrateTimeout, "timeout", 2*time.Minute, "Maximum time to wait for migrations")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
	defer cancel()
	return c.Migrate(ctx)
}
