package main

import (
	"skill-match/internal/database/seeder"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo skills, jobs, learning resources and seeker",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.Migrate(cmd.Context()); err != nil {
		return err
	}
	if err := (seeder.Runner{Seeders: seeder.Defaults(), Logger: c.Logger.Named("seeder")}).Run(cmd.Context(), c.DB); err != nil {
		return err
	}
	cmd.Printf("demo seeker id=%s\n", seeder.DemoSeekerID)
	return nil
}
