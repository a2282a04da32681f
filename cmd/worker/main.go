// Command worker runs maintenance jobs against the recommendation store.
package main

import (
	"fmt"
	"os"

	"skill-match/internal/app"
	"skill-match/internal/config"
	"skill-match/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "worker",
	Short:         "Recommendation maintenance jobs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newContainer() (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	lg, err := logger.New(cfg.App.LogJSON, cfg.App.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.NewContainer(cfg, lg)
}
