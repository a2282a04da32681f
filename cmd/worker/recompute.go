package main

import (
	"context"
	"os/signal"
	"syscall"

	"skill-match/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Refresh stored recommendation snapshots for every seeker",
	Long:  "Scores the active corpus for each seeker and replaces their stored recommendation snapshot. Only one run may hold the lock at a time.",
	RunE:  runRecompute,
}

var (
	recomputeWorkers int
	recomputeLimit   int
	recomputeRPS     int
)

func init() {
	recomputeCmd.Flags().IntVarP(&recomputeWorkers, "workers", "w", 0, "Concurrent seekers (defaults to RECOMMEND_WORKERS)")
	recomputeCmd.Flags().IntVarP(&recomputeLimit, "limit", "l", 0, "Snapshot size per seeker (defaults to RECOMMEND_SNAPSHOT_LIMIT)")
	recomputeCmd.Flags().IntVar(&recomputeRPS, "rps", 0, "Maximum seekers started per second, 0 for unlimited")
	rootCmd.AddCommand(recomputeCmd)
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	defer func() { _ = c.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Migrate(ctx); err != nil {
		return err
	}

	params := pipeline.RecomputeParams{
		Workers:       c.Config.Recommend.Workers,
		SnapshotLimit: c.Config.Recommend.SnapshotLimit,
		MaxLimit:      c.Config.Recommend.MaxLimit,
		RatePerSecond: recomputeRPS,
	}
	if recomputeWorkers > 0 {
		params.Workers = recomputeWorkers
	}
	if recomputeLimit > 0 {
		params.SnapshotLimit = recomputeLimit
	}

	sum, err := c.Recompute.Run(ctx, params)
	if err != nil {
		if ctx.Err() == context.Canceled {
			c.Logger.Warn("recompute interrupted", zap.Int("seekers", sum.Seekers))
		}
		return err
	}
	cmd.Printf("seekers=%d stored=%d skipped=%d partial=%d failed=%d\n", sum.Seekers, sum.Stored, sum.Skipped, sum.Partial, sum.Failed)
	return nil
}
