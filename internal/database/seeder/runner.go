package seeder

import (
	"context"
	"fmt"
	"time"

	"skill-match/internal/database"

	"go.uber.org/zap"
)

type Runner struct {
	Seeders []Seeder
	Logger  *zap.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		logger.Info("seeded", zap.String("seeder", s.Name()), zap.Duration("duration", time.Since(start)))
	}
	return nil
}
