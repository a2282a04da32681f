// Package seeder loads a small demo corpus for local development.
package seeder

import (
	"context"

	"skill-match/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
