package usecase

import (
	"context"
	"time"
)

// RecommendationCache stores computed results. Implementations must treat an
// unreachable backend as a miss.
type RecommendationCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}
