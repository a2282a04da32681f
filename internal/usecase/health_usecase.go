package usecase

import (
	"context"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	DatabaseHealthy bool      `json:"database_healthy"`
	CacheHealthy    bool      `json:"cache_healthy"`
	ServerTime      time.Time `json:"server_time"`
}

type HealthUsecase interface {
	GetStatus(ctx context.Context) HealthStatus
}

type Health struct {
	db    Pinger
	cache Pinger
	now   func() time.Time
}

// NewHealthUsecase accepts nil pingers; a missing dependency reports unhealthy.
func NewHealthUsecase(db Pinger, cache Pinger) *Health {
	return &Health{db: db, cache: cache, now: time.Now}
}

func (u *Health) GetStatus(ctx context.Context) HealthStatus {
	return HealthStatus{
		DatabaseHealthy: ping(ctx, u.db),
		CacheHealthy:    ping(ctx, u.cache),
		ServerTime:      u.now().UTC(),
	}
}

func ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(pingCtx) == nil
}
