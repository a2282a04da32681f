package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_UnavailableBypasses(t *testing.T) {
	var r *Redis
	ctx := context.Background()

	var out map[string]int
	hit, err := r.GetJSON(ctx, "reco:x", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, r.SetJSON(ctx, "reco:x", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, r.Delete(ctx, "reco:x"))
	assert.NoError(t, r.DeleteByPattern(ctx, "reco:*"))
	assert.NoError(t, r.Close())
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	ok, err := (&Redis{}).SetIfNotExists(ctx, "lock", "1", 0)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, ok)
}
