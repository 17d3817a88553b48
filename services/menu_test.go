package services

import (
	"context"
	"testing"
	"time"

	"campus-canteen-api/logging"
	"campus-canteen-api/metrics"
	"campus-canteen-api/testkit"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSeedAndFilter(t *testing.T) {
	db := testkit.NewDB(t)
	c := NewCatalog(db, nil, time.Minute, logging.Discard(), metrics.New())
	ctx := context.Background()

	n, err := c.Seed(ctx, DefaultMenu())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultMenu()), n)

	n, err = c.Seed(ctx, DefaultMenu())
	require.NoError(t, err)
	assert.Zero(t, n, "seeding a non-empty catalog is a no-op")

	all, err := c.List(ctx, MenuFilter{})
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultMenu()))

	bev, err := c.List(ctx, MenuFilter{Category: "Beverages"})
	require.NoError(t, err)
	require.Len(t, bev, 2)
	assert.Equal(t, "Cold Coffee", bev[0].Name)
	assert.Equal(t, "Tea", bev[1].Name)

	veg, err := c.List(ctx, MenuFilter{VegOnly: true})
	require.NoError(t, err)
	for _, it := range veg {
		assert.True(t, it.IsVeg, it.Name)
	}
	assert.Len(t, veg, 6)
}

func TestCatalogFallsBackWhenCacheUnavailable(t *testing.T) {
	db := testkit.NewDB(t)
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })

	c := NewCatalog(db, rdb, time.Minute, logging.Discard(), metrics.New())
	ctx := context.Background()
	_, err := c.Seed(ctx, DefaultMenu())
	require.NoError(t, err)

	items, err := c.List(ctx, MenuFilter{Category: "Snacks"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
