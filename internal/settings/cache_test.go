package settings

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adegadigital/adega-backend/pkg/db/models"
)

type stubLoader struct {
	row   *models.StoreSettings
	calls int
}

func (s *stubLoader) Get(ctx context.Context) (*models.StoreSettings, error) {
	s.calls++
	return s.row, nil
}

func TestCacheServesWithinTTL(t *testing.T) {
	loader := &stubLoader{row: &models.StoreSettings{StoreName: "Adega"}}
	cache := NewCache(loader, 5*time.Minute)
	base := time.Now()
	cache.now = func() time.Time { return base }
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	cache.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestCacheInvalidateForcesFetch(t *testing.T) {
	loader := &stubLoader{row: &models.StoreSettings{StoreName: "Adega"}}
	cache := NewCache(loader, time.Hour)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	cache.Invalidate()
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestCacheRefreshBypassesTTL(t *testing.T) {
	loader := &stubLoader{row: &models.StoreSettings{DeliveryFee: decimal.RequireFromString("5.00")}}
	cache := NewCache(loader, time.Hour)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)

	loader.row = &models.StoreSettings{DeliveryFee: decimal.RequireFromString("8.00")}
	row, err := cache.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, row.DeliveryFee.Equal(decimal.RequireFromString("8.00")))
	assert.Equal(t, 2, loader.calls)
}

func TestCacheZeroTTLAlwaysFetches(t *testing.T) {
	loader := &stubLoader{row: &models.StoreSettings{}}
	cache := NewCache(loader, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cache.Get(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, loader.calls)
}
