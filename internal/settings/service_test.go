package settings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db/models"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:settings_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS store_settings (
  id TEXT PRIMARY KEY,
  store_name TEXT NOT NULL,
  phone TEXT,
  whatsapp TEXT,
  address TEXT,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  min_order NUMERIC NOT NULL DEFAULT 0,
  opening_hours TEXT,
  pix_key TEXT,
  open INTEGER NOT NULL DEFAULT 1,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(ddl).Error)

	require.NoError(t, conn.Create(&models.StoreSettings{
		ID:          uuid.New(),
		StoreName:   "Adega Digital",
		DeliveryFee: decimal.RequireFromString("5.00"),
		MinOrder:    decimal.Zero,
		Open:        true,
	}).Error)
	return conn
}

func newSettingsService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	repo := NewRepository(conn)
	svc, err := NewService(repo, NewCache(repo, 5*time.Minute))
	require.NoError(t, err)
	return svc
}

func TestGetReturnsSeededRow(t *testing.T) {
	svc := newSettingsService(t, setupSettingsTestDB(t))

	row, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Adega Digital", row.StoreName)
	assert.True(t, row.DeliveryFee.Equal(decimal.RequireFromString("5.00")))
}

func TestUpdateWritesThroughAndInvalidates(t *testing.T) {
	svc := newSettingsService(t, setupSettingsTestDB(t))
	ctx := context.Background()

	// warm the cache
	_, err := svc.Get(ctx)
	require.NoError(t, err)

	fee := decimal.RequireFromString("8.50")
	updated, err := svc.Update(ctx, UpdateSettingsInput{DeliveryFee: &fee})
	require.NoError(t, err)
	assert.True(t, updated.DeliveryFee.Equal(fee))

	// a fresh read sees the new fee despite the warm cache
	got, err := svc.DeliveryFee(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(fee))
}

func TestUpdateRejectsNegativeValues(t *testing.T) {
	svc := newSettingsService(t, setupSettingsTestDB(t))
	neg := decimal.RequireFromString("-1")

	_, err := svc.Update(context.Background(), UpdateSettingsInput{DeliveryFee: &neg})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), UpdateSettingsInput{MinOrder: &neg})
	require.Error(t, err)
}

func TestUpdateRejectsEmptyStoreName(t *testing.T) {
	svc := newSettingsService(t, setupSettingsTestDB(t))
	empty := ""

	_, err := svc.Update(context.Background(), UpdateSettingsInput{StoreName: &empty})
	require.Error(t, err)
}
