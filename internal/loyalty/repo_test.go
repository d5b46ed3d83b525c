package loyalty

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/enums"
)

func setupLoyaltyTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:loyalty_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	userPoints := `
CREATE TABLE IF NOT EXISTS user_points (
  user_id TEXT PRIMARY KEY,
  points INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS points_history (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  points INTEGER NOT NULL,
  source TEXT NOT NULL,
  description TEXT,
  order_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(userPoints).Error)
	require.NoError(t, conn.Exec(history).Error)
	return conn
}

func TestAddPointsUpsertAccumulates(t *testing.T) {
	conn := setupLoyaltyTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.AddPoints(ctx, userID, 299))
	require.NoError(t, repo.AddPoints(ctx, userID, 150))

	balance, err := repo.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(449), balance)
}

func TestGetBalanceMissingRowReadsZero(t *testing.T) {
	conn := setupLoyaltyTestDB(t)
	repo := NewRepository(conn)

	balance, err := repo.GetBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestAwardWritesBalanceAndHistory(t *testing.T) {
	conn := setupLoyaltyTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewFromGorm(conn))
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()
	desc := "Pedido entregue"

	require.NoError(t, svc.Award(ctx, userID, 299, enums.PointsSourcePurchase, &desc, &orderID))

	view, err := svc.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(299), view.Points)
	assert.Equal(t, enums.LoyaltyTierBronze, view.Tier)
	assert.Equal(t, int64(1701), view.PointsToNext)

	entries, err := svc.History(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(299), entries[0].Points)
	assert.Equal(t, enums.PointsSourcePurchase, entries[0].Source)
	require.NotNil(t, entries[0].OrderID)
	assert.Equal(t, orderID, *entries[0].OrderID)
}

func TestAwardRejectsNonPositiveDelta(t *testing.T) {
	conn := setupLoyaltyTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewFromGorm(conn))
	require.NoError(t, err)

	require.Error(t, svc.Award(context.Background(), uuid.New(), 0, enums.PointsSourceBonus, nil, nil))
	require.Error(t, svc.Award(context.Background(), uuid.New(), -10, enums.PointsSourceBonus, nil, nil))
}

func TestHistoryIsAppendOnlyOrderedNewestFirst(t *testing.T) {
	conn := setupLoyaltyTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	for _, pts := range []int64{10, 20, 30} {
		require.NoError(t, repo.InsertHistory(ctx, &models.PointsHistoryEntry{
			ID:     uuid.New(),
			UserID: userID,
			Points: pts,
			Source: enums.PointsSourceBonus,
		}))
	}

	rows, err := repo.ListHistory(ctx, userID, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
