package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/enums"
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:coupons_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	coupons := `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  discount_type TEXT NOT NULL,
  discount_value NUMERIC NOT NULL,
  min_order_value NUMERIC,
  max_uses INTEGER,
  current_uses INTEGER NOT NULL DEFAULT 0,
  valid_from DATETIME,
  valid_until DATETIME,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	couponUses := `
CREATE TABLE IF NOT EXISTS coupon_uses (
  id TEXT PRIMARY KEY,
  coupon_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (coupon_id, user_id)
);`
	require.NoError(t, conn.Exec(coupons).Error)
	require.NoError(t, conn.Exec(couponUses).Error)
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB, now time.Time) *service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), db.NewFromGorm(conn))
	require.NoError(t, err)
	s := svc.(*service)
	s.now = func() time.Time { return now }
	return s
}

func seedCoupon(t *testing.T, conn *gorm.DB, coupon *models.Coupon) *models.Coupon {
	t.Helper()
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	require.NoError(t, conn.Create(coupon).Error)
	return coupon
}

func TestValidateEmptyCode(t *testing.T) {
	conn := setupCouponsTestDB(t)
	svc := newTestService(t, conn, time.Now())

	result, err := svc.Validate(context.Background(), "   ", dec("10"), uuid.Nil)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonEmptyCode, result.Reason)
}

func TestValidateNotFound(t *testing.T) {
	conn := setupCouponsTestDB(t)
	svc := newTestService(t, conn, time.Now())

	result, err := svc.Validate(context.Background(), "NADA", dec("10"), uuid.Nil)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonNotFound, result.Reason)
}

func TestValidateInactiveCouponNotFound(t *testing.T) {
	conn := setupCouponsTestDB(t)
	seedCoupon(t, conn, &models.Coupon{
		Code:          "OFF10",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: dec("10"),
		Active:        false,
	})
	svc := newTestService(t, conn, time.Now())

	result, err := svc.Validate(context.Background(), "off10", dec("100"), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, result.Reason)
}

func TestValidateNormalizesCode(t *testing.T) {
	conn := setupCouponsTestDB(t)
	seedCoupon(t, conn, &models.Coupon{
		Code:          "BEMVINDO",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("10"),
		Active:        true,
	})
	svc := newTestService(t, conn, time.Now())

	result, err := svc.Validate(context.Background(), "  bemvindo ", dec("100"), uuid.Nil)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.Discount.Equal(dec("10")), "got %s", result.Discount)
}

func TestValidateExpiryIsEndOfDayInclusive(t *testing.T) {
	conn := setupCouponsTestDB(t)
	until := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedCoupon(t, conn, &models.Coupon{
		Code:          "MARCO",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: dec("5"),
		ValidUntil:    &until,
		Active:        true,
	})

	lastInstant := time.Date(2026, 3, 10, 23, 59, 59, 999_000_000, time.UTC)
	svc := newTestService(t, conn, lastInstant)
	result, err := svc.Validate(context.Background(), "MARCO", dec("100"), uuid.Nil)
	require.NoError(t, err)
	assert.True(t, result.Valid, "coupon must hold through the last instant of the day")

	svc = newTestService(t, conn, lastInstant.Add(time.Millisecond))
	result, err = svc.Validate(context.Background(), "MARCO", dec("100"), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonExpired, result.Reason)
}

func TestValidateNotYetValid(t *testing.T) {
	conn := setupCouponsTestDB(t)
	from := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	seedCoupon(t, conn, &models.Coupon{
		Code:          "JUNHO",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: dec("5"),
		ValidFrom:     &from,
		Active:        true,
	})

	svc := newTestService(t, conn, time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC))
	result, err := svc.Validate(context.Background(), "JUNHO", dec("100"), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotYetValid, result.Reason)

	// valid_from counts from the start of its calendar day
	svc = newTestService(t, conn, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	result, err = svc.Validate(context.Background(), "JUNHO", dec("100"), uuid.Nil)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateMaxUsesBoundary(t *testing.T) {
	conn := setupCouponsTestDB(t)
	maxUses := 2
	coupon := seedCoupon(t, conn, &models.Coupon{
		Code:          "LIMITE",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: dec("5"),
		MaxUses:       &maxUses,
		Active:        true,
	})
	svc := newTestService(t, conn, time.Now())

	for uses := 0; uses < maxUses; uses++ {
		require.NoError(t, conn.Model(&models.Coupon{}).
			Where("id = ?", coupon.ID).
			UpdateColumn("current_uses", uses).Error)
		result, err := svc.Validate(context.Background(), "LIMITE", dec("100"), uuid.Nil)
		require.NoError(t, err)
		assert.True(t, result.Valid, "use %d should be allowed", uses+1)
	}

	require.NoError(t, conn.Model(&models.Coupon{}).
		Where("id = ?", coupon.ID).
		UpdateColumn("current_uses", maxUses).Error)
	result, err := svc.Validate(context.Background(), "LIMITE", dec("100"), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonExhausted, result.Reason)
}

func TestValidateMinimumOrder(t *testing.T) {
	conn := setupCouponsTestDB(t)
	minOrder := dec("50")
	seedCoupon(t, conn, &models.Coupon{
		Code:          "MIN50",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("10"),
		MinOrderValue: &minOrder,
		Active:        true,
	})
	svc := newTestService(t, conn, time.Now())

	result, err := svc.Validate(context.Background(), "MIN50", dec("49.99"), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "Pedido mínimo de R$ 50,00", result.Reason)

	result, err = svc.Validate(context.Background(), "MIN50", dec("50"), uuid.Nil)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateAlreadyUsed(t *testing.T) {
	conn := setupCouponsTestDB(t)
	coupon := seedCoupon(t, conn, &models.Coupon{
		Code:          "UNICO",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: dec("5"),
		Active:        true,
	})
	userID := uuid.New()
	require.NoError(t, conn.Create(&models.CouponUse{
		ID:       uuid.New(),
		CouponID: coupon.ID,
		UserID:   userID,
		OrderID:  uuid.New(),
	}).Error)
	svc := newTestService(t, conn, time.Now())

	result, err := svc.Validate(context.Background(), "UNICO", dec("100"), userID)
	require.NoError(t, err)
	assert.Equal(t, ReasonAlreadyUsed, result.Reason)

	// a different user can still redeem
	result, err = svc.Validate(context.Background(), "UNICO", dec("100"), uuid.New())
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestRecordUseInsertsAndIncrements(t *testing.T) {
	conn := setupCouponsTestDB(t)
	coupon := seedCoupon(t, conn, &models.Coupon{
		Code:          "GASTA",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: dec("5"),
		Active:        true,
	})
	svc := newTestService(t, conn, time.Now())
	userID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.RecordUse(context.Background(), tx, coupon.ID, userID, uuid.New())
	})
	require.NoError(t, err)

	var reloaded models.Coupon
	require.NoError(t, conn.First(&reloaded, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, reloaded.CurrentUses)

	var count int64
	require.NoError(t, conn.Model(&models.CouponUse{}).
		Where("coupon_id = ? AND user_id = ?", coupon.ID, userID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateCouponValidation(t *testing.T) {
	conn := setupCouponsTestDB(t)
	svc := newTestService(t, conn, time.Now())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCouponInput{
		Code:          "  ",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: dec("5"),
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateCouponInput{
		Code:          "DEMAIS",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("150"),
	})
	require.Error(t, err)

	created, err := svc.Create(ctx, CreateCouponInput{
		Code:          " promo10 ",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("10"),
		Active:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "PROMO10", created.Code)
}

func TestDeactivateHidesCouponFromLookup(t *testing.T) {
	conn := setupCouponsTestDB(t)
	coupon := seedCoupon(t, conn, &models.Coupon{
		Code:          "SOME",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: dec("5"),
		Active:        true,
	})
	svc := newTestService(t, conn, time.Now())

	updated, err := svc.Deactivate(context.Background(), coupon.ID)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	result, err := svc.Validate(context.Background(), "SOME", dec("100"), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, result.Reason)
}
