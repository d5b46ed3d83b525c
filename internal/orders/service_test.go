package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/internal/cart"
	"github.com/adegadigital/adega-backend/internal/coupons"
	"github.com/adegadigital/adega-backend/pkg/config"
	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/enums"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
	"github.com/adegadigital/adega-backend/pkg/logger"
	"github.com/adegadigital/adega-backend/pkg/pagination"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ordersDDL := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal NUMERIC NOT NULL,
  delivery_fee NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  address TEXT NOT NULL,
  notes TEXT,
  coupon_id TEXT,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsDDL := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  line_total NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(ordersDDL).Error)
	require.NoError(t, conn.Exec(itemsDDL).Error)
	return conn
}

type stubCarts struct {
	state   cart.State
	cleared bool
	reads   int
}

func (s *stubCarts) Snapshot(ctx context.Context, userID uuid.UUID) cart.State {
	s.reads++
	return s.state
}

func (s *stubCarts) Clear(ctx context.Context, userID uuid.UUID) {
	s.cleared = true
}

type stubCoupons struct {
	validation *coupons.Validation
	recordErr  error
	validated  int
	recorded   int
}

func (s *stubCoupons) Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID uuid.UUID) (*coupons.Validation, error) {
	s.validated++
	return s.validation, nil
}

func (s *stubCoupons) RecordUse(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error {
	s.recorded++
	return s.recordErr
}

type stubSettings struct {
	fee   decimal.Decimal
	err   error
	reads int
}

func (s *stubSettings) DeliveryFee(ctx context.Context) (decimal.Decimal, error) {
	s.reads++
	return s.fee, s.err
}

type stubLoyalty struct {
	err    error
	awards []int64
}

func (s *stubLoyalty) Award(ctx context.Context, userID uuid.UUID, points int64, source enums.PointsSource, description *string, orderID *uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.awards = append(s.awards, points)
	return nil
}

type stubNotifier struct {
	statuses []enums.OrderStatus
}

func (s *stubNotifier) NotifyOrderStatus(ctx context.Context, userID, orderID uuid.UUID, status enums.OrderStatus) error {
	s.statuses = append(s.statuses, status)
	return nil
}

type ordersFixture struct {
	svc      Service
	conn     *gorm.DB
	carts    *stubCarts
	coupons  *stubCoupons
	settings *stubSettings
	loyalty  *stubLoyalty
	notifier *stubNotifier
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()
	conn := setupOrdersTestDB(t)
	f := &ordersFixture{
		conn:     conn,
		carts:    &stubCarts{},
		coupons:  &stubCoupons{},
		settings: &stubSettings{fee: dec("5.00")},
		loyalty:  &stubLoyalty{},
		notifier: &stubNotifier{},
	}
	svc, err := NewService(
		NewRepository(conn),
		db.NewFromGorm(conn),
		f.carts,
		f.coupons,
		f.settings,
		f.loyalty,
		f.notifier,
		logger.New(logger.Options{ServiceName: "test"}),
		config.CheckoutConfig{DeliveryFeeFallback: "5.00"},
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func twoLineCart() cart.State {
	state := cart.State{}
	a := cart.AddItem{ProductID: uuid.New(), Name: "Produto A", UnitPrice: dec("3.99")}
	state = cart.Reduce(state, a)
	state = cart.Reduce(state, a)
	state = cart.Reduce(state, cart.AddItem{ProductID: uuid.New(), Name: "Produto B", UnitPrice: dec("7.49")})
	return state
}

func countRows(t *testing.T, conn *gorm.DB, table string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Table(table).Count(&count).Error)
	return count
}

func TestCheckoutUnauthenticatedMakesNoCalls(t *testing.T) {
	f := newOrdersFixture(t)

	_, err := f.svc.Checkout(context.Background(), uuid.Nil, CheckoutInput{
		PaymentMethod: enums.PaymentMethodPix,
		Address:       "Rua A, 1",
	})
	require.Error(t, err)
	assert.Equal(t, ReasonUnauthenticated, pkgerrors.As(err).Message())
	assert.Equal(t, 0, f.carts.reads)
	assert.Equal(t, 0, f.settings.reads)
	assert.Equal(t, int64(0), countRows(t, f.conn, "orders"))
}

func TestCheckoutEmptyCartMakesNoBackendCalls(t *testing.T) {
	f := newOrdersFixture(t)

	_, err := f.svc.Checkout(context.Background(), uuid.New(), CheckoutInput{
		PaymentMethod: enums.PaymentMethodCash,
		Address:       "Rua A, 1",
	})
	require.Error(t, err)
	assert.Equal(t, ReasonEmptyCart, pkgerrors.As(err).Message())
	assert.Equal(t, 0, f.coupons.validated)
	assert.Equal(t, 0, f.settings.reads)
	assert.Equal(t, int64(0), countRows(t, f.conn, "orders"))
}

func TestCheckoutPersistsOrderWithSnapshots(t *testing.T) {
	f := newOrdersFixture(t)
	f.carts.state = twoLineCart()
	userID := uuid.New()

	result, err := f.svc.Checkout(context.Background(), userID, CheckoutInput{
		PaymentMethod: enums.PaymentMethodPix,
		Address:       "Rua das Videiras, 42",
	})
	require.NoError(t, err)
	// subtotal 15.47 + fee 5.00
	assert.True(t, result.Total.Equal(dec("20.47")), "got %s", result.Total)
	assert.Equal(t, int64(204), result.Points)
	assert.Equal(t, []int64{204}, f.loyalty.awards)
	assert.True(t, f.carts.cleared)
	assert.Equal(t, []enums.OrderStatus{enums.OrderStatusPending}, f.notifier.statuses)

	var order models.Order
	require.NoError(t, f.conn.Preload("Items").First(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(dec("15.47")))
	assert.True(t, order.DeliveryFee.Equal(dec("5.00")))
	assert.Len(t, order.Items, 2)
	for _, item := range order.Items {
		assert.True(t, item.LineTotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
	}
}

func TestCheckoutSubtractsCouponDiscount(t *testing.T) {
	f := newOrdersFixture(t)
	state := twoLineCart()
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "VINTE",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("20"),
	}
	state = cart.Reduce(state, cart.ApplyCoupon{Coupon: cart.AppliedCoupon{
		CouponID:      coupon.ID,
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
	}})
	f.carts.state = state
	f.coupons.validation = &coupons.Validation{Valid: true, Coupon: coupon, Discount: dec("3.094")}

	result, err := f.svc.Checkout(context.Background(), uuid.New(), CheckoutInput{
		PaymentMethod: enums.PaymentMethodCard,
		Address:       "Rua B, 2",
	})
	require.NoError(t, err)
	// 15.47 + 5.00 - 3.094
	assert.True(t, result.Total.Equal(dec("17.376")), "got %s", result.Total)
	assert.Equal(t, 1, f.coupons.validated)
	assert.Equal(t, 1, f.coupons.recorded)

	var order models.Order
	require.NoError(t, f.conn.First(&order, "id = ?", result.OrderID).Error)
	assert.True(t, order.Discount.Equal(dec("3.094")))
	require.NotNil(t, order.CouponID)
	assert.Equal(t, coupon.ID, *order.CouponID)
}

func TestCheckoutStaleCouponFailsSubmission(t *testing.T) {
	f := newOrdersFixture(t)
	state := twoLineCart()
	state = cart.Reduce(state, cart.ApplyCoupon{Coupon: cart.AppliedCoupon{
		CouponID:      uuid.New(),
		Code:          "VELHO",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("20"),
	}})
	f.carts.state = state
	f.coupons.validation = &coupons.Validation{Reason: coupons.ReasonExpired}

	_, err := f.svc.Checkout(context.Background(), uuid.New(), CheckoutInput{
		PaymentMethod: enums.PaymentMethodPix,
		Address:       "Rua C, 3",
	})
	require.Error(t, err)
	assert.Equal(t, coupons.ReasonExpired, pkgerrors.As(err).Message())
	assert.Equal(t, int64(0), countRows(t, f.conn, "orders"))
	assert.False(t, f.carts.cleared)
}

func TestCheckoutRollsBackWhenCouponRecordingFails(t *testing.T) {
	f := newOrdersFixture(t)
	state := twoLineCart()
	coupon := &models.Coupon{ID: uuid.New(), Code: "X", DiscountType: enums.DiscountTypeFixed, DiscountValue: dec("2")}
	state = cart.Reduce(state, cart.ApplyCoupon{Coupon: cart.AppliedCoupon{
		CouponID: coupon.ID, Code: coupon.Code, DiscountType: coupon.DiscountType, DiscountValue: coupon.DiscountValue,
	}})
	f.carts.state = state
	f.coupons.validation = &coupons.Validation{Valid: true, Coupon: coupon, Discount: dec("2")}
	f.coupons.recordErr = fmt.Errorf("unique violation")

	_, err := f.svc.Checkout(context.Background(), uuid.New(), CheckoutInput{
		PaymentMethod: enums.PaymentMethodPix,
		Address:       "Rua D, 4",
	})
	require.Error(t, err)
	assert.Equal(t, int64(0), countRows(t, f.conn, "orders"))
	assert.Equal(t, int64(0), countRows(t, f.conn, "order_items"))
	assert.False(t, f.carts.cleared)
	assert.Empty(t, f.loyalty.awards)
}

func TestCheckoutLoyaltyFailureIsSwallowed(t *testing.T) {
	f := newOrdersFixture(t)
	f.carts.state = twoLineCart()
	f.loyalty.err = fmt.Errorf("points backend down")

	result, err := f.svc.Checkout(context.Background(), uuid.New(), CheckoutInput{
		PaymentMethod: enums.PaymentMethodCash,
		Address:       "Rua E, 5",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Points)
	assert.True(t, f.carts.cleared)
	assert.Equal(t, int64(1), countRows(t, f.conn, "orders"))
}

func TestCheckoutUsesFallbackFeeWhenSettingsDown(t *testing.T) {
	f := newOrdersFixture(t)
	f.carts.state = twoLineCart()
	f.settings.err = fmt.Errorf("settings down")

	result, err := f.svc.Checkout(context.Background(), uuid.New(), CheckoutInput{
		PaymentMethod: enums.PaymentMethodPix,
		Address:       "Rua F, 6",
	})
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(dec("20.47")), "got %s", result.Total)
}

func seedOrder(t *testing.T, f *ordersFixture, userID uuid.UUID, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        status,
		Subtotal:      dec("10"),
		DeliveryFee:   dec("5"),
		Discount:      decimal.Zero,
		Total:         dec("15"),
		PaymentMethod: enums.PaymentMethodCash,
		Address:       "Rua G, 7",
		CreatedAt:     createdAt,
	}
	require.NoError(t, f.conn.Omit("Items").Create(order).Error)
	return order
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	f := newOrdersFixture(t)
	order := seedOrder(t, f, uuid.New(), enums.OrderStatusPending, time.Now())
	ctx := context.Background()

	for _, target := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusDelivering,
		enums.OrderStatusDelivered,
	} {
		updated, err := f.svc.UpdateStatus(ctx, order.ID, target)
		require.NoError(t, err)
		assert.Equal(t, target, updated.Status)
	}

	var reloaded models.Order
	require.NoError(t, f.conn.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusDelivered, reloaded.Status)
	assert.NotNil(t, reloaded.DeliveredAt)

	// every transition pushed a notification
	assert.Len(t, f.notifier.statuses, 4)
}

func TestUpdateStatusRejectsSkippedStates(t *testing.T) {
	f := newOrdersFixture(t)
	order := seedOrder(t, f, uuid.New(), enums.OrderStatusPending, time.Now())

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestUpdateStatusCancellation(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	delivering := seedOrder(t, f, uuid.New(), enums.OrderStatusDelivering, time.Now())
	updated, err := f.svc.UpdateStatus(ctx, delivering.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, updated.Status)
	assert.NotNil(t, updated.CancelledAt)

	delivered := seedOrder(t, f, uuid.New(), enums.OrderStatusDelivered, time.Now())
	_, err = f.svc.UpdateStatus(ctx, delivered.ID, enums.OrderStatusCancelled)
	require.Error(t, err, "delivered orders cannot be cancelled")
}

func TestGetHidesOtherUsersOrders(t *testing.T) {
	f := newOrdersFixture(t)
	owner := uuid.New()
	order := seedOrder(t, f, owner, enums.OrderStatusPending, time.Now())

	found, err := f.svc.Get(context.Background(), owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = f.svc.Get(context.Background(), uuid.New(), order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListMinePaginates(t *testing.T) {
	f := newOrdersFixture(t)
	userID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedOrder(t, f, userID, enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}
	seedOrder(t, f, uuid.New(), enums.OrderStatusPending, base)

	page, err := f.svc.ListMine(context.Background(), userID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Orders, 3)
	require.NotNil(t, page.NextCursor)

	rest, err := f.svc.ListMine(context.Background(), userID, pagination.Params{Limit: 3, Cursor: *page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Orders, 2)
	assert.Nil(t, rest.NextCursor)
}

func TestListAllFiltersByStatus(t *testing.T) {
	f := newOrdersFixture(t)
	base := time.Now().Add(-time.Hour)
	seedOrder(t, f, uuid.New(), enums.OrderStatusPending, base)
	seedOrder(t, f, uuid.New(), enums.OrderStatusDelivered, base.Add(time.Minute))

	status := enums.OrderStatusDelivered
	page, err := f.svc.ListAll(context.Background(), &status, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, enums.OrderStatusDelivered, page.Orders[0].Status)
}
