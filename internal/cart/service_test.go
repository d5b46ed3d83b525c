package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/internal/coupons"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
)

type stubProducts struct {
	rows map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.rows[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCoupons struct {
	result *coupons.Validation
	calls  int
}

func (s *stubCoupons) Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID uuid.UUID) (*coupons.Validation, error) {
	s.calls++
	return s.result, nil
}

func newCartFixture(t *testing.T) (Service, *stubProducts, *stubCoupons, *models.Product) {
	t.Helper()
	product := &models.Product{
		ID:      uuid.New(),
		Name:    "Cerveja Pilsen 600ml",
		Price:   decimal.RequireFromString("9.90"),
		Active:  true,
		InStock: true,
	}
	products := &stubProducts{rows: map[uuid.UUID]*models.Product{product.ID: product}}
	couponSvc := &stubCoupons{}
	svc, err := NewService(products, couponSvc)
	require.NoError(t, err)
	return svc, products, couponSvc, product
}

func TestServiceAddItemSnapshotsPrice(t *testing.T) {
	svc, products, _, product := newCartFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.Lines[0].UnitPrice.Equal(dec("9.90")))

	// later catalog price changes do not touch the carried line price
	products.rows[product.ID].Price = dec("14.90")
	view, err = svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.True(t, view.Lines[0].UnitPrice.Equal(dec("9.90")))
}

func TestServiceAddItemUnknownProduct(t *testing.T) {
	svc, _, _, _ := newCartFixture(t)

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceAddItemOutOfStock(t *testing.T) {
	svc, products, _, product := newCartFixture(t)
	products.rows[product.ID].InStock = false

	_, err := svc.AddItem(context.Background(), uuid.New(), product.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCartsAreIsolatedPerUser(t *testing.T) {
	svc, _, _, product := newCartFixture(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.AddItem(ctx, alice, product.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Get(ctx, alice).TotalItems)
	assert.Equal(t, 0, svc.Get(ctx, bob).TotalItems)
}

func TestServiceApplyCouponRejectsInvalid(t *testing.T) {
	svc, _, couponSvc, product := newCartFixture(t)
	couponSvc.result = &coupons.Validation{Reason: coupons.ReasonExpired}
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, userID, "VELHO")
	require.Error(t, err)
	assert.Equal(t, coupons.ReasonExpired, pkgerrors.As(err).Message())
	assert.Nil(t, svc.Get(ctx, userID).CouponCode)
}

func TestServiceApplyAndRemoveCoupon(t *testing.T) {
	svc, _, couponSvc, product := newCartFixture(t)
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "DEZ",
		DiscountType:  "percentage",
		DiscountValue: dec("10"),
	}
	couponSvc.result = &coupons.Validation{
		Valid:    true,
		Coupon:   coupon,
		Discount: dec("0.99"),
	}
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	view, err := svc.ApplyCoupon(ctx, userID, "DEZ")
	require.NoError(t, err)
	require.NotNil(t, view.CouponCode)
	assert.Equal(t, "DEZ", *view.CouponCode)
	assert.True(t, view.Discount.Equal(dec("0.99")))
	assert.True(t, view.Payable.Equal(dec("8.91")))
	assert.Equal(t, 1, couponSvc.calls)

	view = svc.RemoveCoupon(ctx, userID)
	assert.Nil(t, view.CouponCode)
	assert.True(t, view.Discount.IsZero())
}

func TestServiceClearEmptiesCart(t *testing.T) {
	svc, _, _, product := newCartFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.AddItem(ctx, userID, product.ID)
	require.NoError(t, err)

	svc.Clear(ctx, userID)
	view := svc.Get(ctx, userID)
	assert.Equal(t, 0, view.TotalItems)
	assert.Empty(t, view.Lines)
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	store := NewStore()
	var seen []int
	store.Subscribe(func(state State) {
		seen = append(seen, state.TotalItems())
	})

	productID := uuid.New()
	store.Dispatch(AddItem{ProductID: productID, Name: "X", UnitPrice: dec("1")})
	store.Dispatch(AddItem{ProductID: productID, Name: "X", UnitPrice: dec("1")})
	store.Dispatch(Clear{})

	assert.Equal(t, []int{1, 2, 0}, seen)
}
