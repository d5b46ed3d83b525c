package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/internal/coupons"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
)

// View is the cart DTO returned to controllers.
type View struct {
	Lines      []Line          `json:"lines"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Payable    decimal.Decimal `json:"payable"`
	CouponCode *string         `json:"coupon_code,omitempty"`
}

// Service manages per-user session carts.
type Service interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID)
	Get(ctx context.Context, userID uuid.UUID) *View
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*View, error)
	RemoveCoupon(ctx context.Context, userID uuid.UUID) *View
	Snapshot(ctx context.Context, userID uuid.UUID) State
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID uuid.UUID) (*coupons.Validation, error)
}

// service keeps one Store per user; carts are session-lived and never persisted.
type service struct {
	mu       sync.Mutex
	stores   map[uuid.UUID]*Store
	products productReader
	coupons  couponValidator
}

// NewService constructs the cart service.
func NewService(products productReader, couponSvc couponValidator) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	return &service{
		stores:   make(map[uuid.UUID]*Store),
		products: products,
		coupons:  couponSvc,
	}, nil
}

func (s *service) storeFor(userID uuid.UUID) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.stores[userID]
	if !ok {
		store = NewStore()
		s.stores[userID] = store
	}
	return store
}

// AddItem snapshots the product's current price into the cart line.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Produto não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if !product.Active || !product.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Produto indisponível")
	}

	state := s.storeFor(userID).Dispatch(AddItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
	})
	return viewOf(state), nil
}

// RemoveItem is a silent no-op when the product is not in the cart.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	state := s.storeFor(userID).Dispatch(RemoveItem{ProductID: productID})
	return viewOf(state), nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error) {
	state := s.storeFor(userID).Dispatch(UpdateQuantity{ProductID: productID, Quantity: quantity})
	return viewOf(state), nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) {
	s.storeFor(userID).Dispatch(Clear{})
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) *View {
	return viewOf(s.storeFor(userID).Snapshot())
}

// ApplyCoupon runs the full validation chain against the current subtotal and
// stores the coupon snapshot on success.
func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*View, error) {
	store := s.storeFor(userID)
	subtotal := store.Snapshot().Subtotal()

	result, err := s.coupons.Validate(ctx, code, subtotal, userID)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, result.Reason)
	}

	state := store.Dispatch(ApplyCoupon{Coupon: AppliedCoupon{
		CouponID:      result.Coupon.ID,
		Code:          result.Coupon.Code,
		DiscountType:  result.Coupon.DiscountType,
		DiscountValue: result.Coupon.DiscountValue,
		Discount:      result.Discount,
	}})
	return viewOf(state), nil
}

func (s *service) RemoveCoupon(ctx context.Context, userID uuid.UUID) *View {
	return viewOf(s.storeFor(userID).Dispatch(RemoveCoupon{}))
}

// Snapshot exposes the raw state for the checkout orchestrator.
func (s *service) Snapshot(ctx context.Context, userID uuid.UUID) State {
	return s.storeFor(userID).Snapshot()
}

func viewOf(state State) *View {
	view := &View{
		Lines:      state.Lines,
		TotalItems: state.TotalItems(),
		Subtotal:   state.Subtotal(),
		Discount:   state.Discount(),
		Payable:    state.Payable(),
	}
	if view.Lines == nil {
		view.Lines = []Line{}
	}
	if state.Coupon != nil {
		code := state.Coupon.Code
		view.CouponCode = &code
	}
	return view
}
