package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/internal/cart"
	"github.com/adegadigital/adega-backend/internal/coupons"
	"github.com/adegadigital/adega-backend/internal/loyalty"
	"github.com/adegadigital/adega-backend/pkg/config"
	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/enums"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
	"github.com/adegadigital/adega-backend/pkg/logger"
	"github.com/adegadigital/adega-backend/pkg/pagination"
)

// Precondition messages surfaced verbatim to the storefront.
const (
	ReasonUnauthenticated = "Usuário não autenticado"
	ReasonEmptyCart       = "Carrinho está vazio"
)

// CheckoutInput is the submission payload.
type CheckoutInput struct {
	PaymentMethod enums.PaymentMethod
	Address       string
	Notes         *string
}

// CheckoutResult reports a successful submission.
type CheckoutResult struct {
	OrderID uuid.UUID       `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
	Points  int64           `json:"points_awarded"`
}

// OrderListResult is one page of orders plus the cursor for the next.
type OrderListResult struct {
	Orders     []models.Order `json:"orders"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

// Service exposes checkout, the status lifecycle, and order reads.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	ListAll(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
}

type cartAccessor interface {
	Snapshot(ctx context.Context, userID uuid.UUID) cart.State
	Clear(ctx context.Context, userID uuid.UUID)
}

type couponRecorder interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID uuid.UUID) (*coupons.Validation, error)
	RecordUse(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error
}

type feeReader interface {
	DeliveryFee(ctx context.Context) (decimal.Decimal, error)
}

type pointsAwarder interface {
	Award(ctx context.Context, userID uuid.UUID, points int64, source enums.PointsSource, description *string, orderID *uuid.UUID) error
}

type statusNotifier interface {
	NotifyOrderStatus(ctx context.Context, userID, orderID uuid.UUID, status enums.OrderStatus) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	carts    cartAccessor
	coupons  couponRecorder
	settings feeReader
	loyalty  pointsAwarder
	notifier statusNotifier
	logg     *logger.Logger
	cfg      config.CheckoutConfig
	now      func() time.Time
}

// NewService constructs the order service.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	carts cartAccessor,
	couponSvc couponRecorder,
	settingsSvc feeReader,
	loyaltySvc pointsAwarder,
	notifier statusNotifier,
	logg *logger.Logger,
	cfg config.CheckoutConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart accessor required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	if settingsSvc == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if loyaltySvc == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("status notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		carts:    carts,
		coupons:  couponSvc,
		settings: settingsSvc,
		loyalty:  loyaltySvc,
		notifier: notifier,
		logg:     logg,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// Checkout turns the user's cart into a persisted order. Header, item
// snapshots, and coupon redemption commit in one transaction; the loyalty
// award runs after commit and never fails the order.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error) {
	// preconditions run before any backend call
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, ReasonUnauthenticated)
	}
	state := s.carts.Snapshot(ctx, userID)
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ReasonEmptyCart)
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "forma de pagamento inválida")
	}
	if input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endereço de entrega obrigatório")
	}

	subtotal := state.Subtotal()

	// an applied coupon goes through the full validation chain again at
	// submission; a coupon that went stale since apply fails the checkout
	discount := decimal.Zero
	var couponID *uuid.UUID
	if state.Coupon != nil {
		result, err := s.coupons.Validate(ctx, state.Coupon.Code, subtotal, userID)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, result.Reason)
		}
		discount = result.Discount
		id := result.Coupon.ID
		couponID = &id
	}

	deliveryFee, err := s.settings.DeliveryFee(ctx)
	if err != nil {
		s.logg.Warn(ctx, "store settings unavailable, using fallback delivery fee")
		deliveryFee, err = decimal.NewFromString(s.cfg.DeliveryFeeFallback)
		if err != nil {
			deliveryFee = decimal.Zero
		}
	}

	total := subtotal.Add(deliveryFee).Sub(discount)

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        enums.OrderStatusPending,
		Subtotal:      subtotal,
		DeliveryFee:   deliveryFee,
		Discount:      discount,
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		Address:       input.Address,
		Notes:         input.Notes,
		CouponID:      couponID,
	}

	items := make([]models.OrderItem, 0, len(state.Lines))
	for _, line := range state.Lines {
		items = append(items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal(),
		})
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}
		if err := txRepo.InsertItems(ctx, items); err != nil {
			return fmt.Errorf("inserting order items: %w", err)
		}
		if couponID != nil {
			if err := s.coupons.RecordUse(ctx, tx, *couponID, userID, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submitting order")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	// loyalty is best-effort after commit: the order exists either way
	points := int64(0)
	if earned := loyalty.PointsFromPurchase(total); earned > 0 {
		description := "Pontos do pedido"
		if awardErr := s.loyalty.Award(ctx, userID, earned, enums.PointsSourcePurchase, &description, &order.ID); awardErr != nil {
			s.logg.Error(ctx, "failed to award purchase points", awardErr)
		} else {
			points = earned
		}
	}

	s.carts.Clear(ctx, userID)

	if notifyErr := s.notifier.NotifyOrderStatus(ctx, userID, order.ID, enums.OrderStatusPending); notifyErr != nil {
		s.logg.Warn(ctx, "failed to push order created notification")
	}

	s.logg.Info(ctx, "order submitted")

	return &CheckoutResult{OrderID: order.ID, Total: total, Points: points}, nil
}

// Get loads one of the user's own orders.
func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	rows, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return &OrderListResult{Orders: rows, NextCursor: next}, nil
}

func (s *service) ListAll(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderListResult, error) {
	rows, next, err := s.repo.ListAll(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return &OrderListResult{Orders: rows, NextCursor: next}, nil
}

// UpdateStatus applies a staff-driven transition, persists it, and pushes the
// change on the owner's status channel.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", target))
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("pedido %s não pode ir de %s para %s", orderID, order.Status, target))
	}

	at := s.now()
	if err := s.repo.UpdateStatus(ctx, orderID, target, at); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}
	order.Status = target
	switch target {
	case enums.OrderStatusDelivered:
		order.DeliveredAt = &at
	case enums.OrderStatusCancelled:
		order.CancelledAt = &at
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	if notifyErr := s.notifier.NotifyOrderStatus(ctx, order.UserID, orderID, target); notifyErr != nil {
		s.logg.Warn(ctx, "failed to push order status notification")
	}
	s.logg.Info(ctx, "order status updated")

	return order, nil
}
