package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/enums"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
)

// Rejection reasons surfaced verbatim to the storefront.
const (
	ReasonEmptyCode   = "Digite um código de cupom"
	ReasonNotFound    = "Cupom não encontrado"
	ReasonExpired     = "Cupom expirado"
	ReasonNotYetValid = "Cupom ainda não está válido"
	ReasonExhausted   = "Cupom esgotado"
	ReasonAlreadyUsed = "Você já usou este cupom"
)

// Validation is the outcome of running the validation chain for one code.
type Validation struct {
	Valid    bool
	Reason   string
	Coupon   *models.Coupon
	Discount decimal.Decimal
}

// Service exposes coupon validation, redemption recording, and admin management.
type Service interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID uuid.UUID) (*Validation, error)
	RecordUse(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error
	Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*models.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
}

// CreateCouponInput holds the validated payload to create a coupon.
type CreateCouponInput struct {
	Code          string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	MinOrderValue *decimal.Decimal
	MaxUses       *int
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	Active        bool
}

// UpdateCouponInput holds optional mutation values for a coupon.
type UpdateCouponInput struct {
	DiscountType  *enums.DiscountType
	DiscountValue *decimal.Decimal
	MinOrderValue *decimal.Decimal
	MaxUses       *int
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	Active        *bool
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a coupon service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, now: time.Now}, nil
}

// Validate runs the full validation chain; the first failing check wins.
// A zero userID skips the per-user redemption check (anonymous preview).
func (s *service) Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID uuid.UUID) (*Validation, error) {
	if strings.TrimSpace(code) == "" {
		return &Validation{Reason: ReasonEmptyCode}, nil
	}

	coupon, err := s.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Validation{Reason: ReasonNotFound}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up coupon")
	}

	now := s.now()

	// valid_until is inclusive of the whole calendar day.
	if coupon.ValidUntil != nil && now.After(endOfDay(*coupon.ValidUntil)) {
		return &Validation{Reason: ReasonExpired}, nil
	}
	if coupon.ValidFrom != nil && now.Before(startOfDay(*coupon.ValidFrom)) {
		return &Validation{Reason: ReasonNotYetValid}, nil
	}
	if coupon.MaxUses != nil && coupon.CurrentUses >= *coupon.MaxUses {
		return &Validation{Reason: ReasonExhausted}, nil
	}
	if coupon.MinOrderValue != nil && subtotal.LessThan(*coupon.MinOrderValue) {
		return &Validation{Reason: fmt.Sprintf("Pedido mínimo de %s", FormatBRL(*coupon.MinOrderValue))}, nil
	}

	if userID != uuid.Nil {
		used, err := s.repo.HasUse(ctx, coupon.ID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking coupon redemption")
		}
		if used {
			return &Validation{Reason: ReasonAlreadyUsed}, nil
		}
	}

	return &Validation{
		Valid:    true,
		Coupon:   coupon,
		Discount: Discount(coupon, subtotal),
	}, nil
}

// RecordUse inserts the redemption row and bumps current_uses inside the
// caller's transaction, so a failed checkout never leaves a half-recorded use.
func (s *service) RecordUse(ctx context.Context, tx *gorm.DB, couponID, userID, orderID uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	txRepo := s.repo.WithTx(tx)

	use := &models.CouponUse{
		ID:       uuid.New(),
		CouponID: couponID,
		UserID:   userID,
		OrderID:  orderID,
	}
	if err := txRepo.InsertUse(ctx, use); err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, ReasonAlreadyUsed)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording coupon use")
	}
	if err := txRepo.IncrementUses(ctx, couponID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "incrementing coupon uses")
	}
	return nil
}

// Create inserts a new coupon with a normalized code.
func (s *service) Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ReasonEmptyCode)
	}
	if err := validateDiscount(input.DiscountType, input.DiscountValue); err != nil {
		return nil, err
	}
	if input.MaxUses != nil && *input.MaxUses <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_uses must be positive")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until must not precede valid_from")
	}

	coupon := &models.Coupon{
		Code:          code,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		MinOrderValue: input.MinOrderValue,
		MaxUses:       input.MaxUses,
		ValidFrom:     input.ValidFrom,
		ValidUntil:    input.ValidUntil,
		Active:        input.Active,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating coupon")
	}
	return created, nil
}

// Update applies the provided fields to an existing coupon. The code is
// immutable once issued.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, ReasonNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading coupon")
	}

	if input.DiscountType != nil {
		coupon.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		coupon.DiscountValue = *input.DiscountValue
	}
	if err := validateDiscount(coupon.DiscountType, coupon.DiscountValue); err != nil {
		return nil, err
	}
	if input.MinOrderValue != nil {
		coupon.MinOrderValue = input.MinOrderValue
	}
	if input.MaxUses != nil {
		if *input.MaxUses <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_uses must be positive")
		}
		coupon.MaxUses = input.MaxUses
	}
	if input.ValidFrom != nil {
		coupon.ValidFrom = input.ValidFrom
	}
	if input.ValidUntil != nil {
		coupon.ValidUntil = input.ValidUntil
	}
	if coupon.ValidFrom != nil && coupon.ValidUntil != nil && coupon.ValidUntil.Before(*coupon.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until must not precede valid_from")
	}
	if input.Active != nil {
		coupon.Active = *input.Active
	}

	updated, err := s.repo.Update(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating coupon")
	}
	return updated, nil
}

// Deactivate flips the active flag off, keeping redemption history intact.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	inactive := false
	return s.Update(ctx, id, UpdateCouponInput{Active: &inactive})
}

// List returns all coupons for the admin console.
func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing coupons")
	}
	return rows, nil
}

func validateDiscount(discountType enums.DiscountType, value decimal.Decimal) error {
	if !discountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if !value.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if discountType == enums.DiscountTypePercentage && value.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	return nil
}

// FormatBRL renders a decimal as a Brazilian currency string ("R$ 50,00").
func FormatBRL(value decimal.Decimal) string {
	return "R$ " + strings.Replace(value.StringFixed(2), ".", ",", 1)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}
