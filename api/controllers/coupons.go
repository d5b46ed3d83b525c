package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adegadigital/adega-backend/api/responses"
	"github.com/adegadigital/adega-backend/api/validators"
	"github.com/adegadigital/adega-backend/internal/coupons"
	"github.com/adegadigital/adega-backend/pkg/enums"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
	"github.com/adegadigital/adega-backend/pkg/logger"
)

type createCouponRequest struct {
	Code          string     `json:"code" validate:"required,min=3,max=32"`
	DiscountType  string     `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue string     `json:"discount_value" validate:"required"`
	MinOrderValue *string    `json:"min_order_value,omitempty"`
	MaxUses       *int       `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
}

type updateCouponRequest struct {
	DiscountType  *string    `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue *string    `json:"discount_value,omitempty"`
	MinOrderValue *string    `json:"min_order_value,omitempty"`
	MaxUses       *int       `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	Active        *bool      `json:"active,omitempty"`
}

func parseDecimalField(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decimal value").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// AdminCouponList returns every coupon for the console.
func AdminCouponList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminCouponCreate registers a discount code.
func AdminCouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		value, err := parseDecimalField(payload.DiscountValue, "discount_value")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := coupons.CreateCouponInput{
			Code:          payload.Code,
			DiscountType:  enums.DiscountType(payload.DiscountType),
			DiscountValue: value,
			MaxUses:       payload.MaxUses,
			ValidFrom:     payload.ValidFrom,
			ValidUntil:    payload.ValidUntil,
			Active:        true,
		}
		if payload.MinOrderValue != nil {
			minOrder, err := parseDecimalField(*payload.MinOrderValue, "min_order_value")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.MinOrderValue = &minOrder
		}

		coupon, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// AdminCouponUpdate mutates a coupon's terms.
func AdminCouponUpdate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := pathUUID(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := coupons.UpdateCouponInput{
			MaxUses:    payload.MaxUses,
			ValidFrom:  payload.ValidFrom,
			ValidUntil: payload.ValidUntil,
			Active:     payload.Active,
		}
		if payload.DiscountType != nil {
			discountType := enums.DiscountType(*payload.DiscountType)
			input.DiscountType = &discountType
		}
		if payload.DiscountValue != nil {
			value, err := parseDecimalField(*payload.DiscountValue, "discount_value")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.DiscountValue = &value
		}
		if payload.MinOrderValue != nil {
			minOrder, err := parseDecimalField(*payload.MinOrderValue, "min_order_value")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.MinOrderValue = &minOrder
		}

		coupon, err := svc.Update(r.Context(), couponID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

// AdminCouponDeactivate retires a code without deleting its usage history.
func AdminCouponDeactivate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := pathUUID(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Deactivate(r.Context(), couponID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}
