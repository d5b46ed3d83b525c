package controllers

import (
	"net/http"

	"github.com/adegadigital/adega-backend/api/responses"
	"github.com/adegadigital/adega-backend/api/validators"
	"github.com/adegadigital/adega-backend/internal/orders"
	"github.com/adegadigital/adega-backend/pkg/enums"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
	"github.com/adegadigital/adega-backend/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash pix card"`
	Address       string  `json:"address" validate:"required,min=5"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Checkout submits the caller's cart as an order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), userID, orders.CheckoutInput{
			PaymentMethod: enums.PaymentMethod(payload.PaymentMethod),
			Address:       payload.Address,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
