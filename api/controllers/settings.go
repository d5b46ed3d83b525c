package controllers

import (
	"net/http"

	"github.com/adegadigital/adega-backend/api/responses"
	"github.com/adegadigital/adega-backend/api/validators"
	"github.com/adegadigital/adega-backend/internal/settings"
	"github.com/adegadigital/adega-backend/pkg/logger"
)

// SettingsFetch returns the store configuration (cached).
func SettingsFetch(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

type updateSettingsRequest struct {
	StoreName    *string `json:"store_name,omitempty" validate:"omitempty,min=2"`
	Phone        *string `json:"phone,omitempty"`
	WhatsApp     *string `json:"whatsapp,omitempty"`
	Address      *string `json:"address,omitempty"`
	DeliveryFee  *string `json:"delivery_fee,omitempty"`
	MinOrder     *string `json:"min_order,omitempty"`
	OpeningHours *string `json:"opening_hours,omitempty"`
	PixKey       *string `json:"pix_key,omitempty"`
	Open         *bool   `json:"open,omitempty"`
}

// AdminSettingsUpdate writes through to the DB and invalidates the cache.
func AdminSettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := settings.UpdateSettingsInput{
			StoreName:    payload.StoreName,
			Phone:        payload.Phone,
			WhatsApp:     payload.WhatsApp,
			Address:      payload.Address,
			OpeningHours: payload.OpeningHours,
			PixKey:       payload.PixKey,
			Open:         payload.Open,
		}
		if payload.DeliveryFee != nil {
			fee, err := parseDecimalField(*payload.DeliveryFee, "delivery_fee")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.DeliveryFee = &fee
		}
		if payload.MinOrder != nil {
			minOrder, err := parseDecimalField(*payload.MinOrder, "min_order")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.MinOrder = &minOrder
		}

		row, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
