package controllers

import (
	"net/http"
	"time"

	"github.com/adegadigital/adega-backend/api/responses"
	"github.com/adegadigital/adega-backend/api/validators"
	"github.com/adegadigital/adega-backend/internal/marketing"
	"github.com/adegadigital/adega-backend/pkg/logger"
)

// BannerList returns banners currently inside their display window.
func BannerList(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ActiveBanners(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// EventList returns running and upcoming events.
func EventList(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ActiveEvents(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type createBannerRequest struct {
	Title    string     `json:"title" validate:"required,min=2"`
	ImageURL string     `json:"image_url" validate:"required,url"`
	LinkURL  *string    `json:"link_url,omitempty" validate:"omitempty,url"`
	Position int        `json:"position" validate:"min=0"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

type updateBannerRequest struct {
	Title    *string    `json:"title,omitempty" validate:"omitempty,min=2"`
	ImageURL *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	LinkURL  *string    `json:"link_url,omitempty" validate:"omitempty,url"`
	Position *int       `json:"position,omitempty" validate:"omitempty,min=0"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	Active   *bool      `json:"active,omitempty"`
}

// AdminBannerList returns every banner for the console.
func AdminBannerList(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListBanners(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func AdminBannerCreate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createBannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.CreateBanner(r.Context(), marketing.CreateBannerInput{
			Title:    payload.Title,
			ImageURL: payload.ImageURL,
			LinkURL:  payload.LinkURL,
			Position: payload.Position,
			StartsAt: payload.StartsAt,
			EndsAt:   payload.EndsAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, banner)
	}
}

func AdminBannerUpdate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bannerID, err := pathUUID(r, "bannerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateBannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.UpdateBanner(r.Context(), bannerID, marketing.UpdateBannerInput{
			Title:    payload.Title,
			ImageURL: payload.ImageURL,
			LinkURL:  payload.LinkURL,
			Position: payload.Position,
			StartsAt: payload.StartsAt,
			EndsAt:   payload.EndsAt,
			Active:   payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banner)
	}
}

func AdminBannerDelete(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bannerID, err := pathUUID(r, "bannerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteBanner(r.Context(), bannerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createEventRequest struct {
	Title       string     `json:"title" validate:"required,min=2"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

type updateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=2"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}

// AdminEventList returns every event for the console.
func AdminEventList(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListEvents(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func AdminEventCreate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.CreateEvent(r.Context(), marketing.CreateEventInput{
			Title:       payload.Title,
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
			StartsAt:    payload.StartsAt,
			EndsAt:      payload.EndsAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

func AdminEventUpdate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.UpdateEvent(r.Context(), eventID, marketing.UpdateEventInput{
			Title:       payload.Title,
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
			StartsAt:    payload.StartsAt,
			EndsAt:      payload.EndsAt,
			Active:      payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

func AdminEventDelete(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteEvent(r.Context(), eventID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
