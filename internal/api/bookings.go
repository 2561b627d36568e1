package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	respond "github.com/novendor/novendor-site/server/internal/api/respond"
	"github.com/novendor/novendor-site/server/internal/api/validate"
	"github.com/novendor/novendor-site/server/internal/auth"
	"github.com/novendor/novendor-site/server/internal/model"
	"github.com/novendor/novendor-site/server/internal/services"
)

const icsContentType = "text/calendar; charset=utf-8; method=REQUEST"

// BookingHandler serves the booking endpoints.
type BookingHandler struct {
	svc   *services.BookingService
	admin *auth.AdminAuthorizer
}

func NewBookingHandler(svc *services.BookingService, admin *auth.AdminAuthorizer) *BookingHandler {
	return &BookingHandler{svc: svc, admin: admin}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBookingRequest
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ResendBooking handles POST /api/bookings/{bookingId}/resend. Admin only.
func (h *BookingHandler) ResendBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Authorize(r); err != nil {
		writeServiceError(w, r, err)
		return
	}
	id := strings.TrimSpace(mux.Vars(r)["bookingId"])
	if err := validate.BookingID(id); err != nil {
		respond.WriteNotFound(w, "Booking not found")
		return
	}
	out, err := h.svc.Resend(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DownloadICS handles GET /api/bookings/{bookingId}/ics.
func (h *BookingHandler) DownloadICS(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["bookingId"])
	if err := validate.BookingID(id); err != nil {
		respond.WriteNotFound(w, "Booking not found")
		return
	}
	doc, err := h.svc.ICS(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", icsContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.Content))
}

// writeServiceError is the single mapping from domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.WriteValidationError(w, ve.Fields)
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "Booking not found")
	case errors.Is(err, auth.ErrNotConfigured):
		respond.WriteError(w, http.StatusServiceUnavailable, "Admin resend is not configured")
	case errors.Is(err, auth.ErrUnauthorized):
		respond.WriteUnauthorized(w, "Unauthorized")
	case errors.Is(err, model.ErrDelivery):
		logFor(r).Error().Err(err).Msg("booking email delivery failed")
		respond.WriteError(w, http.StatusBadGateway, "Email delivery failed")
	default:
		logFor(r).Error().Stack().Err(err).Msg("booking request failed")
		respond.WriteInternalError(w, "Internal server error")
	}
}
