package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/novendor/novendor-site/server/internal/api/recovery"
	respond "github.com/novendor/novendor-site/server/internal/api/respond"
	"github.com/novendor/novendor-site/server/internal/auth"
	"github.com/novendor/novendor-site/server/internal/services"
)

// NewRouter wires the booking API onto a gorilla/mux router.
func NewRouter(svc *services.BookingService, admin *auth.AdminAuthorizer, health ServiceHealth, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	router.Use(RequestLogger(log))

	bookings := NewBookingHandler(svc, admin)
	router.HandleFunc("/api/bookings", bookings.CreateBooking).Methods(http.MethodPost)
	router.HandleFunc("/api/bookings/{bookingId}/resend", bookings.ResendBooking).Methods(http.MethodPost)
	router.HandleFunc("/api/bookings/{bookingId}/ics", bookings.DownloadICS).Methods(http.MethodGet)

	healthHandler := NewHealthHandler(health)
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteNotFound(w, "No such route")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return router
}
