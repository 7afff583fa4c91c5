package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventticketing/internal/delivery/http/controllers"
	"eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	ticketController *controllers.TicketController,
	adminController *controllers.AdminController,
	tokenVerifier domain.TokenVerifier,
	adminKeyVerifier domain.APIKeyVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(tokenVerifier)
	optionalAuth := middleware.OptionalAuth(tokenVerifier)
	adminKey := middleware.RequireAdminKey(adminKeyVerifier)

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("GET /events/{eventID}/availability", optionalAuth(registrationController.GetAvailability))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(registrationController.Register))
	mux.HandleFunc("DELETE /registrations/{registrationID}", auth(registrationController.Cancel))

	// Tickets
	mux.HandleFunc("GET /tickets/{code}", auth(ticketController.Verify))
	mux.HandleFunc("POST /tickets/{code}/use", auth(ticketController.Use))

	// Admin
	mux.HandleFunc("POST /admin/registrations/{registrationID}/ticket", adminKey(adminController.ReissueTicket))

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
